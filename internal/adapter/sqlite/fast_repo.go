package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fastingapi/internal/domain"
)

const fastColumns = "id, user_id, start_time, end_time, planned_end_time, planned_duration, completed, deleted, duration_us"

func scanFast(row scanner) (*domain.Fast, error) {
	var f domain.Fast
	var start, end, planned nullTime
	var dur sql.NullInt64
	if err := row.Scan(&f.ID, &f.UserID, &start, &end, &planned, &f.PlannedDuration, &f.Completed, &f.Deleted, &dur); err != nil {
		return nil, err
	}
	f.StartTime = start.Time
	f.PlannedEndTime = planned.Time
	if end.Valid {
		t := end.Time
		f.EndTime = &t
	}
	if dur.Valid {
		d := time.Duration(dur.Int64) * time.Microsecond
		f.Duration = &d
	}
	return &f, nil
}

func scanFasts(rows *sql.Rows) ([]domain.Fast, error) {
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Fast, 0)
	for rows.Next() {
		f, err := scanFast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// AddFast inserts a new active fast. The partial unique index turns a
// second active fast into ErrFastInProgress.
func (d *DB) AddFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO fasts (user_id, start_time, planned_end_time, planned_duration, completed, deleted) VALUES (?, ?, ?, ?, 0, 0) RETURNING "+fastColumns,
		f.UserID, ts(f.StartTime), ts(f.PlannedEndTime), f.PlannedDuration,
	)
	created, err := scanFast(row)
	switch {
	case isUniqueViolation(err):
		return nil, domain.ErrFastInProgress
	case isForeignKeyViolation(err):
		return nil, domain.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("insert fast: %w", err)
	}
	return created, nil
}

// ActiveFast returns the user's fast with completed = 0.
func (d *DB) ActiveFast(ctx context.Context, userID int64) (*domain.Fast, error) {
	f, err := scanFast(d.sql.QueryRowContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id = ? AND completed = 0 AND deleted = 0 LIMIT 1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// GetFast returns one of the user's fasts, deleted or not.
func (d *DB) GetFast(ctx context.Context, userID, id int64) (*domain.Fast, error) {
	f, err := scanFast(d.sql.QueryRowContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// CompleteFast ends an active fast in a single conditional update.
func (d *DB) CompleteFast(ctx context.Context, id int64, end time.Time, duration time.Duration) (*domain.Fast, error) {
	f, err := scanFast(d.sql.QueryRowContext(ctx,
		"UPDATE fasts SET end_time = ?, completed = 1, duration_us = ? WHERE id = ? AND completed = 0 RETURNING "+fastColumns,
		ts(end), duration.Microseconds(), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("complete fast: %w", err)
	}
	return f, nil
}

// UpdateFast rewrites the schedule of a fast whose completed flag still
// matches f.
func (d *DB) UpdateFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	updated, err := scanFast(d.sql.QueryRowContext(ctx,
		"UPDATE fasts SET start_time = ?, planned_end_time = ?, planned_duration = ?, duration_us = ? WHERE id = ? AND user_id = ? AND deleted = 0 AND completed = ? RETURNING "+fastColumns,
		ts(f.StartTime), ts(f.PlannedEndTime), f.PlannedDuration, durationUS(f), f.ID, f.UserID, f.Completed,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update fast: %w", err)
	}
	return updated, nil
}

func durationUS(f domain.Fast) sql.NullInt64 {
	if !f.Completed || f.Duration == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: f.Duration.Microseconds(), Valid: true}
}

// ListFasts returns the user's visible fasts in id order.
func (d *DB) ListFasts(ctx context.Context, userID int64, offset, limit int) ([]domain.Fast, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id = ? AND deleted = 0 ORDER BY id LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanFasts(rows)
}

// CompletedFasts returns all of the user's visible completed fasts.
func (d *DB) CompletedFasts(ctx context.Context, userID int64) ([]domain.Fast, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id = ? AND completed = 1 AND deleted = 0 ORDER BY start_time DESC", userID)
	if err != nil {
		return nil, err
	}
	return scanFasts(rows)
}

// FastsBetween returns fasts overlapping [from, to) ordered by start time.
func (d *DB) FastsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.Fast, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id = ? AND deleted = 0 AND start_time < ? AND (end_time IS NULL OR end_time > ?) ORDER BY start_time",
		userID, ts(to), ts(from))
	if err != nil {
		return nil, err
	}
	return scanFasts(rows)
}

// SoftDeleteFast flags a fast as deleted.
func (d *DB) SoftDeleteFast(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE fasts SET deleted = 1 WHERE id = ? AND user_id = ? AND deleted = 0", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
