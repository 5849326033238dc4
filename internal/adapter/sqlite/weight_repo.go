package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fastingapi/internal/domain"
)

const weightColumns = "id, user_id, weight, weight_time, unit, bmi"

func scanWeight(row scanner) (*domain.WeightEntry, error) {
	var w domain.WeightEntry
	var at nullTime
	var unit string
	if err := row.Scan(&w.ID, &w.UserID, &w.Weight, &at, &unit, &w.BMI); err != nil {
		return nil, err
	}
	w.WeightTime = at.Time
	w.Unit = domain.Unit(unit)
	return &w, nil
}

func (d *DB) queryWeights(ctx context.Context, query string, args ...any) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.WeightEntry, 0)
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// AddWeight inserts a weight entry.
func (d *DB) AddWeight(ctx context.Context, w domain.WeightEntry) (*domain.WeightEntry, error) {
	created, err := scanWeight(d.sql.QueryRowContext(ctx,
		"INSERT INTO weight (user_id, weight, weight_time, unit, bmi) VALUES (?, ?, ?, ?, ?) RETURNING "+weightColumns,
		w.UserID, w.Weight, ts(w.WeightTime), string(w.Unit), w.BMI,
	))
	if isForeignKeyViolation(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert weight: %w", err)
	}
	return created, nil
}

// ListWeights returns the user's entries in id order.
func (d *DB) ListWeights(ctx context.Context, userID int64, offset, limit int) ([]domain.WeightEntry, error) {
	return d.queryWeights(ctx,
		"SELECT "+weightColumns+" FROM weight WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?", userID, limit, offset)
}

// LatestWeight returns the entry with the latest weight_time.
func (d *DB) LatestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	return d.oneWeight(ctx, "SELECT "+weightColumns+" FROM weight WHERE user_id = ? ORDER BY weight_time DESC, id DESC LIMIT 1", userID)
}

// EarliestWeight returns the entry with the earliest weight_time.
func (d *DB) EarliestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	return d.oneWeight(ctx, "SELECT "+weightColumns+" FROM weight WHERE user_id = ? ORDER BY weight_time, id LIMIT 1", userID)
}

// WeightsBetween returns entries in [from, to), oldest first.
func (d *DB) WeightsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.WeightEntry, error) {
	return d.queryWeights(ctx,
		"SELECT "+weightColumns+" FROM weight WHERE user_id = ? AND weight_time >= ? AND weight_time < ? ORDER BY weight_time, id",
		userID, ts(from), ts(to))
}

func (d *DB) oneWeight(ctx context.Context, query string, userID int64) (*domain.WeightEntry, error) {
	w, err := scanWeight(d.sql.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return w, err
}
