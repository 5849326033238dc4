package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fastingapi/internal/domain"
)

const userColumns = "id, email, hashed_password, weight, height, goal_weight, unit, is_active"

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	var weight, height, goal sql.NullFloat64
	var unit string
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &weight, &height, &goal, &unit, &u.IsActive); err != nil {
		return nil, err
	}
	u.Weight = floatPtr(weight)
	u.Height = floatPtr(height)
	u.GoalWeight = floatPtr(goal)
	u.Unit = domain.Unit(unit)
	return &u, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// CreateUser inserts a user.
func (d *DB) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO users (email, hashed_password, weight, height, goal_weight, unit, is_active) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING "+userColumns,
		u.Email, u.HashedPassword, nullFloat(u.Weight), nullFloat(u.Height), nullFloat(u.GoalWeight), string(u.Unit), u.IsActive,
	)
	created, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER(?)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ListUsers returns users in id order.
func (d *DB) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
