// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fastingapi/internal/domain"

	"github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.UserRepository = (*DB)(nil)
var _ domain.FastRepository = (*DB)(nil)
var _ domain.WeightRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and creates the schema.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			hashed_password TEXT NOT NULL,
			weight DOUBLE PRECISION,
			height DOUBLE PRECISION,
			goal_weight DOUBLE PRECISION,
			unit TEXT NOT NULL DEFAULT 'metric' CHECK(unit IN ('metric','imperial')),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		);`,
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));",
		`CREATE TABLE IF NOT EXISTS fasts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			planned_end_time TIMESTAMP NOT NULL,
			planned_duration DOUBLE PRECISION NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			duration_us BIGINT
		);`,
		// At most one active fast per user.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_fasts_one_active ON fasts(user_id) WHERE NOT completed;",
		"CREATE INDEX IF NOT EXISTS idx_fasts_user_start ON fasts(user_id, start_time);",
		`CREATE TABLE IF NOT EXISTS weight (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			weight DOUBLE PRECISION NOT NULL,
			weight_time TIMESTAMP NOT NULL,
			unit TEXT NOT NULL,
			bmi DOUBLE PRECISION NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_weight_user_time ON weight(user_id, weight_time);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
