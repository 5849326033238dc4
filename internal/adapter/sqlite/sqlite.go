// Package sqlite implements the domain repositories on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fastingapi/internal/domain"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02 15:04:05.000000"

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.UserRepository = (*DB)(nil)
var _ domain.FastRepository = (*DB)(nil)
var _ domain.WeightRepository = (*DB)(nil)

// Open opens the database at path, which may be ":memory:", and creates
// the schema.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	// One connection: writers are serialized and ":memory:" stays a single
	// database.
	s.SetMaxOpenConns(1)
	s.SetMaxIdleConns(1)
	s.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

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

// dsn enables foreign keys on every connection the pool opens.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			hashed_password TEXT NOT NULL,
			weight REAL,
			height REAL,
			goal_weight REAL,
			unit TEXT NOT NULL DEFAULT 'metric' CHECK(unit IN ('metric','imperial')),
			is_active INTEGER NOT NULL DEFAULT 1
		);`,
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));",
		`CREATE TABLE IF NOT EXISTS fasts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			planned_end_time DATETIME NOT NULL,
			planned_duration REAL NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			duration_us INTEGER
		);`,
		// At most one active fast per user.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_fasts_one_active ON fasts(user_id) WHERE completed = 0;",
		"CREATE INDEX IF NOT EXISTS idx_fasts_user_start ON fasts(user_id, start_time);",
		`CREATE TABLE IF NOT EXISTS weight (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			weight REAL NOT NULL,
			weight_time DATETIME NOT NULL,
			unit TEXT NOT NULL,
			bmi REAL NOT NULL
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

func ts(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isUniqueViolation(err error) bool {
	return hasConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return hasConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}

// hasConstraint matches the extended result code, or the primary code and
// message when extended codes are off.
func hasConstraint(err error, extended int, text string) bool {
	var e *sqlitedrv.Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code() == extended {
		return true
	}
	return e.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(e.Error(), text)
}

// nullTime scans DATETIME columns whether the driver returns them as
// time.Time or as text.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = t.UTC(), true
		return nil
	case string:
		return n.parse(t)
	case []byte:
		return n.parse(string(t))
	}
	return fmt.Errorf("sqlite: cannot scan %T into time", v)
}

func (n *nullTime) parse(s string) error {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05.999999999-07:00", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("sqlite: bad timestamp %q", s)
}
