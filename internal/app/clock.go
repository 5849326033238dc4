// Package app holds the application services and business logic.
package app

import "time"

// Clock returns the current time. Services read it through a field so tests
// can pin "now".
type Clock func() time.Time

// utcNow is the default Clock. Times are naive UTC at microsecond precision,
// which every store round-trips exactly.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// page clamps skip/limit query values.
func page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}
