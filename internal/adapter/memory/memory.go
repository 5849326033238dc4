// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fastingapi/internal/domain"
)

// DB implements an in-memory database storage. Every method holds the mutex
// for its whole body, so check-and-insert is atomic.
type DB struct {
	mu      sync.Mutex
	users   []domain.User
	fasts   []domain.Fast
	weights []domain.WeightEntry

	userIDCounter   int64
	fastIDCounter   int64
	weightIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.FastRepository = (*DB)(nil)
var _ domain.WeightRepository = (*DB)(nil)

// --- UserRepository ---

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrEmailRegistered
		}
	}

	db.userIDCounter++
	u.ID = db.userIDCounter
	db.users = append(db.users, u)
	return &u, nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// ListUsers returns users in id order.
func (db *DB) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	// users is append-only with increasing ids.
	return window(db.users, offset, limit), nil
}

func (db *DB) hasUser(id int64) bool {
	for _, u := range db.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// --- FastRepository ---

// AddFast stores a new active fast unless the user already has one.
func (db *DB) AddFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.hasUser(f.UserID) {
		return nil, domain.ErrUserNotFound
	}
	for _, existing := range db.fasts {
		if existing.UserID == f.UserID && !existing.Completed {
			return nil, domain.ErrFastInProgress
		}
	}

	db.fastIDCounter++
	f.ID = db.fastIDCounter
	f.StartTime = f.StartTime.UTC()
	f.PlannedEndTime = f.PlannedEndTime.UTC()
	f.Completed, f.Deleted = false, false
	f.EndTime, f.Duration = nil, nil
	db.fasts = append(db.fasts, f)
	return cloneFast(f), nil
}

// ActiveFast returns the user's fast with completed = false.
func (db *DB) ActiveFast(ctx context.Context, userID int64) (*domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, f := range db.fasts {
		if f.UserID == userID && !f.Completed && !f.Deleted {
			return cloneFast(f), nil
		}
	}
	return nil, nil
}

// GetFast returns one of the user's fasts, deleted or not.
func (db *DB) GetFast(ctx context.Context, userID, id int64) (*domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, f := range db.fasts {
		if f.ID == id && f.UserID == userID {
			return cloneFast(f), nil
		}
	}
	return nil, nil
}

// CompleteFast ends an active fast.
func (db *DB) CompleteFast(ctx context.Context, id int64, end time.Time, duration time.Duration) (*domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.fasts {
		f := &db.fasts[i]
		if f.ID != id {
			continue
		}
		if f.Completed {
			return nil, nil
		}
		end = end.UTC()
		f.EndTime = &end
		f.Duration = &duration
		f.Completed = true
		return cloneFast(*f), nil
	}
	return nil, nil
}

// UpdateFast rewrites the schedule of a stored fast.
func (db *DB) UpdateFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.fasts {
		stored := &db.fasts[i]
		if stored.ID != f.ID || stored.UserID != f.UserID {
			continue
		}
		if stored.Deleted || stored.Completed != f.Completed {
			return nil, nil
		}
		stored.StartTime = f.StartTime.UTC()
		stored.PlannedEndTime = f.PlannedEndTime.UTC()
		stored.PlannedDuration = f.PlannedDuration
		if stored.Completed && f.Duration != nil {
			d := *f.Duration
			stored.Duration = &d
		}
		return cloneFast(*stored), nil
	}
	return nil, nil
}

// ListFasts returns the user's visible fasts in id order.
func (db *DB) ListFasts(ctx context.Context, userID int64, offset, limit int) ([]domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return window(db.visibleFasts(userID, func(domain.Fast) bool { return true }), offset, limit), nil
}

// CompletedFasts returns all of the user's visible completed fasts.
func (db *DB) CompletedFasts(ctx context.Context, userID int64) ([]domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.visibleFasts(userID, func(f domain.Fast) bool { return f.Completed }), nil
}

// FastsBetween returns fasts overlapping [from, to) ordered by start time.
func (db *DB) FastsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.Fast, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := db.visibleFasts(userID, func(f domain.Fast) bool {
		return f.StartTime.Before(to) && (f.EndTime == nil || f.EndTime.After(from))
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// SoftDeleteFast flags a fast as deleted.
func (db *DB) SoftDeleteFast(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.fasts {
		f := &db.fasts[i]
		if f.ID == id && f.UserID == userID && !f.Deleted {
			f.Deleted = true
			return true, nil
		}
	}
	return false, nil
}

func (db *DB) visibleFasts(userID int64, keep func(domain.Fast) bool) []domain.Fast {
	out := make([]domain.Fast, 0)
	for _, f := range db.fasts {
		if f.UserID == userID && !f.Deleted && keep(f) {
			out = append(out, *cloneFast(f))
		}
	}
	return out
}

// cloneFast copies f so callers can't alias the stored pointers.
func cloneFast(f domain.Fast) *domain.Fast {
	if f.EndTime != nil {
		end := *f.EndTime
		f.EndTime = &end
	}
	if f.Duration != nil {
		d := *f.Duration
		f.Duration = &d
	}
	return &f
}

// --- WeightRepository ---

// AddWeight stores a weight entry.
func (db *DB) AddWeight(ctx context.Context, w domain.WeightEntry) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.hasUser(w.UserID) {
		return nil, domain.ErrUserNotFound
	}
	db.weightIDCounter++
	w.ID = db.weightIDCounter
	w.WeightTime = w.WeightTime.UTC()
	db.weights = append(db.weights, w)
	return &w, nil
}

// ListWeights returns the user's entries in id order.
func (db *DB) ListWeights(ctx context.Context, userID int64, offset, limit int) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.WeightEntry, 0)
	for _, w := range db.weights {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return window(out, offset, limit), nil
}

// LatestWeight returns the entry with the latest weight_time.
func (db *DB) LatestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	ws := db.userWeights(userID)
	if len(ws) == 0 {
		return nil, nil
	}
	return &ws[len(ws)-1], nil
}

// EarliestWeight returns the entry with the earliest weight_time.
func (db *DB) EarliestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	ws := db.userWeights(userID)
	if len(ws) == 0 {
		return nil, nil
	}
	return &ws[0], nil
}

// WeightsBetween returns entries in [from, to), oldest first.
func (db *DB) WeightsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.WeightEntry, 0)
	for _, w := range db.userWeights(userID) {
		if !w.WeightTime.Before(from) && w.WeightTime.Before(to) {
			out = append(out, w)
		}
	}
	return out, nil
}

// userWeights copies the user's entries sorted by weight_time, then id.
func (db *DB) userWeights(userID int64) []domain.WeightEntry {
	out := make([]domain.WeightEntry, 0)
	for _, w := range db.weights {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeightTime.Before(out[j].WeightTime)
	})
	return out
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
