package domain

import (
	"context"
	"math"
	"time"
)

// DefaultPlannedHours is used when a fast is started without a plan.
const DefaultPlannedHours = 23.0

// MaxPlannedHours bounds a planned fast so end times stay representable.
const MaxPlannedHours = 10000.0

// Fast is one fasting interval. A fast is active until Completed is set,
// after which EndTime and Duration are populated and never change again.
type Fast struct {
	ID              int64
	UserID          int64
	StartTime       time.Time
	EndTime         *time.Time
	PlannedEndTime  time.Time
	PlannedDuration float64 // hours
	Completed       bool
	Deleted         bool
	Duration        *time.Duration
}

// Elapsed is the time fasted so far: the stored duration for a completed
// fast, now - start otherwise.
func (f Fast) Elapsed(now time.Time) time.Duration {
	if f.Completed && f.Duration != nil {
		return *f.Duration
	}
	if now.Before(f.StartTime) {
		return 0
	}
	return now.Sub(f.StartTime)
}

// PlanFast reconciles the planned end time and duration of a fast starting
// at start. A supplied duration wins over a supplied end time; with neither,
// DefaultPlannedHours applies.
func PlanFast(start time.Time, plannedEnd *time.Time, plannedHours *float64) (time.Time, float64, error) {
	switch {
	case plannedHours != nil:
		h := *plannedHours
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return time.Time{}, 0, ErrNegativeDuration
		}
		if h > MaxPlannedHours {
			return time.Time{}, 0, ErrDurationTooLong
		}
		return start.Add(HoursToDuration(h)), h, nil
	case plannedEnd != nil:
		end := plannedEnd.UTC()
		if end.Before(start) {
			return time.Time{}, 0, ErrEndBeforeStart
		}
		if end.After(start.Add(HoursToDuration(MaxPlannedHours))) {
			return time.Time{}, 0, ErrDurationTooLong
		}
		return end, end.Sub(start).Hours(), nil
	default:
		return start.Add(HoursToDuration(DefaultPlannedHours)), DefaultPlannedHours, nil
	}
}

// HoursToDuration converts fractional hours, rounding to the microsecond.
func HoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*float64(time.Hour)/float64(time.Microsecond))) * time.Microsecond
}

// FastRepository is the port for fast persistence. Soft-deleted fasts are
// invisible to every method except GetFast.
type FastRepository interface {
	// AddFast stores a new active fast. It returns ErrFastInProgress when the
	// user already has one, whatever the caller checked beforehand.
	AddFast(ctx context.Context, f Fast) (*Fast, error)
	ActiveFast(ctx context.Context, userID int64) (*Fast, error)
	GetFast(ctx context.Context, userID, id int64) (*Fast, error)
	// CompleteFast marks the fast ended if it is still active and returns
	// (nil, nil) otherwise.
	CompleteFast(ctx context.Context, id int64, end time.Time, duration time.Duration) (*Fast, error)
	// UpdateFast rewrites the start, plan and duration of f if it is not
	// deleted and its completed flag still matches f. It returns (nil, nil)
	// otherwise.
	UpdateFast(ctx context.Context, f Fast) (*Fast, error)
	ListFasts(ctx context.Context, userID int64, offset, limit int) ([]Fast, error)
	CompletedFasts(ctx context.Context, userID int64) ([]Fast, error)
	// FastsBetween returns fasts overlapping [from, to), ordered by start.
	FastsBetween(ctx context.Context, userID int64, from, to time.Time) ([]Fast, error)
	SoftDeleteFast(ctx context.Context, userID, id int64) (bool, error)
}
