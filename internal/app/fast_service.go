package app

import (
	"context"
	"fmt"
	"time"

	"fastingapi/internal/domain"
)

// FastService enforces the fast lifecycle: one active fast per user, start
// and end times not in the future, end not before start.
type FastService struct {
	fasts domain.FastRepository
	users domain.UserRepository
	now   Clock
}

// NewFastService creates a FastService backed by the given repositories.
func NewFastService(fasts domain.FastRepository, users domain.UserRepository) *FastService {
	return &FastService{fasts: fasts, users: users, now: utcNow}
}

// WithClock replaces the service clock.
func (s *FastService) WithClock(c Clock) *FastService {
	s.now = c
	return s
}

// StartFastInput carries the optional plan of a new fast. A zero StartTime
// means now.
type StartFastInput struct {
	StartTime       time.Time
	PlannedEndTime  *time.Time
	PlannedDuration *float64
}

// StartFast creates a new active fast for the user.
func (s *FastService) StartFast(ctx context.Context, userID int64, in StartFastInput) (*domain.Fast, error) {
	now := s.now()
	start := now
	if !in.StartTime.IsZero() {
		start = normalize(in.StartTime)
	}
	if start.After(now) {
		return nil, domain.ErrFutureStart
	}

	var plannedEnd *time.Time
	if in.PlannedEndTime != nil {
		t := normalize(*in.PlannedEndTime)
		plannedEnd = &t
	}
	end, hours, err := domain.PlanFast(start, plannedEnd, in.PlannedDuration)
	if err != nil {
		return nil, err
	}

	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	active, err := s.fasts.ActiveFast(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup active fast: %w", err)
	}
	if active != nil {
		return nil, domain.ErrFastInProgress
	}

	// AddFast also fails with ErrFastInProgress if a concurrent start won.
	return s.fasts.AddFast(ctx, domain.Fast{
		UserID:          userID,
		StartTime:       start,
		PlannedEndTime:  normalize(end),
		PlannedDuration: hours,
	})
}

// EndFast completes the user's active fast at endTime, or now when nil.
func (s *FastService) EndFast(ctx context.Context, userID int64, endTime *time.Time) (*domain.Fast, error) {
	now := s.now()
	end := now
	if endTime != nil && !endTime.IsZero() {
		end = normalize(*endTime)
	}
	if end.After(now) {
		return nil, domain.ErrFutureEnd
	}

	active, err := s.fasts.ActiveFast(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup active fast: %w", err)
	}
	if active == nil {
		return nil, domain.ErrNoFastInProgress
	}
	if end.Before(active.StartTime) {
		return nil, domain.ErrEndBeforeStart
	}

	done, err := s.fasts.CompleteFast(ctx, active.ID, end, end.Sub(active.StartTime))
	if err != nil {
		return nil, fmt.Errorf("complete fast %d: %w", active.ID, err)
	}
	if done == nil {
		// Ended by a concurrent request between the lookup and the update.
		return nil, domain.ErrNoFastInProgress
	}
	return done, nil
}

// GetActiveFast returns the user's active fast or nil.
func (s *FastService) GetActiveFast(ctx context.Context, userID int64) (*domain.Fast, error) {
	return s.fasts.ActiveFast(ctx, userID)
}

// ListFasts returns a page of the user's fasts in id order.
func (s *FastService) ListFasts(ctx context.Context, userID int64, offset, limit int) ([]domain.Fast, error) {
	offset, limit = page(offset, limit)
	return s.fasts.ListFasts(ctx, userID, offset, limit)
}

// DeleteFast soft-deletes a completed fast.
func (s *FastService) DeleteFast(ctx context.Context, userID, fastID int64) error {
	f, err := s.fasts.GetFast(ctx, userID, fastID)
	if err != nil {
		return fmt.Errorf("get fast %d: %w", fastID, err)
	}
	if f == nil || f.Deleted {
		return domain.ErrFastNotFound
	}
	if !f.Completed {
		return domain.ErrDeleteActiveFast
	}
	ok, err := s.fasts.SoftDeleteFast(ctx, userID, fastID)
	if err != nil {
		return fmt.Errorf("delete fast %d: %w", fastID, err)
	}
	if !ok {
		return domain.ErrFastNotFound
	}
	return nil
}

// EditFastInput carries the editable fields of a fast. Nil fields keep
// their stored value.
type EditFastInput struct {
	StartTime       *time.Time
	PlannedDuration *float64
}

// EditFast moves the start of a fast or changes its planned duration. The
// planned end follows the new plan, and a completed fast gets its duration
// recomputed against the unchanged end time.
func (s *FastService) EditFast(ctx context.Context, userID, fastID int64, in EditFastInput) (*domain.Fast, error) {
	f, err := s.fasts.GetFast(ctx, userID, fastID)
	if err != nil {
		return nil, fmt.Errorf("get fast %d: %w", fastID, err)
	}
	if f == nil || f.Deleted {
		return nil, domain.ErrFastNotFound
	}

	start := f.StartTime
	if in.StartTime != nil && !in.StartTime.IsZero() {
		start = normalize(*in.StartTime)
	}
	if start.After(s.now()) {
		return nil, domain.ErrFutureStart
	}
	hours := f.PlannedDuration
	if in.PlannedDuration != nil {
		hours = *in.PlannedDuration
	}
	plannedEnd, hours, err := domain.PlanFast(start, nil, &hours)
	if err != nil {
		return nil, err
	}

	edited := *f
	edited.StartTime = start
	edited.PlannedEndTime = normalize(plannedEnd)
	edited.PlannedDuration = hours
	if f.Completed && f.EndTime != nil {
		if f.EndTime.Before(start) {
			return nil, domain.ErrEndBeforeStart
		}
		d := f.EndTime.Sub(start)
		edited.Duration = &d
	}

	updated, err := s.fasts.UpdateFast(ctx, edited)
	if err != nil {
		return nil, fmt.Errorf("update fast %d: %w", fastID, err)
	}
	if updated == nil {
		// Ended or deleted by a concurrent request since GetFast.
		return nil, domain.ErrFastChanged
	}
	return updated, nil
}

func requireUser(ctx context.Context, users domain.UserRepository, userID int64) error {
	u, err := users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user %d: %w", userID, err)
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	return nil
}
