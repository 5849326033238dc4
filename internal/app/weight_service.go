package app

import (
	"context"
	"fmt"
	"time"

	"fastingapi/internal/domain"
)

// BMIPolicy selects the height used for BMI. By default every entry uses
// the fixed Height; with UseProfileHeight the user's stored height is used
// whenever it is positive.
type BMIPolicy struct {
	Height           float64 // meters
	UseProfileHeight bool
}

// DefaultBMIPolicy is the fixed-height behavior.
func DefaultBMIPolicy() BMIPolicy {
	return BMIPolicy{Height: domain.DefaultBMIHeight}
}

func (p BMIPolicy) heightFor(u *domain.User) float64 {
	if p.UseProfileHeight && u != nil && u.Height != nil && *u.Height > 0 {
		return domain.HeightMeters(*u.Height, u.Unit)
	}
	if p.Height > 0 {
		return p.Height
	}
	return domain.DefaultBMIHeight
}

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	weights domain.WeightRepository
	users   domain.UserRepository
	bmi     BMIPolicy
	now     Clock
}

// NewWeightService creates a WeightService backed by the given repositories.
func NewWeightService(weights domain.WeightRepository, users domain.UserRepository, bmi BMIPolicy) *WeightService {
	return &WeightService{weights: weights, users: users, bmi: bmi, now: utcNow}
}

// WithClock replaces the service clock.
func (s *WeightService) WithClock(c Clock) *WeightService {
	s.now = c
	return s
}

// RecordWeightInput is a submitted measurement. Unit defaults to metric and
// WeightTime to now.
type RecordWeightInput struct {
	Weight     float64
	WeightTime *time.Time
	Unit       string
}

// RecordWeight validates, normalizes to kilograms and stores a measurement.
func (s *WeightService) RecordWeight(ctx context.Context, userID int64, in RecordWeightInput) (*domain.WeightEntry, error) {
	if in.Weight <= 0 {
		return nil, domain.ErrInvalidWeight
	}
	unit, err := domain.ParseUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	at := now
	if in.WeightTime != nil && !in.WeightTime.IsZero() {
		at = normalize(*in.WeightTime)
	}
	if at.After(now) {
		return nil, domain.ErrFutureWeight
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	kg := domain.ConvertWeight(in.Weight, unit, domain.UnitMetric)
	return s.weights.AddWeight(ctx, domain.WeightEntry{
		UserID:     userID,
		Weight:     kg,
		WeightTime: at,
		Unit:       domain.UnitMetric,
		BMI:        domain.BMI(kg, s.bmi.heightFor(u)),
	})
}

// ListWeights returns a page of the user's entries in id order.
func (s *WeightService) ListWeights(ctx context.Context, userID int64, offset, limit int) ([]domain.WeightEntry, error) {
	offset, limit = page(offset, limit)
	return s.weights.ListWeights(ctx, userID, offset, limit)
}
