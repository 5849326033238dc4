package domain

import (
	"context"
	"time"
)

// WeightEntry is a single weight measurement, always stored in kilograms.
type WeightEntry struct {
	ID         int64
	UserID     int64
	Weight     float64
	WeightTime time.Time
	Unit       Unit
	BMI        float64
}

// WeightRepository is the port for weight persistence.
type WeightRepository interface {
	AddWeight(ctx context.Context, w WeightEntry) (*WeightEntry, error)
	ListWeights(ctx context.Context, userID int64, offset, limit int) ([]WeightEntry, error)
	// LatestWeight and EarliestWeight order by weight_time and return
	// (nil, nil) for a user without entries.
	LatestWeight(ctx context.Context, userID int64) (*WeightEntry, error)
	EarliestWeight(ctx context.Context, userID int64) (*WeightEntry, error)
	// WeightsBetween returns entries with weight_time in [from, to), oldest first.
	WeightsBetween(ctx context.Context, userID int64, from, to time.Time) ([]WeightEntry, error)
}
