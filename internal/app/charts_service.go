package app

import (
	"context"
	"fmt"
	"time"

	"fastingapi/internal/domain"
)

const maxChartDays = 366

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	fasts   domain.FastRepository
	weights domain.WeightRepository
	now     Clock
}

// NewChartsService creates a ChartsService backed by the given repositories.
func NewChartsService(fr domain.FastRepository, wr domain.WeightRepository) *ChartsService {
	return &ChartsService{fasts: fr, weights: wr, now: utcNow}
}

// WithClock replaces the service clock.
func (s *ChartsService) WithClock(c Clock) *ChartsService {
	s.now = c
	return s
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day         string       `json:"day"`
	HoursFasted float64      `json:"hours_fasted"`
	Weight      *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a DayPoint.
type WeightPoint struct {
	Value float64     `json:"value"`
	Unit  domain.Unit `json:"unit"`
}

// GetDaily returns per-UTC-day chart data for the last days days, oldest
// first, with weights converted to the requested unit.
func (s *ChartsService) GetDaily(ctx context.Context, userID int64, days int, unit string) ([]DayPoint, error) {
	u, err := domain.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	if days > maxChartDays {
		days = maxChartDays
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	fasts, err := s.fasts.FastsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fasts between: %w", err)
	}
	weights, err := s.weights.WeightsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("weights between: %w", err)
	}

	points := make([]DayPoint, days)
	for i := range points {
		dayStart := from.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		points[i].Day = dayStart.Format("2006-01-02")

		var fasted time.Duration
		for _, f := range fasts {
			fasted += overlap(f, dayStart, dayEnd, now)
		}
		points[i].HoursFasted = fasted.Hours()
	}

	// weights are oldest first, so the last one written to a day wins.
	for _, w := range weights {
		i := int(w.WeightTime.Sub(from) / (24 * time.Hour))
		if i < 0 || i >= days {
			continue
		}
		points[i].Weight = &WeightPoint{
			Value: domain.ConvertWeight(w.Weight, domain.UnitMetric, u),
			Unit:  u,
		}
	}
	return points, nil
}

// overlap is how much of [from, to) the fast covers. An active fast runs
// until now.
func overlap(f domain.Fast, from, to, now time.Time) time.Duration {
	end := now
	if f.Completed && f.EndTime != nil {
		end = *f.EndTime
	}
	start := f.StartTime
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
