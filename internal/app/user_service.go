package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fastingapi/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration and the profile view.
type UserService struct {
	users   domain.UserRepository
	fasts   domain.FastRepository
	weights domain.WeightRepository
	now     Clock
}

// NewUserService creates a UserService backed by the given repositories.
func NewUserService(users domain.UserRepository, fasts domain.FastRepository, weights domain.WeightRepository) *UserService {
	return &UserService{users: users, fasts: fasts, weights: weights, now: utcNow}
}

// WithClock replaces the service clock.
func (s *UserService) WithClock(c Clock) *UserService {
	s.now = c
	return s
}

// CreateUserInput is a registration request.
type CreateUserInput struct {
	Email      string
	Password   string
	Weight     *float64
	Height     *float64
	GoalWeight *float64
	Unit       string
}

// CreateUser registers a new active user.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domain.Validationf("Email is required.")
	}
	if in.Password == "" {
		return nil, domain.Validationf("Password is required.")
	}
	if len(in.Password) > 72 {
		return nil, domain.Validationf("Password can't be longer than 72 bytes.")
	}
	unit, err := domain.ParseUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	for _, v := range []*float64{in.Weight, in.Height, in.GoalWeight} {
		if v != nil && *v < 0 {
			return nil, domain.Validationf("Profile values can't be negative.")
		}
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailRegistered
	}

	// The stored hash is a credential proxy; nothing verifies it yet.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateUser(ctx, domain.User{
		Email:          email,
		HashedPassword: string(hash),
		Weight:         in.Weight,
		Height:         in.Height,
		GoalWeight:     in.GoalWeight,
		Unit:           unit,
		IsActive:       true,
	})
}

// ListUsers returns a page of users in id order.
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	offset, limit = page(offset, limit)
	return s.users.ListUsers(ctx, offset, limit)
}

// ActiveFastView is an active fast with its live, unpersisted progress.
type ActiveFastView struct {
	domain.Fast
	Elapsed    time.Duration
	Completion float64 // percent of the planned duration
}

// UserStats are read-time aggregates over a user's history. Nil fields could
// not be derived.
type UserStats struct {
	NumberOfFasts      int      `json:"number_of_fasts"`
	TotalHoursFasted   float64  `json:"total_hours_fasted"`
	LongestFast        float64  `json:"longest_fast"`
	HoursSinceLastFast *float64 `json:"hours_since_last_fast"`
	BMI                *float64 `json:"bmi"`
	CurrentWeight      *float64 `json:"current_weight"`
	WeightLoss         *float64 `json:"weight_loss"`
}

// UserProfile is the composed user view.
type UserProfile struct {
	User       domain.User
	ActiveFast *ActiveFastView
	Stats      UserStats
}

// GetUserProfile loads a user with the active fast and statistics.
func (s *UserService) GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	now := s.now()
	p := &UserProfile{User: *u}

	active, err := s.fasts.ActiveFast(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup active fast: %w", err)
	}
	if active != nil {
		p.ActiveFast = activeView(*active, now)
	}

	completed, err := s.fasts.CompletedFasts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completed fasts: %w", err)
	}
	p.Stats = fastStats(completed, now)

	latest, err := s.weights.LatestWeight(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest weight: %w", err)
	}
	if latest != nil {
		bmi, current := latest.BMI, latest.Weight
		p.Stats.BMI = &bmi
		p.Stats.CurrentWeight = &current

		start, err := s.startWeight(ctx, u)
		if err != nil {
			return nil, err
		}
		if start != nil {
			loss := *start - current
			p.Stats.WeightLoss = &loss
		}
	}
	return p, nil
}

// startWeight is the profile weight in kg, or the earliest entry.
func (s *UserService) startWeight(ctx context.Context, u *domain.User) (*float64, error) {
	if u.Weight != nil && *u.Weight > 0 {
		kg := domain.ConvertWeight(*u.Weight, u.Unit, domain.UnitMetric)
		return &kg, nil
	}
	first, err := s.weights.EarliestWeight(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("earliest weight: %w", err)
	}
	if first == nil {
		return nil, nil
	}
	return &first.Weight, nil
}

func activeView(f domain.Fast, now time.Time) *ActiveFastView {
	v := &ActiveFastView{Fast: f, Elapsed: f.Elapsed(now)}
	if f.PlannedDuration > 0 {
		v.Completion = v.Elapsed.Hours() / f.PlannedDuration * 100
	}
	return v
}

func fastStats(completed []domain.Fast, now time.Time) UserStats {
	var st UserStats
	var total, longest time.Duration
	var lastEnd time.Time
	for _, f := range completed {
		if !f.Completed || f.Deleted {
			continue
		}
		d := f.Elapsed(now)
		st.NumberOfFasts++
		total += d
		if d > longest {
			longest = d
		}
		if f.EndTime != nil && f.EndTime.After(lastEnd) {
			lastEnd = *f.EndTime
		}
	}
	st.TotalHoursFasted = total.Hours()
	st.LongestFast = longest.Hours()
	if !lastEnd.IsZero() {
		since := now.Sub(lastEnd).Hours()
		st.HoursSinceLastFast = &since
	}
	return st
}
