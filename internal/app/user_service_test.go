package app_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fastingapi/internal/app"
	"fastingapi/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func newUserService(users *mockUserRepo, fasts *mockFastRepo, weights *mockWeightRepo) *app.UserService {
	return app.NewUserService(users, fasts, weights).WithClock(clock)
}

func TestCreateUser_Success(t *testing.T) {
	var stored domain.User
	users := &mockUserRepo{
		createFn: func(_ context.Context, u domain.User) (*domain.User, error) {
			stored = u
			u.ID = 4
			return &u, nil
		},
	}
	svc := newUserService(users, &mockFastRepo{}, &mockWeightRepo{})

	got, err := svc.CreateUser(context.Background(), app.CreateUserInput{
		Email:    "ana@example.com",
		Password: "s3cret",
		Weight:   ptr(180.0),
		Unit:     "imperial",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 4 || !got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}
	if stored.Unit != domain.UnitImperial {
		t.Errorf("unit = %q", stored.Unit)
	}
	if stored.HashedPassword == "s3cret" {
		t.Fatal("password stored verbatim")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("s3cret")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		byEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
		createFn: func(_ context.Context, _ domain.User) (*domain.User, error) {
			t.Fatal("CreateUser must not be called")
			return nil, nil
		},
	}
	svc := newUserService(users, &mockFastRepo{}, &mockWeightRepo{})
	_, err := svc.CreateUser(context.Background(), app.CreateUserInput{Email: "a@b.c", Password: "x"})
	if !errors.Is(err, domain.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatal("expected conflict")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &mockFastRepo{}, &mockWeightRepo{})
	tests := []struct {
		name string
		in   app.CreateUserInput
	}{
		{"missing email", app.CreateUserInput{Password: "x"}},
		{"blank email", app.CreateUserInput{Email: "   ", Password: "x"}},
		{"missing password", app.CreateUserInput{Email: "a@b.c"}},
		{"bad unit", app.CreateUserInput{Email: "a@b.c", Password: "x", Unit: "stone"}},
		{"negative height", app.CreateUserInput{Email: "a@b.c", Password: "x", Height: ptr(-1.0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetUserProfile_NotFound(t *testing.T) {
	users := &mockUserRepo{
		getFn: func(_ context.Context, _ int64) (*domain.User, error) { return nil, nil },
	}
	svc := newUserService(users, &mockFastRepo{}, &mockWeightRepo{})
	_, err := svc.GetUserProfile(context.Background(), 42)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserProfile_ActiveFastDuration(t *testing.T) {
	start := fixedNow.Add(-6 * time.Hour)
	fasts := &mockFastRepo{
		activeFn: func(_ context.Context, userID int64) (*domain.Fast, error) {
			return &domain.Fast{ID: 2, UserID: userID, StartTime: start, PlannedDuration: 24}, nil
		},
	}
	svc := newUserService(&mockUserRepo{}, fasts, &mockWeightRepo{})

	p, err := svc.GetUserProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ActiveFast == nil {
		t.Fatal("expected active fast")
	}
	if p.ActiveFast.Elapsed != 6*time.Hour {
		t.Errorf("elapsed = %v; want 6h", p.ActiveFast.Elapsed)
	}
	if p.ActiveFast.Duration != nil {
		t.Error("live duration must not be stored on the fast")
	}
	if math.Abs(p.ActiveFast.Completion-25) > 1e-9 {
		t.Errorf("completion = %v; want 25", p.ActiveFast.Completion)
	}
}

func TestGetUserProfile_Stats(t *testing.T) {
	mk := func(id int64, start time.Time, hours float64, deleted bool) domain.Fast {
		d := domain.HoursToDuration(hours)
		end := start.Add(d)
		return domain.Fast{ID: id, StartTime: start, EndTime: &end, Duration: &d, Completed: true, Deleted: deleted}
	}
	completed := []domain.Fast{
		mk(1, fixedNow.Add(-72*time.Hour), 16, false),
		mk(2, fixedNow.Add(-48*time.Hour), 20, false),
		mk(3, fixedNow.Add(-30*time.Hour), 40, true),
		mk(4, fixedNow.Add(-26*time.Hour), 18, false),
	}
	users := &mockUserRepo{
		getFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Weight: ptr(200.0), Unit: domain.UnitImperial}, nil
		},
	}
	fasts := &mockFastRepo{
		completedFn: func(_ context.Context, _ int64) ([]domain.Fast, error) { return completed, nil },
	}
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int64) (*domain.WeightEntry, error) {
			return &domain.WeightEntry{Weight: 85, BMI: 28.7}, nil
		},
	}
	svc := newUserService(users, fasts, weights)

	p, err := svc.GetUserProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := p.Stats
	if st.NumberOfFasts != 3 {
		t.Errorf("number_of_fasts = %d; want 3", st.NumberOfFasts)
	}
	if math.Abs(st.TotalHoursFasted-54) > 1e-9 {
		t.Errorf("total_hours_fasted = %v; want 54", st.TotalHoursFasted)
	}
	if st.LongestFast != 20 {
		t.Errorf("longest_fast = %v; want 20", st.LongestFast)
	}
	if st.HoursSinceLastFast == nil || math.Abs(*st.HoursSinceLastFast-8) > 1e-9 {
		t.Errorf("hours_since_last_fast = %v; want 8", st.HoursSinceLastFast)
	}
	if st.BMI == nil || *st.BMI != 28.7 {
		t.Errorf("bmi = %v", st.BMI)
	}
	wantLoss := 200*domain.LbToKg - 85
	if st.WeightLoss == nil || math.Abs(*st.WeightLoss-wantLoss) > 1e-9 {
		t.Errorf("weight_loss = %v; want %v", st.WeightLoss, wantLoss)
	}
}

func TestGetUserProfile_WeightLossFromFirstEntry(t *testing.T) {
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int64) (*domain.WeightEntry, error) {
			return &domain.WeightEntry{Weight: 80, BMI: 27}, nil
		},
		earliestFn: func(_ context.Context, _ int64) (*domain.WeightEntry, error) {
			return &domain.WeightEntry{Weight: 84.5, BMI: 28.5}, nil
		},
	}
	svc := newUserService(&mockUserRepo{}, &mockFastRepo{}, weights)
	p, err := svc.GetUserProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stats.WeightLoss == nil || *p.Stats.WeightLoss != 4.5 {
		t.Errorf("weight_loss = %v; want 4.5", p.Stats.WeightLoss)
	}
}

func TestGetUserProfile_NoHistory(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &mockFastRepo{}, &mockWeightRepo{})
	p, err := svc.GetUserProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ActiveFast != nil {
		t.Error("expected no active fast")
	}
	st := p.Stats
	if st.NumberOfFasts != 0 || st.HoursSinceLastFast != nil || st.BMI != nil || st.WeightLoss != nil {
		t.Errorf("unexpected stats: %+v", st)
	}
}
