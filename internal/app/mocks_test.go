package app_test

import (
	"context"
	"time"

	"fastingapi/internal/domain"
)

type mockUserRepo struct {
	createFn  func(ctx context.Context, u domain.User) (*domain.User, error)
	getFn     func(ctx context.Context, id int64) (*domain.User, error)
	byEmailFn func(ctx context.Context, email string) (*domain.User, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = 1
	return &u, nil
}

func (m *mockUserRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &domain.User{ID: id, Email: "user@example.com", Unit: domain.UnitMetric, IsActive: true}, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.byEmailFn != nil {
		return m.byEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

type mockFastRepo struct {
	addFn       func(ctx context.Context, f domain.Fast) (*domain.Fast, error)
	activeFn    func(ctx context.Context, userID int64) (*domain.Fast, error)
	getFn       func(ctx context.Context, userID, id int64) (*domain.Fast, error)
	completeFn  func(ctx context.Context, id int64, end time.Time, d time.Duration) (*domain.Fast, error)
	listFn      func(ctx context.Context, userID int64, offset, limit int) ([]domain.Fast, error)
	completedFn func(ctx context.Context, userID int64) ([]domain.Fast, error)
	betweenFn   func(ctx context.Context, userID int64, from, to time.Time) ([]domain.Fast, error)
	deleteFn    func(ctx context.Context, userID, id int64) (bool, error)
	updateFn    func(ctx context.Context, f domain.Fast) (*domain.Fast, error)
}

func (m *mockFastRepo) UpdateFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, f)
	}
	return &f, nil
}

func (m *mockFastRepo) AddFast(ctx context.Context, f domain.Fast) (*domain.Fast, error) {
	if m.addFn != nil {
		return m.addFn(ctx, f)
	}
	f.ID = 1
	return &f, nil
}

func (m *mockFastRepo) ActiveFast(ctx context.Context, userID int64) (*domain.Fast, error) {
	if m.activeFn != nil {
		return m.activeFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFastRepo) GetFast(ctx context.Context, userID, id int64) (*domain.Fast, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockFastRepo) CompleteFast(ctx context.Context, id int64, end time.Time, d time.Duration) (*domain.Fast, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, id, end, d)
	}
	return nil, nil
}

func (m *mockFastRepo) ListFasts(ctx context.Context, userID int64, offset, limit int) ([]domain.Fast, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *mockFastRepo) CompletedFasts(ctx context.Context, userID int64) ([]domain.Fast, error) {
	if m.completedFn != nil {
		return m.completedFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFastRepo) FastsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.Fast, error) {
	if m.betweenFn != nil {
		return m.betweenFn(ctx, userID, from, to)
	}
	return nil, nil
}

func (m *mockFastRepo) SoftDeleteFast(ctx context.Context, userID, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return true, nil
}

type mockWeightRepo struct {
	addFn      func(ctx context.Context, w domain.WeightEntry) (*domain.WeightEntry, error)
	listFn     func(ctx context.Context, userID int64, offset, limit int) ([]domain.WeightEntry, error)
	latestFn   func(ctx context.Context, userID int64) (*domain.WeightEntry, error)
	earliestFn func(ctx context.Context, userID int64) (*domain.WeightEntry, error)
	betweenFn  func(ctx context.Context, userID int64, from, to time.Time) ([]domain.WeightEntry, error)
}

func (m *mockWeightRepo) AddWeight(ctx context.Context, w domain.WeightEntry) (*domain.WeightEntry, error) {
	if m.addFn != nil {
		return m.addFn(ctx, w)
	}
	w.ID = 1
	return &w, nil
}

func (m *mockWeightRepo) ListWeights(ctx context.Context, userID int64, offset, limit int) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *mockWeightRepo) LatestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) EarliestWeight(ctx context.Context, userID int64) (*domain.WeightEntry, error) {
	if m.earliestFn != nil {
		return m.earliestFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) WeightsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.WeightEntry, error) {
	if m.betweenFn != nil {
		return m.betweenFn(ctx, userID, from, to)
	}
	return nil, nil
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }
