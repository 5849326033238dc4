// Package storetest is a conformance suite run against every repository
// adapter.
package storetest

import (
	"context"
	"sync"
	"time"

	"fastingapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Store is the set of ports every adapter implements.
type Store interface {
	domain.UserRepository
	domain.FastRepository
	domain.WeightRepository
}

// Suite exercises a Store. Open must return an empty store and is called
// before every test.
type Suite struct {
	suite.Suite
	Open func() Store

	store Store
	ctx   context.Context
	now   time.Time
}

// SetupTest runs before each test
func (s *Suite) SetupTest() {
	s.store = s.Open()
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *Suite) newUser(email string) *domain.User {
	u, err := s.store.CreateUser(s.ctx, domain.User{
		Email:          email,
		HashedPassword: "hash",
		Unit:           domain.UnitMetric,
		IsActive:       true,
	})
	require.NoError(s.T(), err, "create user %s", email)
	return u
}

func (s *Suite) startFast(userID int64, start time.Time) (*domain.Fast, error) {
	return s.store.AddFast(s.ctx, domain.Fast{
		UserID:          userID,
		StartTime:       start,
		PlannedEndTime:  start.Add(23 * time.Hour),
		PlannedDuration: 23,
	})
}

func (s *Suite) TestCreateAndGetUser() {
	height := 172.5
	u, err := s.store.CreateUser(s.ctx, domain.User{
		Email:          "ana@example.com",
		HashedPassword: "hash",
		Height:         &height,
		Unit:           domain.UnitImperial,
		IsActive:       true,
	})
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), u.ID)

	got, err := s.store.GetUser(s.ctx, u.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "ana@example.com", got.Email)
	assert.Equal(s.T(), domain.UnitImperial, got.Unit)
	assert.True(s.T(), got.IsActive)
	assert.Nil(s.T(), got.Weight)
	if assert.NotNil(s.T(), got.Height) {
		assert.Equal(s.T(), 172.5, *got.Height)
	}

	byEmail, err := s.store.GetUserByEmail(s.ctx, "ANA@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), byEmail)
	assert.Equal(s.T(), u.ID, byEmail.ID)

	missing, err := s.store.GetUser(s.ctx, u.ID+1000)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)
}

func (s *Suite) TestDuplicateEmail() {
	s.newUser("dup@example.com")
	_, err := s.store.CreateUser(s.ctx, domain.User{Email: "dup@example.com", HashedPassword: "x", Unit: domain.UnitMetric})
	assert.ErrorIs(s.T(), err, domain.ErrEmailRegistered)
}

func (s *Suite) TestListUsersOrderAndPaging() {
	for _, e := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io"} {
		s.newUser(e)
	}
	page, err := s.store.ListUsers(s.ctx, 1, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 2)
	assert.Equal(s.T(), "b@x.io", page[0].Email)
	assert.Equal(s.T(), "c@x.io", page[1].Email)
	assert.Less(s.T(), page[0].ID, page[1].ID)
}

func (s *Suite) TestFastLifecycle() {
	u := s.newUser("fast@example.com")
	start := s.now.Add(-23 * time.Hour)

	f, err := s.startFast(u.ID, start)
	require.NoError(s.T(), err)
	assert.False(s.T(), f.Completed)
	assert.False(s.T(), f.Deleted)
	assert.Nil(s.T(), f.EndTime)
	assert.Nil(s.T(), f.Duration)
	assert.True(s.T(), f.StartTime.Equal(start), "start %v != %v", f.StartTime, start)

	active, err := s.store.ActiveFast(s.ctx, u.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), active)
	assert.Equal(s.T(), f.ID, active.ID)

	_, err = s.startFast(u.ID, start)
	assert.ErrorIs(s.T(), err, domain.ErrFastInProgress)

	end := s.now
	done, err := s.store.CompleteFast(s.ctx, f.ID, end, end.Sub(start))
	require.NoError(s.T(), err)
	require.NotNil(s.T(), done)
	assert.True(s.T(), done.Completed)
	require.NotNil(s.T(), done.EndTime)
	assert.True(s.T(), done.EndTime.Equal(end))
	require.NotNil(s.T(), done.Duration)
	assert.Equal(s.T(), done.EndTime.Sub(done.StartTime), *done.Duration)

	again, err := s.store.CompleteFast(s.ctx, f.ID, end, time.Hour)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), again, "a completed fast is terminal")

	active, err = s.store.ActiveFast(s.ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), active)

	// A new fast may start once the previous one is complete.
	_, err = s.startFast(u.ID, end)
	assert.NoError(s.T(), err)
}

func (s *Suite) TestUpdateFast() {
	u := s.newUser("edit@example.com")
	start := s.now.Add(-20 * time.Hour)
	f, err := s.startFast(u.ID, start)
	require.NoError(s.T(), err)

	moved := *f
	moved.StartTime = start.Add(-time.Hour)
	moved.PlannedEndTime = moved.StartTime.Add(16 * time.Hour)
	moved.PlannedDuration = 16
	got, err := s.store.UpdateFast(s.ctx, moved)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.True(s.T(), got.StartTime.Equal(moved.StartTime))
	assert.True(s.T(), got.PlannedEndTime.Equal(moved.PlannedEndTime))
	assert.Equal(s.T(), 16.0, got.PlannedDuration)
	assert.Nil(s.T(), got.Duration)

	end := s.now
	_, err = s.store.CompleteFast(s.ctx, f.ID, end, end.Sub(moved.StartTime))
	require.NoError(s.T(), err)

	// The copy still says active, so the completed row is left alone.
	stale, err := s.store.UpdateFast(s.ctx, moved)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), stale)

	done := moved
	done.Completed = true
	done.StartTime = start
	d := end.Sub(start)
	done.Duration = &d
	got, err = s.store.UpdateFast(s.ctx, done)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	require.NotNil(s.T(), got.Duration)
	assert.Equal(s.T(), d, *got.Duration)
	require.NotNil(s.T(), got.EndTime)
	assert.True(s.T(), got.EndTime.Equal(end))

	ok, err := s.store.SoftDeleteFast(s.ctx, u.ID, f.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	gone, err := s.store.UpdateFast(s.ctx, done)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), gone)
}

func (s *Suite) TestAddFastUnknownUser() {
	_, err := s.startFast(424242, s.now)
	assert.ErrorIs(s.T(), err, domain.ErrUserNotFound)

	_, err = s.store.AddWeight(s.ctx, domain.WeightEntry{UserID: 424242, Weight: 70, WeightTime: s.now, Unit: domain.UnitMetric})
	assert.ErrorIs(s.T(), err, domain.ErrUserNotFound)
}

func (s *Suite) TestConcurrentStartFast() {
	u := s.newUser("race@example.com")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.startFast(u.ID, s.now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(s.T(), err, domain.ErrFastInProgress):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(s.T(), 1, wins)
	assert.Equal(s.T(), 7, conflicts)
}

func (s *Suite) TestListFastsSkipsDeleted() {
	u := s.newUser("list@example.com")
	var ids []int64
	for i := 3; i > 0; i-- {
		start := s.now.Add(-time.Duration(i) * 24 * time.Hour)
		f, err := s.startFast(u.ID, start)
		require.NoError(s.T(), err)
		_, err = s.store.CompleteFast(s.ctx, f.ID, start.Add(16*time.Hour), 16*time.Hour)
		require.NoError(s.T(), err)
		ids = append(ids, f.ID)
	}

	ok, err := s.store.SoftDeleteFast(s.ctx, u.ID, ids[1])
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)
	ok, err = s.store.SoftDeleteFast(s.ctx, u.ID, ids[1])
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)

	list, err := s.store.ListFasts(s.ctx, u.ID, 0, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), ids[0], list[0].ID)
	assert.Equal(s.T(), ids[2], list[1].ID)

	completed, err := s.store.CompletedFasts(s.ctx, u.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), completed, 2)

	deleted, err := s.store.GetFast(s.ctx, u.ID, ids[1])
	require.NoError(s.T(), err)
	require.NotNil(s.T(), deleted)
	assert.True(s.T(), deleted.Deleted)

	other, err := s.store.GetFast(s.ctx, u.ID+1, ids[0])
	require.NoError(s.T(), err)
	assert.Nil(s.T(), other, "fasts are scoped to their owner")
}

func (s *Suite) TestFastsBetween() {
	u := s.newUser("chart@example.com")
	day := time.Date(s.now.Year(), s.now.Month(), s.now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -5)

	add := func(start, end time.Time) {
		f, err := s.startFast(u.ID, start)
		require.NoError(s.T(), err)
		_, err = s.store.CompleteFast(s.ctx, f.ID, end, end.Sub(start))
		require.NoError(s.T(), err)
	}
	add(day.Add(-48*time.Hour), day.Add(-30*time.Hour))
	add(day.Add(-4*time.Hour), day.Add(10*time.Hour))
	add(day.Add(12*time.Hour), day.Add(20*time.Hour))
	add(day.Add(30*time.Hour), day.Add(40*time.Hour))

	got, err := s.store.FastsBetween(s.ctx, u.ID, day, day.Add(24*time.Hour))
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)
	assert.True(s.T(), got[0].StartTime.Equal(day.Add(-4*time.Hour)))
	assert.True(s.T(), got[1].StartTime.Equal(day.Add(12*time.Hour)))
}

func (s *Suite) TestWeights() {
	u := s.newUser("weight@example.com")
	offsets := []time.Duration{-time.Hour, -72 * time.Hour, -24 * time.Hour}
	for i, off := range offsets {
		w, err := s.store.AddWeight(s.ctx, domain.WeightEntry{
			UserID:     u.ID,
			Weight:     float64(80 + i),
			WeightTime: s.now.Add(off),
			Unit:       domain.UnitMetric,
			BMI:        27,
		})
		require.NoError(s.T(), err)
		assert.NotZero(s.T(), w.ID)
		assert.True(s.T(), w.WeightTime.Equal(s.now.Add(off)))
	}

	list, err := s.store.ListWeights(s.ctx, u.ID, 0, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), 80.0, list[0].Weight)
	assert.Equal(s.T(), domain.UnitMetric, list[0].Unit)

	latest, err := s.store.LatestWeight(s.ctx, u.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), latest)
	assert.Equal(s.T(), 80.0, latest.Weight)

	earliest, err := s.store.EarliestWeight(s.ctx, u.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), earliest)
	assert.Equal(s.T(), 81.0, earliest.Weight)

	between, err := s.store.WeightsBetween(s.ctx, u.ID, s.now.Add(-48*time.Hour), s.now)
	require.NoError(s.T(), err)
	require.Len(s.T(), between, 2)
	assert.Equal(s.T(), 82.0, between[0].Weight)
	assert.Equal(s.T(), 80.0, between[1].Weight)

	none, err := s.store.LatestWeight(s.ctx, u.ID+1)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), none)
}
