package adapthttp

import (
	"time"

	"fastingapi/internal/app"
	"fastingapi/internal/domain"
)

type userResponse struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	IsActive   bool        `json:"is_active"`
	Weight     *float64    `json:"weight"`
	Height     *float64    `json:"height"`
	GoalWeight *float64    `json:"goal_weight"`
	Unit       domain.Unit `json:"unit"`
}

type userProfileResponse struct {
	userResponse
	ActiveFast *activeFastResponse `json:"active_fast"`
	UserStats  app.UserStats       `json:"user_stats"`
}

type fastResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	StartTime       naiveTime  `json:"start_time"`
	EndTime         *naiveTime `json:"end_time"`
	PlannedEndTime  naiveTime  `json:"planned_end_time"`
	PlannedDuration float64    `json:"planned_duration"`
	Completed       bool       `json:"completed"`
	Duration        *float64   `json:"duration"` // seconds
}

// activeFastResponse carries the live duration, which is never stored.
type activeFastResponse struct {
	fastResponse
	Completion float64 `json:"completion"`
}

type weightResponse struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Weight     float64     `json:"weight"`
	WeightTime naiveTime   `json:"weight_time"`
	Unit       domain.Unit `json:"unit"`
	BMI        float64     `json:"bmi"`
}

func toUser(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		IsActive:   u.IsActive,
		Weight:     u.Weight,
		Height:     u.Height,
		GoalWeight: u.GoalWeight,
		Unit:       u.Unit,
	}
}

func toUsers(us []domain.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

func toProfile(p *app.UserProfile) userProfileResponse {
	resp := userProfileResponse{userResponse: toUser(p.User), UserStats: p.Stats}
	if p.ActiveFast != nil {
		f := toFast(p.ActiveFast.Fast)
		f.Duration = seconds(&p.ActiveFast.Elapsed)
		resp.ActiveFast = &activeFastResponse{fastResponse: f, Completion: p.ActiveFast.Completion}
	}
	return resp
}

func toFast(f domain.Fast) fastResponse {
	return fastResponse{
		ID:              f.ID,
		UserID:          f.UserID,
		StartTime:       naiveTime{f.StartTime},
		EndTime:         naivePtr(f.EndTime),
		PlannedEndTime:  naiveTime{f.PlannedEndTime},
		PlannedDuration: f.PlannedDuration,
		Completed:       f.Completed,
		Duration:        seconds(f.Duration),
	}
}

func toFasts(fs []domain.Fast) []fastResponse {
	out := make([]fastResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, toFast(f))
	}
	return out
}

func toWeight(w domain.WeightEntry) weightResponse {
	return weightResponse{
		ID:         w.ID,
		UserID:     w.UserID,
		Weight:     w.Weight,
		WeightTime: naiveTime{w.WeightTime},
		Unit:       w.Unit,
		BMI:        w.BMI,
	}
}

func toWeights(ws []domain.WeightEntry) []weightResponse {
	out := make([]weightResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWeight(w))
	}
	return out
}

func seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}
