package adapthttp_test

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adapthttp "fastingapi/internal/adapter/http"
	"fastingapi/internal/adapter/memory"
	"fastingapi/internal/app"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.New()
	us := app.NewUserService(db, db, db)
	fs := app.NewFastService(db, db)
	ws := app.NewWeightService(db, db, app.DefaultBMIPolicy())
	cs := app.NewChartsService(db, db)

	srv := adapthttp.New(us, fs, ws, cs, adapthttp.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("failed to decode response body %q: %v", raw, err)
	}
	return m
}

func createUser(t *testing.T, ts *httptest.Server, email string) {
	t.Helper()
	code, raw := do(t, ts, http.MethodPost, "/users/", `{"email":"`+email+`","password":"secret"}`)
	if code != http.StatusOK {
		t.Fatalf("create user: %d %s", code, raw)
	}
}

func expectDetail(t *testing.T, code int, raw []byte, wantCode int, wantDetail string) {
	t.Helper()
	if code != wantCode {
		t.Fatalf("expected %d, got %d: %s", wantCode, code, raw)
	}
	if wantDetail == "" {
		return
	}
	if got := decode(t, raw)["detail"]; got != wantDetail {
		t.Errorf("detail = %v, want %q", got, wantDetail)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRootAndHealth(t *testing.T) {
	ts := newTestServer(t)

	code, raw := do(t, ts, http.MethodGet, "/", "")
	if code != http.StatusOK || decode(t, raw)["message"] != "what" {
		t.Fatalf("GET / = %d %s", code, raw)
	}

	code, raw = do(t, ts, http.MethodGet, "/health", "")
	if code != http.StatusOK || decode(t, raw)["ok"] != true {
		t.Fatalf("GET /health = %d %s", code, raw)
	}
}

func TestFastScenario(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")

	start := time.Now().UTC().Add(-23 * time.Hour).Truncate(time.Second)
	code, raw := do(t, ts, http.MethodPost, "/fast/1/fasts/",
		`{"start_time":"`+start.Format("2006-01-02T15:04:05")+`","planned_duration":24}`)
	if code != http.StatusOK {
		t.Fatalf("start fast: %d %s", code, raw)
	}
	fast := decode(t, raw)
	if fast["completed"] != false {
		t.Errorf("completed = %v", fast["completed"])
	}
	plannedEnd, err := time.Parse("2006-01-02T15:04:05.999999", fast["planned_end_time"].(string))
	if err != nil {
		t.Fatal(err)
	}
	if !plannedEnd.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("planned_end_time = %v, want %v", plannedEnd, start.Add(24*time.Hour))
	}

	code, raw = do(t, ts, http.MethodPost, "/fast/1/fasts/", `{}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "Already a fast is in progress")

	// Active fast as seen from the profile.
	code, raw = do(t, ts, http.MethodGet, "/users/1", "")
	if code != http.StatusOK {
		t.Fatalf("get user: %d %s", code, raw)
	}
	active, ok := decode(t, raw)["active_fast"].(map[string]any)
	if !ok {
		t.Fatalf("expected active_fast, got %s", raw)
	}
	if c, _ := active["completion"].(float64); c < 95 || c > 96 {
		t.Errorf("completion = %v, want ~95.8", active["completion"])
	}

	// End with an empty body.
	code, raw = do(t, ts, http.MethodPost, "/fast/1/end_fast/", "")
	if code != http.StatusOK {
		t.Fatalf("end fast: %d %s", code, raw)
	}
	ended := decode(t, raw)
	if ended["completed"] != true {
		t.Errorf("completed = %v", ended["completed"])
	}
	dur, _ := ended["duration"].(float64)
	if dur < 23*3600 || dur > 23*3600+60 {
		t.Errorf("duration = %v seconds, want ~23h", dur)
	}

	code, raw = do(t, ts, http.MethodPost, "/fast/1/end_fast/", `{}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "There is no fast in progress")

	code, raw = do(t, ts, http.MethodGet, "/users/1", "")
	if code != http.StatusOK {
		t.Fatalf("get user: %d %s", code, raw)
	}
	profile := decode(t, raw)
	if profile["active_fast"] != nil {
		t.Errorf("active_fast = %v, want null", profile["active_fast"])
	}
	stats, _ := profile["user_stats"].(map[string]any)
	if n, _ := stats["number_of_fasts"].(float64); n != 1 {
		t.Errorf("number_of_fasts = %v", stats["number_of_fasts"])
	}
	if _, ok := profile["hashed_password"]; ok {
		t.Error("password hash must not be returned")
	}

	code, raw = do(t, ts, http.MethodGet, "/fast/1/fasts/", "")
	if code != http.StatusOK {
		t.Fatalf("list fasts: %d %s", code, raw)
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s (%v)", raw, err)
	}
}

func TestStartFastValidation(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")

	future := time.Now().UTC().Add(2 * time.Hour).Format("2006-01-02T15:04:05")
	past := time.Now().UTC().Add(-2 * time.Hour)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"future start", "/fast/1/fasts/", `{"start_time":"` + future + `"}`, http.StatusBadRequest},
		{"end before start", "/fast/1/fasts/", `{"start_time":"` + past.Format("2006-01-02 15:04") + `","planned_end_time":"` + past.Add(-time.Hour).Format(time.RFC3339) + `"}`, http.StatusBadRequest},
		{"negative duration", "/fast/1/fasts/", `{"planned_duration":-1}`, http.StatusBadRequest},
		{"malformed json", "/fast/1/fasts/", `{"start_time":`, http.StatusBadRequest},
		{"bad timestamp", "/fast/1/fasts/", `{"start_time":"yesterday"}`, http.StatusBadRequest},
		{"bad user id", "/fast/abc/fasts/", `{}`, http.StatusBadRequest},
		{"unknown user", "/fast/99/fasts/", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, raw := do(t, ts, http.MethodPost, tt.path, tt.body)
			if code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, code, raw)
			}
			if _, ok := decode(t, raw)["detail"]; !ok {
				t.Errorf("error body missing detail: %s", raw)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")
	createUser(t, ts, "bo@example.com")

	code, raw := do(t, ts, http.MethodPost, "/users/", `{"email":"ANA@example.com","password":"x"}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "Email already registered")

	code, raw = do(t, ts, http.MethodGet, "/users/99", "")
	expectDetail(t, code, raw, http.StatusNotFound, "User not found")

	code, raw = do(t, ts, http.MethodGet, "/users/?skip=1&limit=5", "")
	if code != http.StatusOK {
		t.Fatalf("list users: %d %s", code, raw)
	}
	var users []map[string]any
	if err := json.Unmarshal(raw, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0]["email"] != "bo@example.com" || users[0]["is_active"] != true {
		t.Errorf("users = %s", raw)
	}
}

func TestRecordWeightImperial(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")

	code, raw := do(t, ts, http.MethodPost, "/weight/1/fasts/", `{"weight":150,"unit":"imperial"}`)
	if code != http.StatusOK {
		t.Fatalf("record weight: %d %s", code, raw)
	}
	w := decode(t, raw)
	kg, _ := w["weight"].(float64)
	if math.Abs(kg-68.04) > 0.01 {
		t.Errorf("weight = %v, want ~68.04", kg)
	}
	if w["unit"] != "metric" {
		t.Errorf("unit = %v", w["unit"])
	}
	bmi, _ := w["bmi"].(float64)
	if math.Abs(bmi-kg/(1.72*1.72)) > 1e-9 {
		t.Errorf("bmi = %v", bmi)
	}

	code, raw = do(t, ts, http.MethodPost, "/weight/1/fasts/", `{"weight":0}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "")
	code, raw = do(t, ts, http.MethodPost, "/weight/1/fasts/", `{"weight":70,"unit":"stone"}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "")
	code, raw = do(t, ts, http.MethodPost, "/weight/7/fasts/", `{"weight":70}`)
	expectDetail(t, code, raw, http.StatusNotFound, "User not found")

	code, raw = do(t, ts, http.MethodGet, "/weight/1/weights/", "")
	if code != http.StatusOK {
		t.Fatalf("list weights: %d %s", code, raw)
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil || len(list) != 1 {
		t.Fatalf("weights = %s (%v)", raw, err)
	}
}

func TestDeleteFast(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")

	code, raw := do(t, ts, http.MethodGet, "/fast/1/active/", "")
	if code != http.StatusOK || strings.TrimSpace(string(raw)) != "null" {
		t.Fatalf("active = %d %s", code, raw)
	}

	code, raw = do(t, ts, http.MethodPost, "/fast/1/fasts/", `{}`)
	if code != http.StatusOK {
		t.Fatalf("start fast: %d %s", code, raw)
	}
	id := int(decode(t, raw)["id"].(float64))

	code, raw = do(t, ts, http.MethodGet, "/fast/1/active/", "")
	if code != http.StatusOK || int(decode(t, raw)["id"].(float64)) != id {
		t.Fatalf("active = %d %s", code, raw)
	}

	code, raw = do(t, ts, http.MethodDelete, "/fast/1/fasts/1", "")
	expectDetail(t, code, raw, http.StatusBadRequest, "")

	if code, raw = do(t, ts, http.MethodPost, "/fast/1/end_fast/", ""); code != http.StatusOK {
		t.Fatalf("end fast: %d %s", code, raw)
	}

	code, raw = do(t, ts, http.MethodDelete, "/fast/1/fasts/1", "")
	if code != http.StatusOK || decode(t, raw)["ok"] != true {
		t.Fatalf("delete = %d %s", code, raw)
	}
	code, raw = do(t, ts, http.MethodDelete, "/fast/1/fasts/1", "")
	expectDetail(t, code, raw, http.StatusNotFound, "")

	code, raw = do(t, ts, http.MethodGet, "/fast/1/fasts/", "")
	if code != http.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("list after delete = %d %s", code, raw)
	}
}

func TestChartsDaily(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")
	if code, raw := do(t, ts, http.MethodPost, "/weight/1/fasts/", `{"weight":80}`); code != http.StatusOK {
		t.Fatalf("record weight: %d %s", code, raw)
	}

	code, raw := do(t, ts, http.MethodGet, "/charts/1/daily?days=3&unit=imperial", "")
	if code != http.StatusOK {
		t.Fatalf("charts: %d %s", code, raw)
	}
	body := decode(t, raw)
	items, _ := body["items"].([]any)
	if len(items) != 3 || body["days"] != float64(3) || body["unit"] != "imperial" {
		t.Fatalf("charts = %s", raw)
	}
	last := items[2].(map[string]any)
	if last["day"] != body["today"] {
		t.Errorf("last day %v != today %v", last["day"], body["today"])
	}
	weight, ok := last["weight"].(map[string]any)
	if !ok {
		t.Fatalf("today has no weight: %v", last)
	}
	if lb, _ := weight["value"].(float64); math.Abs(lb-176.37) > 0.01 {
		t.Errorf("weight = %v lb", lb)
	}

	code, raw = do(t, ts, http.MethodGet, "/charts/1/daily?unit=stone", "")
	expectDetail(t, code, raw, http.StatusBadRequest, "")
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if got := resp.Header.Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("generated X-Request-ID = %q", got)
	}
}

func TestEditFast(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana@example.com")

	start := time.Now().UTC().Add(-20 * time.Hour).Truncate(time.Second)
	code, raw := do(t, ts, http.MethodPost, "/fast/1/fasts/", `{"start_time":"`+start.Format("2006-01-02T15:04:05")+`"}`)
	if code != http.StatusOK {
		t.Fatalf("start fast: %d %s", code, raw)
	}
	if code, raw = do(t, ts, http.MethodPost, "/fast/1/end_fast/", ""); code != http.StatusOK {
		t.Fatalf("end fast: %d %s", code, raw)
	}
	ended := decode(t, raw)
	before, _ := ended["duration"].(float64)

	moved := start.Add(-2 * time.Hour)
	code, raw = do(t, ts, http.MethodPatch, "/fast/1/fasts/1",
		`{"start_time":"`+moved.Format("2006-01-02T15:04:05")+`","planned_duration":18}`)
	if code != http.StatusOK {
		t.Fatalf("edit fast: %d %s", code, raw)
	}
	edited := decode(t, raw)
	if edited["start_time"] != moved.Format("2006-01-02T15:04:05") || edited["planned_duration"] != float64(18) {
		t.Errorf("edited = %s", raw)
	}
	if after, _ := edited["duration"].(float64); math.Abs(after-before-2*3600) > 1e-6 {
		t.Errorf("duration %v, want %v", after, before+2*3600)
	}
	if edited["end_time"] != ended["end_time"] {
		t.Errorf("end_time changed: %v -> %v", ended["end_time"], edited["end_time"])
	}

	future := time.Now().UTC().Add(time.Hour).Format("2006-01-02T15:04:05")
	code, raw = do(t, ts, http.MethodPatch, "/fast/1/fasts/1", `{"start_time":"`+future+`"}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "You can't create future date fast.")

	code, raw = do(t, ts, http.MethodPatch, "/fast/1/fasts/1", `{"planned_duration":3000000}`)
	expectDetail(t, code, raw, http.StatusBadRequest, "Planned duration can't exceed 10000 hours.")

	code, raw = do(t, ts, http.MethodPatch, "/fast/1/fasts/42", `{}`)
	expectDetail(t, code, raw, http.StatusNotFound, "Fast not found")
}
