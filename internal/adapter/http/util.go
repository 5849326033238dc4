package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"fastingapi/internal/domain"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v id=%s", c.Request.Method, c.Request.URL.Path, err, c.GetString(requestIDKey))
		c.JSON(status, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// bindJSON decodes the request body into dst. An empty body leaves dst
// unchanged.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.Validationf("invalid json: %v", err)
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, domain.Validationf("%s must be an integer", name)
	}
	return id, nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// naiveLayout renders timestamps as naive UTC with microseconds.
const naiveLayout = "2006-01-02T15:04:05.999999"

var naiveInputLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// naiveTime is a UTC timestamp without an offset on the wire.
type naiveTime struct {
	time.Time
}

func (t naiveTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(naiveLayout))
}

func (t *naiveTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("timestamp must be a string")
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func naivePtr(t *time.Time) *naiveTime {
	if t == nil {
		return nil
	}
	return &naiveTime{*t}
}

func timePtr(t *naiveTime) *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}
