package adapthttp

import (
	"net/http"

	"fastingapi/internal/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleStartFast(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var body struct {
		StartTime       *naiveTime `json:"start_time"`
		PlannedEndTime  *naiveTime `json:"planned_end_time"`
		PlannedDuration *float64   `json:"planned_duration"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	in := app.StartFastInput{
		PlannedEndTime:  timePtr(body.PlannedEndTime),
		PlannedDuration: body.PlannedDuration,
	}
	if body.StartTime != nil {
		in.StartTime = body.StartTime.Time
	}
	f, err := s.fasts.StartFast(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFast(*f))
}

func (s *Server) handleEndFast(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var body struct {
		EndTime *naiveTime `json:"end_time"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	f, err := s.fasts.EndFast(c.Request.Context(), userID, timePtr(body.EndTime))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFast(*f))
}

func (s *Server) handleListFasts(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	fasts, err := s.fasts.ListFasts(c.Request.Context(), userID, intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFasts(fasts))
}

func (s *Server) handleActiveFast(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	f, err := s.fasts.GetActiveFast(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if f == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, toFast(*f))
}

func (s *Server) handleEditFast(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	fastID, err := pathID(c, "fast_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var body struct {
		StartTime       *naiveTime `json:"start_time"`
		PlannedDuration *float64   `json:"planned_duration"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	f, err := s.fasts.EditFast(c.Request.Context(), userID, fastID, app.EditFastInput{
		StartTime:       timePtr(body.StartTime),
		PlannedDuration: body.PlannedDuration,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFast(*f))
}

func (s *Server) handleDeleteFast(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	fastID, err := pathID(c, "fast_id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.fasts.DeleteFast(c.Request.Context(), userID, fastID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
