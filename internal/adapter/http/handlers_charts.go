package adapthttp

import (
	"net/http"

	"fastingapi/internal/domain"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleChartsDaily(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	unit, err := domain.ParseUnit(c.Query("unit"))
	if err != nil {
		writeError(c, err)
		return
	}

	points, err := s.charts.GetDaily(c.Request.Context(), userID, intQuery(c, "days", 30), string(unit))
	if err != nil {
		writeError(c, err)
		return
	}

	today := ""
	if n := len(points); n > 0 {
		today = points[n-1].Day
	}
	c.JSON(http.StatusOK, gin.H{
		"days":  len(points),
		"unit":  unit,
		"today": today,
		"items": points,
	})
}
