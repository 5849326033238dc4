package adapthttp

import (
	"net/http"

	"fastingapi/internal/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRecordWeight(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var body struct {
		Weight     float64    `json:"weight"`
		WeightTime *naiveTime `json:"weight_time"`
		Unit       string     `json:"unit"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	entry, err := s.weights.RecordWeight(c.Request.Context(), userID, app.RecordWeightInput{
		Weight:     body.Weight,
		WeightTime: timePtr(body.WeightTime),
		Unit:       body.Unit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWeight(*entry))
}

func (s *Server) handleListWeights(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	items, err := s.weights.ListWeights(c.Request.Context(), userID, intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWeights(items))
}
