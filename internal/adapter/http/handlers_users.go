package adapthttp

import (
	"net/http"

	"fastingapi/internal/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateUser(c *gin.Context) {
	var body struct {
		Email      string   `json:"email"`
		Password   string   `json:"password"`
		Weight     *float64 `json:"weight"`
		Height     *float64 `json:"height"`
		GoalWeight *float64 `json:"goal_weight"`
		Unit       string   `json:"unit"`
	}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err)
		return
	}

	u, err := s.users.CreateUser(c.Request.Context(), app.CreateUserInput{
		Email:      body.Email,
		Password:   body.Password,
		Weight:     body.Weight,
		Height:     body.Height,
		GoalWeight: body.GoalWeight,
		Unit:       body.Unit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(*u))
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context(), intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUsers(users))
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := s.users.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(p))
}
