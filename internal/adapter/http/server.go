package adapthttp

import (
	"context"
	"net/http"
	"time"

	"fastingapi/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	users   *app.UserService
	fasts   *app.FastService
	weights *app.WeightService
	charts  *app.ChartsService

	corsOrigins []string
	ping        func(ctx context.Context) error
}

// Options configure the optional parts of a Server.
type Options struct {
	// CORSOrigins lists allowed origins; empty or "*" allows all.
	CORSOrigins []string
	// Ping checks the store for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// New creates a Server wired to the given application services.
func New(us *app.UserService, fs *app.FastService, ws *app.WeightService, cs *app.ChartsService, opts Options) *Server {
	return &Server{
		users:       us,
		fasts:       fs,
		weights:     ws,
		charts:      cs,
		corsOrigins: opts.CORSOrigins,
		ping:        opts.Ping,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestIDMiddleware(), s.loggingMiddleware(), cors.New(s.corsConfig()))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)

	r.POST("/users/", s.handleCreateUser)
	r.GET("/users/", s.handleListUsers)
	r.GET("/users/:id", s.handleGetUser)

	r.POST("/fast/:user_id/fasts/", s.handleStartFast)
	r.POST("/fast/:user_id/end_fast/", s.handleEndFast)
	r.GET("/fast/:user_id/fasts/", s.handleListFasts)
	r.GET("/fast/:user_id/active/", s.handleActiveFast)
	r.PATCH("/fast/:user_id/fasts/:fast_id", s.handleEditFast)
	r.DELETE("/fast/:user_id/fasts/:fast_id", s.handleDeleteFast)

	r.POST("/weight/:user_id/fasts/", s.handleRecordWeight)
	r.GET("/weight/:user_id/weights/", s.handleListWeights)

	r.GET("/charts/:user_id/daily", s.handleChartsDaily)

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(s.corsOrigins) == 0 || (len(s.corsOrigins) == 1 && s.corsOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.corsOrigins
	}
	return cfg
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "what"})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "detail": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
