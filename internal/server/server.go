package server

import (
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/warekit/shuttle/internal/engine"
)

// Server implements the HTTP API terminals and operators interact with
type Server struct {
	engine   *engine.Engine
	sessions *engine.SessionManager
}

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine, sessions *engine.SessionManager) *Server {
	return &Server{
		engine:   eng,
		sessions: sessions,
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		devices := api.Group("/devices")
		{
			devices.POST("/connect", s.connectDevice)
			devices.GET("/list", s.listDevices)
			devices.POST("/:deviceID/input", s.deviceInput)
			devices.GET("/:deviceID/status", s.deviceStatus)
		}
	}

	return router
}
