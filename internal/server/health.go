package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warekit/shuttle/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	counts := s.engine.Cache().Counts()
	total, byStatus := s.sessions.Statistics()

	c.JSON(http.StatusOK, api.HealthResponse{
		Status:          "healthy",
		StartTime:       s.engine.StartTime(),
		Uptime:          time.Since(s.engine.StartTime()).Round(time.Second).String(),
		ActiveDevices:   total,
		TotalSessions:   total,
		LoadedModules:   counts.Modules,
		ProcessModules:  counts.Processes,
		DatabaseActions: counts.DatabaseActions,
		FieldModules:    counts.Fields,
		DevicesByStatus: byStatus,
	})
}
