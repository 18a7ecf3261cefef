package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

// ErrMissingDeviceID is returned when the connect operation lacks the
// deviceId query parameter
var ErrMissingDeviceID = errors.New("deviceId query parameter is required")

func (s *Server) connectDevice(c *gin.Context) {
	deviceID := c.Query("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  ErrMissingDeviceID.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	resp, err := s.sessions.Connect(
		c.Request.Context(), deviceID, c.Query("userId"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			Status: status,
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deviceInput(c *gin.Context) {
	deviceID := c.Param("deviceID")

	var req api.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid input payload: %v", err),
			Status: http.StatusBadRequest,
		})
		return
	}

	resp, err := s.sessions.Input(c.Request.Context(), deviceID, req.InputValue)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			Status: status,
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deviceStatus(c *gin.Context) {
	deviceID := c.Param("deviceID")

	resp, err := s.sessions.Status(deviceID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			Status: status,
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listDevices(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessions.List())
}

// statusFor maps session-manager errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDeviceInactive),
		errors.Is(err, engine.ErrNotAwaitingInput):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
