package api

import "time"

type (
	// InputRequest carries the operator's input for a paused device
	InputRequest struct {
		InputValue string `json:"inputValue" binding:"required"`
	}

	// ScreenResponse is returned by connect and input operations
	ScreenResponse struct {
		SessionID string  `json:"sessionId"`
		Screen    *Screen `json:"screen,omitempty"`
		Status    string  `json:"status"`
		Message   string  `json:"message,omitempty"`
	}

	// StatusResponse reports a device's current session state
	StatusResponse struct {
		DeviceID      string    `json:"deviceId"`
		Status        string    `json:"status"`
		CurrentUserID string    `json:"currentUserId,omitempty"`
		ConnectedAt   time.Time `json:"connectedAt"`
		LastActivity  time.Time `json:"lastActivity"`
		CurrentStep   int       `json:"currentStep"`
		Screen        *Screen   `json:"screen,omitempty"`
		IsPaused      bool      `json:"isPaused"`
	}

	// DeviceSummary is one entry in the device list
	DeviceSummary struct {
		DeviceID      string    `json:"deviceId"`
		SessionID     string    `json:"sessionId"`
		Status        string    `json:"status"`
		CurrentUserID string    `json:"currentUserId,omitempty"`
		ConnectedAt   time.Time `json:"connectedAt"`
		LastActivity  time.Time `json:"lastActivity"`
	}

	// DeviceListResponse lists all registered device sessions
	DeviceListResponse struct {
		Count   int              `json:"count"`
		Devices []*DeviceSummary `json:"devices"`
	}

	// HealthResponse reports engine uptime and loaded module counts
	HealthResponse struct {
		Status          string         `json:"status"`
		StartTime       time.Time      `json:"startTime"`
		Uptime          string         `json:"uptime"`
		ActiveDevices   int            `json:"activeDevices"`
		TotalSessions   int            `json:"totalSessions"`
		LoadedModules   int            `json:"loadedModules"`
		ProcessModules  int            `json:"processModules"`
		DatabaseActions int            `json:"databaseActions"`
		FieldModules    int            `json:"fieldModules"`
		DevicesByStatus map[string]int `json:"devicesByStatus"`
	}

	// ErrorResponse is the uniform error payload
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
)
