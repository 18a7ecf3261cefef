package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warekit/shuttle/internal/config"
	"github.com/warekit/shuttle/pkg/api"
	"github.com/warekit/shuttle/pkg/log"
)

type (
	// SessionStatus is the lifecycle state of a device's session
	SessionStatus string

	// DeviceSession pairs a registered device with its runtime session.
	// The embedded mutex serializes executions per device; the engine's
	// Session type itself carries no locking.
	DeviceSession struct {
		mu sync.Mutex

		Device       *api.Device
		Session      *Session
		Status       SessionStatus
		ConnectedAt  time.Time
		LastActivity time.Time
	}

	// SessionManager owns the device table. All device-facing operations
	// route through it so that concurrent requests against the same device
	// cannot interleave interpreter runs.
	SessionManager struct {
		engine  *Engine
		clock   Clock
		timeout time.Duration

		mu      sync.RWMutex
		devices map[string]*DeviceSession
	}
)

const (
	StatusConnected    SessionStatus = "CONNECTED"
	StatusActive       SessionStatus = "ACTIVE"
	StatusIdle         SessionStatus = "IDLE"
	StatusDisconnected SessionStatus = "DISCONNECTED"
)

var (
	// ErrDeviceNotFound indicates the device id is not registered
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceInactive indicates the device is registered but disabled
	ErrDeviceInactive = errors.New("device is not active")

	// ErrNotAwaitingInput indicates input arrived for a device whose
	// session is not paused at a dialog
	ErrNotAwaitingInput = errors.New("device is not awaiting input")
)

// NewSessionManager creates a manager over the engine's device table
func NewSessionManager(
	e *Engine, cfg *config.Config, clock Clock,
) *SessionManager {
	if clock == nil {
		clock = SystemClock
	}
	return &SessionManager{
		engine:  e,
		clock:   clock,
		timeout: cfg.SessionTimeout,
		devices: map[string]*DeviceSession{},
	}
}

// InitializeDevices registers a session slot for every active device known
// to the loader and starts each device's root process so a terminal can poll
// its first screen before any operator connects. Called once at startup,
// after the application cache loads.
func (m *SessionManager) InitializeDevices(ctx context.Context) error {
	devices, err := m.engine.ActiveDevices(ctx)
	if err != nil {
		return fmt.Errorf("initialize devices: %w", err)
	}

	registered := make([]*DeviceSession, 0, len(devices))
	m.mu.Lock()
	for _, d := range devices {
		if !d.Active {
			continue
		}
		now := m.clock()
		ds := &DeviceSession{
			Device:       d,
			Session:      NewSession("", d.ID),
			Status:       StatusConnected,
			ConnectedAt:  now,
			LastActivity: now,
		}
		m.devices[d.ID] = ds
		registered = append(registered, ds)
	}
	m.mu.Unlock()

	for _, ds := range registered {
		m.bootstrap(ctx, ds)
	}
	slog.Info("Devices initialized", slog.Int("count", len(registered)))
	return nil
}

// bootstrap runs a device's root process without marking the device in use.
// The session typically ends up paused at the first dialog; the device stays
// CONNECTED until an operator interacts with it.
func (m *SessionManager) bootstrap(ctx context.Context, ds *DeviceSession) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	res := m.engine.Execute(ctx, ds.Device.RootProcessID, ds.Session, nil)
	ds.LastActivity = m.clock()

	if !res.Passed() && !ds.Session.IsPaused() {
		slog.Warn("Device root process failed",
			log.DeviceID(ds.Device.ID),
			log.ProcessID(ds.Device.RootProcessID),
			slog.String("message", res.Message))
		return
	}
	slog.Info("Device root process started",
		log.DeviceID(ds.Device.ID),
		log.ProcessID(ds.Device.RootProcessID),
		log.Status(string(ds.Status)))
}

// RegisterDevice adds or replaces a device's session slot
func (m *SessionManager) RegisterDevice(d *api.Device) *DeviceSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	ds := &DeviceSession{
		Device:       d,
		Session:      NewSession("", d.ID),
		Status:       StatusConnected,
		ConnectedAt:  now,
		LastActivity: now,
	}
	m.devices[d.ID] = ds
	return ds
}

func (m *SessionManager) device(deviceID string) (*DeviceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.devices[deviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	return ds, nil
}

// Connect starts, or restarts, a device's root process on behalf of an
// operator. Any prior session state is discarded and a fresh session begins
// before the root process runs. The response carries the paused screen when
// the process reaches a dialog, or the terminal result otherwise.
func (m *SessionManager) Connect(
	ctx context.Context, deviceID, userID string,
) (*api.ScreenResponse, error) {
	ds, err := m.device(deviceID)
	if err != nil {
		return nil, err
	}
	if !ds.Device.Active {
		return nil, fmt.Errorf("%w: %s", ErrDeviceInactive, deviceID)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	_ = ds.Session.CloseConnection(ctx)
	ds.Session = NewSession(userID, deviceID)
	ds.Status = StatusActive
	ds.ConnectedAt = m.clock()
	ds.LastActivity = ds.ConnectedAt

	slog.Info("Device connected",
		log.DeviceID(deviceID),
		log.SessionID(ds.Session.ID),
		log.ProcessID(ds.Device.RootProcessID))

	res := m.engine.Execute(ctx, ds.Device.RootProcessID, ds.Session, nil)
	return m.finishExecution(ds, res), nil
}

// Input delivers an operator's input value to a paused device session and
// continues interpretation until the next pause or completion
func (m *SessionManager) Input(
	ctx context.Context, deviceID, value string,
) (*api.ScreenResponse, error) {
	ds, err := m.device(deviceID)
	if err != nil {
		return nil, err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Session.IsPaused() {
		return nil, fmt.Errorf("%w: %s", ErrNotAwaitingInput, deviceID)
	}
	ds.LastActivity = m.clock()

	res := m.engine.Resume(ctx, ds.Session, value)
	return m.finishExecution(ds, res), nil
}

// finishExecution translates an interpreter result into the wire response
// and advances the device's lifecycle state. A pause leaves the device
// ACTIVE with the pending screen; completion moves it to IDLE with the
// screen cleared, the outcome message travelling in the response body.
func (m *SessionManager) finishExecution(
	ds *DeviceSession, res *Result,
) *api.ScreenResponse {
	ds.LastActivity = m.clock()

	if ds.Session.IsPaused() {
		ds.Status = StatusActive
		return &api.ScreenResponse{
			SessionID: ds.Session.ID.String(),
			Screen:    ds.Session.PausedScreen(),
			Status:    "AWAITING_INPUT",
		}
	}

	ds.Status = StatusIdle
	status := "COMPLETED"
	if !res.Passed() {
		status = "FAILED"
	}
	return &api.ScreenResponse{
		SessionID: ds.Session.ID.String(),
		Status:    status,
		Message:   res.Message,
	}
}

// Status reports one device's current session state
func (m *SessionManager) Status(deviceID string) (*api.StatusResponse, error) {
	ds, err := m.device(deviceID)
	if err != nil {
		return nil, err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	resp := &api.StatusResponse{
		DeviceID:      deviceID,
		Status:        string(ds.Status),
		CurrentUserID: ds.Session.UserID,
		ConnectedAt:   ds.ConnectedAt,
		LastActivity:  ds.LastActivity,
		IsPaused:      ds.Session.IsPaused(),
	}
	if ds.Session.IsPaused() {
		resp.CurrentStep = ds.Session.PausedStep()
		resp.Screen = ds.Session.PausedScreen()
	}
	return resp, nil
}

// snapshot copies the device table under the table lock so per-device
// state can then be read under each device's own lock
func (m *SessionManager) snapshot() []*DeviceSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*DeviceSession, 0, len(m.devices))
	for _, ds := range m.devices {
		out = append(out, ds)
	}
	return out
}

// List summarizes every registered device session
func (m *SessionManager) List() *api.DeviceListResponse {
	devices := m.snapshot()

	out := &api.DeviceListResponse{
		Count:   len(devices),
		Devices: make([]*api.DeviceSummary, 0, len(devices)),
	}
	for _, ds := range devices {
		ds.mu.Lock()
		out.Devices = append(out.Devices, &api.DeviceSummary{
			DeviceID:      ds.Device.ID,
			SessionID:     ds.Session.ID.String(),
			Status:        string(ds.Status),
			CurrentUserID: ds.Session.UserID,
			ConnectedAt:   ds.ConnectedAt,
			LastActivity:  ds.LastActivity,
		})
		ds.mu.Unlock()
	}
	return out
}

// Statistics aggregates session counts for the health surface
func (m *SessionManager) Statistics() (total int, byStatus map[string]int) {
	devices := m.snapshot()

	byStatus = map[string]int{}
	for _, ds := range devices {
		ds.mu.Lock()
		byStatus[string(ds.Status)]++
		ds.mu.Unlock()
	}
	return len(devices), byStatus
}

// StartJanitor runs the expiry sweep until the context is cancelled. Each
// pass disconnects sessions whose last activity exceeds the configured
// timeout, releasing their database connections.
func (m *SessionManager) StartJanitor(
	ctx context.Context, interval time.Duration,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(ctx)
			}
		}
	}()
}

// Sweep disconnects every session idle past the timeout. Exposed for tests.
func (m *SessionManager) Sweep(ctx context.Context) {
	now := m.clock()
	for _, ds := range m.snapshot() {
		ds.mu.Lock()
		if ds.Status != StatusDisconnected &&
			now.Sub(ds.LastActivity) > m.timeout {
			m.disconnect(ctx, ds)
		}
		ds.mu.Unlock()
	}
}

// disconnect releases session resources and resets runtime state. Caller
// holds the device lock.
func (m *SessionManager) disconnect(ctx context.Context, ds *DeviceSession) {
	_ = ds.Session.CloseConnection(ctx)
	ds.Session.ClearFields()
	ds.Session.UserID = ""
	ds.Status = StatusDisconnected

	slog.Info("Session expired",
		log.DeviceID(ds.Device.ID),
		log.SessionID(ds.Session.ID))
}

// Close releases every session's database connection
func (m *SessionManager) Close(ctx context.Context) {
	for _, ds := range m.snapshot() {
		ds.mu.Lock()
		_ = ds.Session.CloseConnection(ctx)
		ds.mu.Unlock()
	}
}
