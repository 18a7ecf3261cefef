package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/pkg/api"
)

type (
	// Session is one terminal's runtime state: a field-value store, a call
	// stack of frames, pause/resume metadata, and an owned database
	// connection. A Session has no internal locking; the session manager
	// serializes executions per device.
	Session struct {
		ID        uuid.UUID
		StartTime time.Time
		UserID    string
		DeviceID  string

		fields map[uuid.UUID]any
		stack  []*Frame

		paused       bool
		pausedDialog uuid.UUID
		pausedStep   int
		pausedScreen *api.Screen

		conn     *sql.Conn
		database string
	}

	// Frame is one entry on a session's call stack. Sequence tracks the
	// step currently being interpreted so callers can be continued after a
	// nested process resumes from a pause.
	Frame struct {
		ProcessID   uuid.UUID
		ProcessName string
		Sequence    int
		EnteredAt   time.Time
	}
)

// NewSession creates a runtime session for a terminal or actor
func NewSession(userID, deviceID string) *Session {
	return &Session{
		ID:        uuid.New(),
		StartTime: time.Now().UTC(),
		UserID:    userID,
		DeviceID:  deviceID,
		fields:    map[uuid.UUID]any{},
	}
}

// SetField stores a field value. A nil value is a legal stored state and
// renders as NULL/empty when consumed.
func (s *Session) SetField(fieldID uuid.UUID, value any) {
	s.fields[fieldID] = value
}

// Field returns the current value of a field, or nil when unset
func (s *Session) Field(fieldID uuid.UUID) any {
	return s.fields[fieldID]
}

// HasField reports whether a field has been written in this session
func (s *Session) HasField(fieldID uuid.UUID) bool {
	_, ok := s.fields[fieldID]
	return ok
}

// Fields returns a copy of the field store
func (s *Session) Fields() map[uuid.UUID]any {
	out := make(map[uuid.UUID]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// ClearFields removes every field value
func (s *Session) ClearFields() {
	s.fields = map[uuid.UUID]any{}
}

// PushFrame pushes a frame on process entry
func (s *Session) PushFrame(f *Frame) {
	s.stack = append(s.stack, f)
}

// PopFrame pops the top frame, or returns nil on an empty stack
func (s *Session) PopFrame() *Frame {
	if len(s.stack) == 0 {
		return nil
	}
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return f
}

// CurrentFrame returns the top of the call stack without popping
func (s *Session) CurrentFrame() *Frame {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// CallDepth is the number of nested process invocations on the stack
func (s *Session) CallDepth() int {
	return len(s.stack)
}

// Pause suspends the session awaiting terminal input. The pause marker
// fields are always set together.
func (s *Session) Pause(dialogID uuid.UUID, step int, screen *api.Screen) {
	s.paused = true
	s.pausedDialog = dialogID
	s.pausedStep = step
	s.pausedScreen = screen
}

// Resume clears the paused flag; the pause marker remains readable until
// the next Pause
func (s *Session) Resume() {
	s.paused = false
}

// IsPaused reports whether the session is awaiting input
func (s *Session) IsPaused() bool {
	return s.paused
}

// CanResume reports whether the session carries the pause metadata required
// to continue execution
func (s *Session) CanResume() bool {
	return s.paused && s.pausedDialog != uuid.Nil && s.pausedStep > 0
}

// PausedDialog is the dialog module that paused execution
func (s *Session) PausedDialog() uuid.UUID {
	return s.pausedDialog
}

// PausedStep is the step sequence at which execution paused
func (s *Session) PausedStep() int {
	return s.pausedStep
}

// PausedScreen is the screen payload awaiting the operator
func (s *Session) PausedScreen() *api.Screen {
	return s.pausedScreen
}

// Conn returns the session's owned database connection, if any
func (s *Session) Conn() *sql.Conn {
	return s.conn
}

// CurrentDatabase is the name of the currently bound database
func (s *Session) CurrentDatabase() string {
	return s.database
}

// BindConnection takes ownership of a connection against the named
// database, closing any previously owned connection first
func (s *Session) BindConnection(
	ctx context.Context, conn *sql.Conn, database string,
) error {
	if err := s.CloseConnection(ctx); err != nil {
		return err
	}
	s.conn = conn
	s.database = database
	return nil
}

// CloseConnection releases the owned connection. Safe to call when no
// connection is bound.
func (s *Session) CloseConnection(_ context.Context) error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.database = ""
	return err
}
