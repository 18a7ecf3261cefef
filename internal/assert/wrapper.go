package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warekit/shuttle/internal/config"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

// Wrapper wraps testify assertions with engine-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 100 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus engine-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// ResultPassed asserts an execution result completed with a pass outcome
func (w *Wrapper) ResultPassed(r *engine.Result) {
	w.Helper()
	w.NotNil(r)
	if r != nil {
		w.True(r.Passed(), "expected pass, got: %s", r.Message)
	}
}

// ResultFailed asserts an execution result completed with a fail outcome,
// optionally checking the message
func (w *Wrapper) ResultFailed(r *engine.Result, contains string) {
	w.Helper()
	w.NotNil(r)
	if r == nil {
		return
	}
	w.False(r.Passed(), "expected fail, got pass: %s", r.Message)
	if contains != "" {
		w.Contains(r.Message, contains)
	}
}

// SessionAwaitingInput asserts a session is paused with a renderable screen
func (w *Wrapper) SessionAwaitingInput(sess *engine.Session) {
	w.Helper()
	w.True(sess.IsPaused(), "session should be paused at a dialog")
	w.True(sess.CanResume(), "paused session should carry resume metadata")
	w.NotNil(sess.PausedScreen())
}

// ScreenPrompt asserts a screen carries a prompt with the expected label
func (w *Wrapper) ScreenPrompt(screen *api.Screen, label string) {
	w.Helper()
	w.NotNil(screen)
	if screen == nil {
		return
	}
	w.NotNil(screen.Prompt, "screen should have a prompt")
	if screen.Prompt != nil {
		w.Equal(label, screen.Prompt.Label)
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.SessionTimeout > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
