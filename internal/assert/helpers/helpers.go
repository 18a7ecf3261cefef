// Package helpers provides fixture builders and a ready-made engine
// environment for tests
package helpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/internal/config"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

type (
	// StaticLoader serves a prebuilt cache and device list in place of the
	// database-backed loader
	StaticLoader struct {
		Cache   *engine.Cache
		Devices []*api.Device
	}

	// Env is a fully wired engine over a static definition cache
	Env struct {
		Cfg      *config.Config
		Cache    *engine.Cache
		Loader   *StaticLoader
		Engine   *engine.Engine
		Sessions *engine.SessionManager
		Clock    *FakeClock
	}

	// FakeClock is a manually advanced clock for lifecycle tests
	FakeClock struct {
		mu  sync.Mutex
		now time.Time
	}
)

// TestApplicationID is the application id every test environment loads
const TestApplicationID = "11111111-1111-1111-1111-111111111111"

func (l *StaticLoader) LoadApplication(
	_ context.Context, _ uuid.UUID,
) (*engine.Cache, error) {
	return l.Cache, nil
}

func (l *StaticLoader) ActiveDevices(
	_ context.Context,
) ([]*api.Device, error) {
	return l.Devices, nil
}

// NewFakeClock starts a fake clock at a fixed instant
func NewFakeClock() *FakeClock {
	return &FakeClock{
		now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

// Now is the engine.Clock function
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestConfig returns a validated configuration for tests
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.ApplicationID = TestApplicationID
	return cfg
}

// WithEnv builds an engine over an empty cache, hands it to the test body,
// and releases engine resources afterward. Populate env.Cache before
// executing processes; the cache is shared by reference.
func WithEnv(t *testing.T, fn func(*Env)) {
	t.Helper()

	cfg := NewTestConfig()
	cache := engine.NewCache()
	loader := &StaticLoader{Cache: cache}
	eng := engine.New(cfg, loader)
	if err := eng.LoadApplication(context.Background()); err != nil {
		t.Fatalf("load application: %v", err)
	}

	clock := NewFakeClock()
	env := &Env{
		Cfg:      cfg,
		Cache:    cache,
		Loader:   loader,
		Engine:   eng,
		Sessions: engine.NewSessionManager(eng, cfg, clock.Now),
		Clock:    clock,
	}
	defer func() { _ = eng.Close() }()

	fn(env)
}

// NewModule registers a module envelope and returns its id
func NewModule(
	cache *engine.Cache, kind api.ModuleKind, name string,
) uuid.UUID {
	id := uuid.New()
	cache.AddModule(&api.Module{
		ID:   id,
		Kind: kind,
		Name: name,
	})
	return id
}

// AddProcess registers a named process module with the given steps
func AddProcess(
	cache *engine.Cache, name string, steps ...*api.ProcessStep,
) uuid.UUID {
	id := NewModule(cache, api.ModuleProcess, name)
	cache.AddProcess(&api.ProcessModule{ID: id, Steps: steps})
	return id
}

// Step builds a process step
func Step(
	seq int, action api.ActionKind, actionID uuid.UUID,
	passLabel, failLabel string,
) *api.ProcessStep {
	return &api.ProcessStep{
		ID:        uuid.New(),
		Sequence:  seq,
		Action:    action,
		ActionID:  actionID,
		PassLabel: passLabel,
		FailLabel: failLabel,
	}
}

// LabeledStep builds a process step carrying a branch-target label
func LabeledStep(
	seq int, label string, action api.ActionKind, actionID uuid.UUID,
	passLabel, failLabel string,
) *api.ProcessStep {
	s := Step(seq, action, actionID, passLabel, failLabel)
	s.Label = label
	return s
}

// Const builds a constant operand
func Const(value string) api.Operand {
	return api.Operand{Constant: true, Value: value}
}

// FieldRef builds a field-reference operand
func FieldRef(id uuid.UUID) api.Operand {
	return api.Operand{FieldID: id}
}

// AddCompare registers a compare action
func AddCompare(
	cache *engine.Cache, op api.CompareOp, in1, in2 api.Operand,
) uuid.UUID {
	id := NewModule(cache, api.ModuleCompare, "compare")
	cache.AddCompare(&api.CompareAction{
		ID:       id,
		Operator: op,
		Input1:   in1,
		Input2:   in2,
	})
	return id
}

// AddCalculate registers a calculate action with the given details
func AddCalculate(
	cache *engine.Cache, details ...*api.CalculateDetail,
) uuid.UUID {
	id := NewModule(cache, api.ModuleCalculate, "calculate")
	cache.AddCalculate(&api.CalculateAction{ID: id, Details: details})
	return id
}

// Calc builds one calculate detail
func Calc(
	seq int, op api.CalculateOp, in1, in2 api.Operand, result uuid.UUID,
) *api.CalculateDetail {
	return &api.CalculateDetail{
		ID:          uuid.New(),
		Sequence:    seq,
		Operator:    op,
		Input1:      in1,
		Input2:      in2,
		ResultField: result,
	}
}

// AddField registers a named, typed field module
func AddField(
	cache *engine.Cache, name string, fieldType api.FieldType,
) uuid.UUID {
	id := NewModule(cache, api.ModuleField, name)
	cache.AddField(&api.FieldModule{ID: id, Type: fieldType})
	return id
}

// AddDatabase registers a database action holding a statement template
func AddDatabase(cache *engine.Cache, statement string) uuid.UUID {
	id := NewModule(cache, api.ModuleDatabase, "database")
	cache.AddDatabase(&api.DatabaseAction{ID: id, Statement: statement})
	return id
}

// AddScreenFormat registers a screen format with the given elements
func AddScreenFormat(
	cache *engine.Cache, details ...*api.ScreenFormatDetail,
) uuid.UUID {
	id := NewModule(cache, api.ModuleScreenFormat, "screen")
	cache.AddScreenFormat(&api.ScreenFormat{ID: id, Details: details})
	return id
}

// Element builds one screen format element
func Element(
	seq, row int, usage api.DataUsage, kind api.DataKind,
	dataID uuid.UUID, format string,
) *api.ScreenFormatDetail {
	return &api.ScreenFormatDetail{
		ID:       uuid.New(),
		Sequence: seq,
		Row:      row,
		Usage:    usage,
		Kind:     kind,
		DataID:   dataID,
		Format:   format,
	}
}

// AddDialog registers a dialog action bound to a screen format
func AddDialog(cache *engine.Cache, screenFormatID uuid.UUID) uuid.UUID {
	id := NewModule(cache, api.ModuleDialog, "dialog")
	cache.AddDialog(&api.DialogAction{
		ID: id,
		Details: []*api.DialogDetail{{
			ID:             uuid.New(),
			ScreenFormatID: screenFormatID,
		}},
	})
	return id
}

// Device builds an active device bound to a root process
func Device(id string, rootProcessID uuid.UUID) *api.Device {
	return &api.Device{
		ID:            id,
		Name:          id,
		Type:          "HANDHELD",
		RootProcessID: rootProcessID,
		Active:        true,
	}
}
