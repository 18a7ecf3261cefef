package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/internal/config"
	"github.com/warekit/shuttle/pkg/api"
)

type (
	// Loader materializes an application's definitions into a Cache. The
	// durable schema behind it is an external collaborator; the engine
	// performs no partial or incremental load.
	Loader interface {
		LoadApplication(ctx context.Context, appID uuid.UUID) (*Cache, error)
		ActiveDevices(ctx context.Context) ([]*api.Device, error)
	}

	// Engine is the façade composing the definition cache, the process
	// executor, and application loading
	Engine struct {
		cfg       *config.Config
		loader    Loader
		databases *Databases
		exec      *Executor
		cache     atomic.Pointer[Cache]
		startTime time.Time
	}
)

// New creates an engine over the configured connection targets and loader
func New(cfg *config.Config, loader Loader) *Engine {
	e := &Engine{
		cfg:       cfg,
		loader:    loader,
		databases: NewDatabases(cfg.Driver, cfg.DefaultDatabase, cfg.Databases),
		startTime: time.Now().UTC(),
	}
	e.cache.Store(NewCache())
	e.exec = &Executor{engine: e}
	return e
}

// Cache returns the currently published definition cache
func (e *Engine) Cache() *Cache {
	return e.cache.Load()
}

// Databases returns the named connection-target registry
func (e *Engine) Databases() *Databases {
	return e.databases
}

// StartTime is when the engine instance was constructed
func (e *Engine) StartTime() time.Time {
	return e.startTime
}

// LoadApplication loads every definition of the configured application and
// publishes the new cache in one atomic switch, replacing prior contents
// wholesale
func (e *Engine) LoadApplication(ctx context.Context) error {
	appID, err := uuid.Parse(e.cfg.ApplicationID)
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w",
			e.cfg.ApplicationID, err)
	}

	cache, err := e.loader.LoadApplication(ctx, appID)
	if err != nil {
		return fmt.Errorf("load application %s: %w", appID, err)
	}
	e.cache.Store(cache)

	counts := cache.Counts()
	slog.Info("Application loaded",
		slog.String("application_id", appID.String()),
		slog.Int("modules", counts.Modules),
		slog.Int("processes", counts.Processes),
		slog.Int("database_actions", counts.DatabaseActions),
		slog.Int("fields", counts.Fields))
	return nil
}

// ActiveDevices returns the registered devices eligible for bootstrap
func (e *Engine) ActiveDevices(ctx context.Context) ([]*api.Device, error) {
	return e.loader.ActiveDevices(ctx)
}

// Execute runs a process module against a session, optionally binding named
// parameters to fields
func (e *Engine) Execute(
	ctx context.Context, processID uuid.UUID, sess *Session,
	params map[string]any,
) *Result {
	return e.exec.Execute(ctx, processID, sess, params)
}

// Resume continues a paused session with the operator's input value
func (e *Engine) Resume(
	ctx context.Context, sess *Session, input string,
) *Result {
	return e.exec.Resume(ctx, sess, input)
}

// Close releases engine-owned database pools
func (e *Engine) Close() error {
	return e.databases.Close()
}
