package engine

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Databases maps configured database names to lazily opened connection
// pools. Sessions draw their single owned connection from these pools.
type Databases struct {
	driver      string
	defaultName string
	mu          sync.Mutex
	targets     map[string]string
	open        map[string]*sql.DB
}

var (
	ErrNoDatabase        = errors.New("no connection target configured for database")
	ErrNoDefaultDatabase = errors.New("no database connection available")
)

// NewDatabases creates a registry over the configured connection targets
func NewDatabases(
	driver, defaultName string, targets map[string]string,
) *Databases {
	t := make(map[string]string, len(targets))
	for name, dsn := range targets {
		t[name] = dsn
	}
	return &Databases{
		driver:      driver,
		defaultName: defaultName,
		targets:     t,
		open:        map[string]*sql.DB{},
	}
}

// Get returns the pool for a named database, opening it on first use
func (d *Databases) Get(name string) (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if db, ok := d.open[name]; ok {
		return db, nil
	}
	dsn, ok := d.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, name)
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", name, err)
	}
	d.open[name] = db
	return db, nil
}

// Register installs a pre-opened pool under a name, replacing any target.
// Used by tests and embedded deployments.
func (d *Databases) Register(name string, db *sql.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[name] = db
}

// DefaultName resolves the database used when a statement carries no
// CONNECT directive: the configured default when registered, otherwise the
// sole available target
func (d *Databases) DefaultName() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.open[d.defaultName]; ok {
		return d.defaultName, nil
	}
	if _, ok := d.targets[d.defaultName]; ok {
		return d.defaultName, nil
	}
	for name := range d.open {
		return name, nil
	}
	for name := range d.targets {
		return name, nil
	}
	return "", ErrNoDefaultDatabase
}

// Close closes every opened pool
func (d *Databases) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for name, db := range d.open {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.open, name)
	}
	return firstErr
}
