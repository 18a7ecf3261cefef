// Package shuttle is a data-driven process engine for warehouse terminals.
// Business processes are stored as versioned modules (steps, comparisons,
// calculations, database statements, and dialog screens) and interpreted
// against per-terminal execution sessions.
package shuttle

const (
	// Name is the service name reported in logs and health responses
	Name = "shuttle-engine"

	// Version is the engine release version
	Version = "1.0.0"
)
