// Package engine implements the process interpreter: the definition cache,
// per-session runtime state, the action executors, and the session manager
// that multiplexes terminals over one shared engine.
package engine
