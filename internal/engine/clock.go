package engine

import "time"

// Clock provides the current time for session activity tracking and idle
// expiry. Injected so tests can drive expiry with a fake clock.
type Clock func() time.Time

// SystemClock is the wall-clock default
func SystemClock() time.Time {
	return time.Now().UTC()
}
