package engine

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// Outcome is the terminal disposition of one action invocation. Fail is
	// a normal control-flow value driving branch resolution, not an error.
	Outcome int

	// Result is produced by every action invocation. Fields carries values
	// returned by a database action's RETURNS clause.
	Result struct {
		Outcome Outcome
		Message string
		Cause   error
		Fields  map[uuid.UUID]any
	}
)

const (
	OutcomePass Outcome = iota
	OutcomeFail
)

func (o Outcome) String() string {
	if o == OutcomePass {
		return "Pass"
	}
	return "Fail"
}

// Pass creates a passing result
func Pass(format string, args ...any) *Result {
	return &Result{
		Outcome: OutcomePass,
		Message: fmt.Sprintf(format, args...),
		Fields:  map[uuid.UUID]any{},
	}
}

// Fail creates a failing result
func Fail(format string, args ...any) *Result {
	return &Result{
		Outcome: OutcomeFail,
		Message: fmt.Sprintf(format, args...),
		Fields:  map[uuid.UUID]any{},
	}
}

// FailCause creates a failing result carrying the underlying cause
func FailCause(cause error, format string, args ...any) *Result {
	res := Fail(format, args...)
	res.Cause = cause
	return res
}

// Passed reports whether the result outcome is Pass
func (r *Result) Passed() bool {
	return r.Outcome == OutcomePass
}
