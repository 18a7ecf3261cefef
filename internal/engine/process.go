package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/pkg/api"
)

// Executor walks a process module's steps in sequence order, dispatching
// each step to the matching action executor and applying pass/fail
// branching. It mutates session state freely and relies on the caller to
// serialize executions per session.
type Executor struct {
	engine *Engine
}

// NoSuchStep is the branch-resolution sentinel returned when a label names
// no step in the process; it terminates execution with the last result.
const NoSuchStep = -1

// Execute runs a process module inside a session. A new frame is pushed for
// the duration of the call and popped on every exit path except a pause,
// where the frame must survive until the matching resume. The session's
// owned connection is released when the stack empties.
func (x *Executor) Execute(
	ctx context.Context, processID uuid.UUID, sess *Session,
	params map[string]any,
) *Result {
	cfg := x.engine.cfg
	if sess.CallDepth() >= cfg.MaxCallDepth {
		return Fail("max call depth (%d) exceeded", cfg.MaxCallDepth)
	}

	cache := x.engine.Cache()
	proc := cache.Process(processID)
	if proc == nil {
		return Fail("process module %s not found in cache", processID)
	}
	mod := cache.Module(processID)
	if mod == nil {
		return Fail("module %s not found in cache", processID)
	}

	sess.PushFrame(&Frame{
		ProcessID:   processID,
		ProcessName: mod.Name,
		Sequence:    1,
		EnteredAt:   time.Now().UTC(),
	})
	defer func() {
		if sess.IsPaused() {
			return
		}
		sess.PopFrame()
		if sess.CallDepth() == 0 {
			_ = sess.CloseConnection(ctx)
		}
	}()

	for name, value := range params {
		field := cache.FieldByName(name)
		if field == nil {
			continue
		}
		sess.SetField(field.ID, convertToFieldType(value, field.Type))
	}

	return x.runSteps(ctx, proc, sess, 1)
}

// Resume continues a paused session: the input value is delivered to the
// dialog that paused execution, interpretation restarts at the step after
// the pause inside the top frame, and completed frames are unwound into
// their callers using each frame's recorded sequence.
func (x *Executor) Resume(
	ctx context.Context, sess *Session, input string,
) *Result {
	if !sess.IsPaused() {
		return Fail("session is not paused")
	}
	if !sess.CanResume() {
		return Fail("session cannot be resumed: missing pause context")
	}

	cache := x.engine.Cache()
	dialog := cache.Dialog(sess.PausedDialog())
	if dialog == nil {
		return Fail("dialog action %s not found", sess.PausedDialog())
	}

	if res := x.submitInput(dialog, sess, input); !res.Passed() {
		return res
	}

	next := sess.PausedStep() + 1
	for {
		frame := sess.CurrentFrame()
		if frame == nil {
			return Fail("no execution frame available")
		}
		proc := cache.Process(frame.ProcessID)
		if proc == nil {
			return Fail("process module %s not found in cache",
				frame.ProcessID)
		}

		res := x.runSteps(ctx, proc, sess, next)

		for {
			if sess.IsPaused() {
				return res
			}
			sess.PopFrame()
			if sess.CallDepth() == 0 {
				_ = sess.CloseConnection(ctx)
				return res
			}

			caller := sess.CurrentFrame()
			callerProc := cache.Process(caller.ProcessID)
			if callerProc == nil {
				return Fail("process module %s not found in cache",
					caller.ProcessID)
			}
			steps := sortedSteps(callerProc)
			step := stepAt(steps, caller.Sequence)
			if step == nil {
				return Fail("step with sequence %d not found",
					caller.Sequence)
			}

			label := step.FailLabel
			if res.Passed() {
				label = step.PassLabel
			}
			next = resolveNext(steps, caller.Sequence, label)
			if next != NoSuchStep {
				break
			}
			// caller completes with the nested result; keep unwinding
		}
	}
}

// runSteps interprets steps starting at a sequence number until a terminal
// step, a pause, or the no-such-step sentinel. The loop is bounded to guard
// against definitions whose label graph cycles without reaching a Return.
func (x *Executor) runSteps(
	ctx context.Context, proc *api.ProcessModule, sess *Session, from int,
) *Result {
	steps := sortedSteps(proc)
	frame := sess.CurrentFrame()
	current := from

	for i := 0; i < x.engine.cfg.MaxIterations; i++ {
		step := stepAt(steps, current)
		if step == nil {
			return Fail("step with sequence %d not found", current)
		}
		if step.Commented {
			current++
			continue
		}
		if frame != nil {
			frame.Sequence = current
		}

		switch step.Action {
		case api.ActionReturnPass:
			return Pass("process completed")
		case api.ActionReturnFail:
			return Fail("process failed")
		}

		res := x.runStep(ctx, step, sess, current)
		if sess.IsPaused() {
			return res
		}

		label := step.FailLabel
		if res.Passed() {
			label = step.PassLabel
		}
		current = resolveNext(steps, current, label)
		if current == NoSuchStep {
			return res
		}
	}

	return Fail("maximum iteration limit (%d) reached",
		x.engine.cfg.MaxIterations)
}

// runStep dispatches one step to its action executor
func (x *Executor) runStep(
	ctx context.Context, step *api.ProcessStep, sess *Session, seq int,
) *Result {
	cache := x.engine.Cache()

	switch step.Action {
	case api.ActionCall:
		if step.ActionID == uuid.Nil {
			return Fail("call step missing action id")
		}
		return x.Execute(ctx, step.ActionID, sess, nil)

	case api.ActionCompare:
		action := cache.Compare(step.ActionID)
		if action == nil {
			return Fail("compare action %s not found in cache", step.ActionID)
		}
		return x.compare(action, sess)

	case api.ActionCalculate:
		action := cache.Calculate(step.ActionID)
		if action == nil {
			return Fail("calculate action %s not found in cache",
				step.ActionID)
		}
		return x.calculate(action, sess)

	case api.ActionDatabaseExecute:
		action := cache.Database(step.ActionID)
		if action == nil {
			return Fail("database action %s not found in cache",
				step.ActionID)
		}
		return x.database(ctx, action, sess)

	case api.ActionDialog:
		action := cache.Dialog(step.ActionID)
		if action == nil {
			return Fail("dialog action %s not found in cache", step.ActionID)
		}
		return x.presentDialog(action, sess, seq)

	default:
		return Fail("unknown action type: %s", step.Action)
	}
}

// resolveNext maps a branch label to the next sequence number: empty or
// NEXT advance, PREV steps back, any other label matches a step's label
// name case-insensitively or yields NoSuchStep
func resolveNext(steps []*api.ProcessStep, current int, label string) int {
	if label == "" {
		return current + 1
	}
	switch strings.ToUpper(label) {
	case "NEXT":
		return current + 1
	case "PREV":
		return current - 1
	}
	for _, s := range steps {
		if s.Label != "" && strings.EqualFold(s.Label, label) {
			return s.Sequence
		}
	}
	return NoSuchStep
}

func sortedSteps(proc *api.ProcessModule) []*api.ProcessStep {
	steps := make([]*api.ProcessStep, len(proc.Steps))
	copy(steps, proc.Steps)
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Sequence < steps[j].Sequence
	})
	return steps
}

func stepAt(steps []*api.ProcessStep, sequence int) *api.ProcessStep {
	for _, s := range steps {
		if s.Sequence == sequence {
			return s
		}
	}
	return nil
}
