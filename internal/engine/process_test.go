package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/internal/assert"
	"github.com/warekit/shuttle/internal/assert/helpers"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

// terminated builds a process whose first step branches to a ReturnPass or
// ReturnFail terminal depending on the action's outcome
func terminated(
	cache *engine.Cache, action api.ActionKind, actionID uuid.UUID,
) uuid.UUID {
	return helpers.AddProcess(cache, "under-test",
		helpers.Step(1, action, actionID, "DONE", "ABORT"),
		helpers.LabeledStep(2, "DONE", api.ActionReturnPass, uuid.Nil, "", ""),
		helpers.LabeledStep(3, "ABORT", api.ActionReturnFail, uuid.Nil, "", ""),
	)
}

// faulted builds a process whose fail branch targets a label no step
// carries, so a failing action terminates the run with its own result
// rather than a ReturnFail step's
func faulted(
	cache *engine.Cache, action api.ActionKind, actionID uuid.UUID,
) uuid.UUID {
	return helpers.AddProcess(cache, "under-test-fault",
		helpers.Step(1, action, actionID, "DONE", "NOWHERE"),
		helpers.LabeledStep(2, "DONE", api.ActionReturnPass, uuid.Nil, "", ""),
	)
}

func TestBranchResolution(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		passing := helpers.AddCompare(env.Cache, api.CompareEquals,
			helpers.Const("A"), helpers.Const("A"))
		failing := helpers.AddCompare(env.Cache, api.CompareEquals,
			helpers.Const("A"), helpers.Const("B"))

		t.Run("empty_label_advances", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "linear",
				helpers.Step(1, api.ActionCompare, passing, "", ""),
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("next_label_advances", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "next",
				helpers.Step(1, api.ActionCompare, passing, "NEXT", ""),
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("fail_branches_to_label", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "branch",
				helpers.Step(1, api.ActionCompare, failing, "", "RETRY"),
				helpers.Step(2, api.ActionReturnFail, uuid.Nil, "", ""),
				helpers.LabeledStep(3, "RETRY", api.ActionReturnPass,
					uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("labels_match_case_insensitively", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "fold",
				helpers.Step(1, api.ActionCompare, passing, "done", ""),
				helpers.Step(2, api.ActionReturnFail, uuid.Nil, "", ""),
				helpers.LabeledStep(3, "DONE", api.ActionReturnPass,
					uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("prev_steps_backward", func(t *testing.T) {
			// 1 jumps forward to HOP, which steps back into 2
			proc := helpers.AddProcess(env.Cache, "prev",
				helpers.Step(1, api.ActionCompare, passing, "HOP", ""),
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
				helpers.LabeledStep(3, "HOP", api.ActionCompare, passing,
					"PREV", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("unknown_label_terminates_with_last_result", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "dangling",
				helpers.Step(1, api.ActionCompare, failing, "", "NOWHERE"),
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Execute(ctx, proc, sess, nil),
				"comparison failed")
		})

		t.Run("commented_step_skipped", func(t *testing.T) {
			commented := helpers.Step(1, api.ActionCompare, failing, "", "")
			commented.Commented = true
			proc := helpers.AddProcess(env.Cache, "commented",
				commented,
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})

		t.Run("missing_step_fails", func(t *testing.T) {
			proc := helpers.AddProcess(env.Cache, "gap",
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Execute(ctx, proc, sess, nil),
				"step with sequence 1 not found")
		})
	})
}

func TestExecutionGuards(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		t.Run("call_depth_bounded", func(t *testing.T) {
			id := uuid.New()
			env.Cache.AddModule(&api.Module{
				ID:   id,
				Kind: api.ModuleProcess,
				Name: "recurse",
			})
			env.Cache.AddProcess(&api.ProcessModule{
				ID: id,
				Steps: []*api.ProcessStep{
					helpers.Step(1, api.ActionCall, id, "", "STOP"),
				},
			})

			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Execute(ctx, id, sess, nil),
				"max call depth")
			as.Equal(0, sess.CallDepth())
		})

		t.Run("iteration_limit_bounded", func(t *testing.T) {
			env.Cfg.MaxIterations = 25
			defer func() { env.Cfg.MaxIterations = 10000 }()

			passing := helpers.AddCompare(env.Cache, api.CompareEquals,
				helpers.Const("A"), helpers.Const("A"))
			proc := helpers.AddProcess(env.Cache, "spin",
				helpers.LabeledStep(1, "LOOP", api.ActionCompare, passing,
					"LOOP", ""),
			)
			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Execute(ctx, proc, sess, nil),
				"maximum iteration limit")
		})

		t.Run("unknown_process_fails", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(
				env.Engine.Execute(ctx, uuid.New(), sess, nil),
				"not found in cache")
		})
	})
}

func TestParameterBinding(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		field := helpers.AddField(env.Cache, "OperatorName", api.FieldString)
		check := helpers.AddCompare(env.Cache, api.CompareEquals,
			helpers.FieldRef(field), helpers.Const("kim"))
		proc := terminated(env.Cache, api.ActionCompare, check)

		t.Run("binds_by_name_case_insensitive", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			res := env.Engine.Execute(ctx, proc, sess,
				map[string]any{"operatorname": "kim"})
			as.ResultPassed(res)
			as.Equal("kim", sess.Field(field))
		})

		t.Run("unknown_names_ignored", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			res := env.Engine.Execute(ctx, proc, sess,
				map[string]any{"nosuchfield": "x"})
			as.ResultFailed(res, "")
		})
	})
}

func TestNestedCalls(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		t.Run("caller_branches_on_child_outcome", func(t *testing.T) {
			child := helpers.AddProcess(env.Cache, "child",
				helpers.Step(1, api.ActionReturnFail, uuid.Nil, "", ""),
			)
			parent := terminated(env.Cache, api.ActionCall, child)

			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Execute(ctx, parent, sess, nil),
				"process failed")
			as.Equal(0, sess.CallDepth())
		})

		t.Run("fields_shared_across_frames", func(t *testing.T) {
			field := helpers.AddField(env.Cache, "Shared", api.FieldString)
			write := helpers.AddCalculate(env.Cache,
				helpers.Calc(1, api.CalcAssign, helpers.Const("inner"),
					api.Operand{}, field))
			child := helpers.AddProcess(env.Cache, "writer",
				helpers.Step(1, api.ActionCalculate, write, "", ""),
				helpers.Step(2, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			check := helpers.AddCompare(env.Cache, api.CompareEquals,
				helpers.FieldRef(field), helpers.Const("inner"))
			parent := helpers.AddProcess(env.Cache, "reader",
				helpers.Step(1, api.ActionCall, child, "", "ABORT"),
				helpers.Step(2, api.ActionCompare, check, "DONE", "ABORT"),
				helpers.LabeledStep(3, "DONE", api.ActionReturnPass,
					uuid.Nil, "", ""),
				helpers.LabeledStep(4, "ABORT", api.ActionReturnFail,
					uuid.Nil, "", ""),
			)

			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, parent, sess, nil))
		})
	})
}

func TestPauseAndResume(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		field := helpers.AddField(env.Cache, "MenuChoice", api.FieldString)
		format := helpers.AddScreenFormat(env.Cache,
			helpers.Element(1, 1, api.UsageOutput, api.KindLiteral,
				uuid.Nil, "Main Menu"),
			helpers.Element(2, 6, api.UsageLabel, api.KindLiteral,
				uuid.Nil, "Choice:"),
			helpers.Element(3, 7, api.UsageInput, api.KindInput,
				field, ""),
		)
		dialog := helpers.AddDialog(env.Cache, format)
		check := helpers.AddCompare(env.Cache, api.CompareEquals,
			helpers.FieldRef(field), helpers.Const("7"))

		newProc := func() uuid.UUID {
			return helpers.AddProcess(env.Cache, "menu",
				helpers.Step(1, api.ActionDialog, dialog, "", ""),
				helpers.Step(2, api.ActionCompare, check, "DONE", "ABORT"),
				helpers.LabeledStep(3, "DONE", api.ActionReturnPass,
					uuid.Nil, "", ""),
				helpers.LabeledStep(4, "ABORT", api.ActionReturnFail,
					uuid.Nil, "", ""),
			)
		}

		t.Run("dialog_pauses_with_screen", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			res := env.Engine.Execute(ctx, newProc(), sess, nil)
			as.ResultPassed(res)
			as.SessionAwaitingInput(sess)
			as.Equal(1, sess.PausedStep())
			as.Equal(1, sess.CallDepth())
			as.ScreenPrompt(sess.PausedScreen(), "Choice:")
			as.Equal("Main Menu", sess.PausedScreen().Heading)
		})

		t.Run("resume_continues_after_dialog", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			env.Engine.Execute(ctx, newProc(), sess, nil)

			res := env.Engine.Resume(ctx, sess, "7")
			as.ResultPassed(res)
			as.False(sess.IsPaused())
			as.Equal(0, sess.CallDepth())
			as.Equal("7", sess.Field(field))
		})

		t.Run("resume_with_wrong_input_fails", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			env.Engine.Execute(ctx, newProc(), sess, nil)

			res := env.Engine.Resume(ctx, sess, "9")
			as.ResultFailed(res, "process failed")
		})

		t.Run("resume_unwinds_into_caller", func(t *testing.T) {
			child := helpers.AddProcess(env.Cache, "ask",
				helpers.Step(1, api.ActionDialog, dialog, "", ""),
				helpers.Step(2, api.ActionCompare, check, "", ""),
				helpers.Step(3, api.ActionReturnPass, uuid.Nil, "", ""),
			)
			parent := terminated(env.Cache, api.ActionCall, child)

			sess := engine.NewSession("op", "RF01")
			env.Engine.Execute(ctx, parent, sess, nil)
			as.SessionAwaitingInput(sess)
			as.Equal(2, sess.CallDepth())

			res := env.Engine.Resume(ctx, sess, "7")
			as.ResultPassed(res)
			as.Equal(0, sess.CallDepth())
		})

		t.Run("resume_without_pause_fails", func(t *testing.T) {
			sess := engine.NewSession("op", "RF01")
			as.ResultFailed(env.Engine.Resume(ctx, sess, "1"),
				"not paused")
		})
	})
}
