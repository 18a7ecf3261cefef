package engine_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warekit/shuttle/internal/assert"
	"github.com/warekit/shuttle/internal/assert/helpers"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

func TestCalculateOperators(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	helpers.WithEnv(t, func(env *helpers.Env) {
		result := helpers.AddField(env.Cache, "Result", api.FieldString)

		run := func(t *testing.T, details ...*api.CalculateDetail) (
			*engine.Result, *engine.Session,
		) {
			t.Helper()
			action := helpers.AddCalculate(env.Cache, details...)
			proc := terminated(env.Cache, api.ActionCalculate, action)
			sess := engine.NewSession("op", "RF01")
			return env.Engine.Execute(ctx, proc, sess, nil), sess
		}

		decEqual := func(t *testing.T, expected string, v any) {
			t.Helper()
			d, ok := v.(decimal.Decimal)
			as.True(ok, "expected decimal result, got %T", v)
			if ok {
				as.Equal(expected, d.String())
			}
		}

		t.Run("assign", func(t *testing.T) {
			res, sess := run(t, helpers.Calc(1, api.CalcAssign,
				helpers.Const("PICK"), api.Operand{}, result))
			as.ResultPassed(res)
			as.Equal("PICK", sess.Field(result))
		})

		t.Run("concatenate", func(t *testing.T) {
			res, sess := run(t, helpers.Calc(1, api.CalcConcatenate,
				helpers.Const("LOC-"), helpers.Const("A1"), result))
			as.ResultPassed(res)
			as.Equal("LOC-A1", sess.Field(result))
		})

		t.Run("arithmetic", func(t *testing.T) {
			res, sess := run(t,
				helpers.Calc(1, api.CalcAdd,
					helpers.Const("2.5"), helpers.Const("0.5"), result),
				helpers.Calc(2, api.CalcMultiply,
					helpers.FieldRef(result), helpers.Const("4"), result),
				helpers.Calc(3, api.CalcSubtract,
					helpers.FieldRef(result), helpers.Const("2"), result),
				helpers.Calc(4, api.CalcDivide,
					helpers.FieldRef(result), helpers.Const("5"), result),
			)
			as.ResultPassed(res)
			decEqual(t, "2", sess.Field(result))
		})

		t.Run("modulus", func(t *testing.T) {
			res, sess := run(t, helpers.Calc(1, api.CalcModulus,
				helpers.Const("17"), helpers.Const("5"), result))
			as.ResultPassed(res)
			decEqual(t, "2", sess.Field(result))
		})

		t.Run("clear", func(t *testing.T) {
			res, sess := run(t,
				helpers.Calc(1, api.CalcAssign,
					helpers.Const("X"), api.Operand{}, result),
				helpers.Calc(2, api.CalcClear,
					api.Operand{}, api.Operand{}, result),
			)
			as.ResultPassed(res)
			as.Nil(sess.Field(result))
		})

		t.Run("non_numeric_operand_is_zero", func(t *testing.T) {
			res, sess := run(t, helpers.Calc(1, api.CalcAdd,
				helpers.Const("oops"), helpers.Const("3"), result))
			as.ResultPassed(res)
			decEqual(t, "3", sess.Field(result))
		})

		t.Run("divide_by_zero_aborts", func(t *testing.T) {
			first := helpers.AddField(env.Cache, "First", api.FieldString)
			action := helpers.AddCalculate(env.Cache,
				helpers.Calc(1, api.CalcAssign,
					helpers.Const("kept"), api.Operand{}, first),
				helpers.Calc(2, api.CalcDivide,
					helpers.Const("1"), helpers.Const("0"), result),
			)
			proc := faulted(env.Cache, api.ActionCalculate, action)
			sess := engine.NewSession("op", "RF01")
			res := env.Engine.Execute(ctx, proc, sess, nil)
			as.ResultFailed(res, "divide by zero")
			// the write preceding the failing detail is retained
			as.Equal("kept", sess.Field(first))
			as.Nil(sess.Field(result))
		})

		t.Run("details_run_in_sequence_order", func(t *testing.T) {
			res, sess := run(t,
				helpers.Calc(2, api.CalcConcatenate,
					helpers.FieldRef(result), helpers.Const("B"), result),
				helpers.Calc(1, api.CalcAssign,
					helpers.Const("A"), api.Operand{}, result),
			)
			as.ResultPassed(res)
			as.Equal("AB", sess.Field(result))
		})
	})
}
