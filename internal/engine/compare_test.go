package engine_test

import (
	"context"
	"testing"

	"github.com/warekit/shuttle/internal/assert"
	"github.com/warekit/shuttle/internal/assert/helpers"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

func TestCompareOperators(t *testing.T) {
	as := assert.New(t)
	ctx := context.Background()

	tests := []struct {
		name string
		op   api.CompareOp
		in1  string
		in2  string
		pass bool
	}{
		{"equals_case_insensitive", api.CompareEquals, "ABC", "abc", true},
		{"equals_mismatch", api.CompareEquals, "ABC", "ABD", false},
		{"not_equals", api.CompareNotEquals, "A", "B", true},
		{"not_equals_same", api.CompareNotEquals, "A", "a", false},
		{"greater_numeric", api.CompareGreaterThan, "10", "9", true},
		{"greater_numeric_false", api.CompareGreaterThan, "9", "10", false},
		{"greater_lexicographic", api.CompareGreaterThan, "B1", "A9", true},
		{"less_numeric", api.CompareLessThan, "2.5", "2.50001", true},
		{"greater_or_equal", api.CompareGreaterOrEqual, "3", "3.0", true},
		{"less_or_equal", api.CompareLessOrEqual, "3", "3", true},
		{"contains", api.CompareContains, "PALLET-99", "let-9", true},
		{"contains_false", api.CompareContains, "PALLET", "CASE", false},
		{"starts_with", api.CompareStartsWith, "LOC-A-01", "loc-a", true},
		{"ends_with", api.CompareEndsWith, "LOC-A-01", "-01", true},
	}

	helpers.WithEnv(t, func(env *helpers.Env) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				action := helpers.AddCompare(env.Cache, tt.op,
					helpers.Const(tt.in1), helpers.Const(tt.in2))
				proc := terminated(env.Cache, api.ActionCompare, action)

				sess := engine.NewSession("op", "RF01")
				res := env.Engine.Execute(ctx, proc, sess, nil)
				if tt.pass {
					as.ResultPassed(res)
				} else {
					as.ResultFailed(res, "")
				}
			})
		}

		t.Run("unset_field_compares_as_empty", func(t *testing.T) {
			field := helpers.AddField(env.Cache, "Unwritten", api.FieldString)
			action := helpers.AddCompare(env.Cache, api.CompareEquals,
				helpers.FieldRef(field), helpers.Const(""))
			proc := terminated(env.Cache, api.ActionCompare, action)

			sess := engine.NewSession("op", "RF01")
			as.ResultPassed(env.Engine.Execute(ctx, proc, sess, nil))
		})
	})
}
