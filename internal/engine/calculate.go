package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warekit/shuttle/pkg/api"
)

// ErrDivideByZero aborts a calculate action whose divisor resolves to zero
var ErrDivideByZero = errors.New("cannot divide by zero")

// calculate executes each detail in ascending sequence order against the
// shared field store, so a later detail may consume an earlier detail's
// result. A failing detail aborts the remainder; writes already performed
// are retained.
func (x *Executor) calculate(
	action *api.CalculateAction, sess *Session,
) *Result {
	details := make([]*api.CalculateDetail, len(action.Details))
	copy(details, action.Details)
	sort.Slice(details, func(i, j int) bool {
		return details[i].Sequence < details[j].Sequence
	})

	for _, detail := range details {
		if err := applyCalculation(detail, sess); err != nil {
			return FailCause(err, "calculation failed: %v", err)
		}
	}
	return Pass("calculations completed")
}

func applyCalculation(detail *api.CalculateDetail, sess *Session) error {
	in1 := resolveOperand(detail.Input1, sess)
	in2 := resolveOperand(detail.Input2, sess)

	var result any
	switch detail.Operator {
	case api.CalcAssign:
		result = in1

	case api.CalcConcatenate:
		result = stringify(in1) + stringify(in2)

	case api.CalcAdd:
		result = toDecimal(in1).Add(toDecimal(in2))

	case api.CalcSubtract:
		result = toDecimal(in1).Sub(toDecimal(in2))

	case api.CalcMultiply:
		result = toDecimal(in1).Mul(toDecimal(in2))

	case api.CalcDivide:
		divisor := toDecimal(in2)
		if divisor.IsZero() {
			return ErrDivideByZero
		}
		result = toDecimal(in1).Div(divisor)

	case api.CalcModulus:
		divisor := toDecimal(in2)
		if divisor.IsZero() {
			return ErrDivideByZero
		}
		result = toDecimal(in1).Mod(divisor)

	case api.CalcClear:
		result = nil

	default:
		return fmt.Errorf("unknown calculate operator: %d", detail.Operator)
	}

	sess.SetField(detail.ResultField, result)
	return nil
}

// toDecimal coerces a value to decimal, treating non-numeric or absent
// operands as zero
func toDecimal(v any) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	if d, ok := v.(decimal.Decimal); ok {
		return d
	}
	d, err := decimal.NewFromString(strings.TrimSpace(stringify(v)))
	if err != nil {
		return decimal.Zero
	}
	return d
}
