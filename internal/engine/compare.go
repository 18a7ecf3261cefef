package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warekit/shuttle/pkg/api"
)

// compare resolves both operands and evaluates the operator's predicate.
// Fail is the normal "comparison was false" outcome, not an error.
func (x *Executor) compare(
	action *api.CompareAction, sess *Session,
) *Result {
	v1 := resolveOperand(action.Input1, sess)
	v2 := resolveOperand(action.Input2, sess)

	ok, err := evalCompare(v1, v2, action.Operator)
	if err != nil {
		return FailCause(err, "comparison error: %v", err)
	}
	if ok {
		return Pass("comparison passed")
	}
	return Fail("comparison failed")
}

// resolveOperand yields a constant literal or the current session value of
// the referenced field. An unset field yields nil.
func resolveOperand(op api.Operand, sess *Session) any {
	if op.Constant {
		return op.Value
	}
	if op.FieldID != uuid.Nil {
		return sess.Field(op.FieldID)
	}
	return nil
}

func evalCompare(v1, v2 any, op api.CompareOp) (bool, error) {
	s1 := stringify(v1)
	s2 := stringify(v2)

	switch op {
	case api.CompareEquals:
		return strings.EqualFold(s1, s2), nil
	case api.CompareNotEquals:
		return !strings.EqualFold(s1, s2), nil
	case api.CompareGreaterThan:
		return compareNumeric(s1, s2) > 0, nil
	case api.CompareLessThan:
		return compareNumeric(s1, s2) < 0, nil
	case api.CompareGreaterOrEqual:
		return compareNumeric(s1, s2) >= 0, nil
	case api.CompareLessOrEqual:
		return compareNumeric(s1, s2) <= 0, nil
	case api.CompareContains:
		return strings.Contains(strings.ToLower(s1), strings.ToLower(s2)), nil
	case api.CompareStartsWith:
		return strings.HasPrefix(strings.ToLower(s1), strings.ToLower(s2)), nil
	case api.CompareEndsWith:
		return strings.HasSuffix(strings.ToLower(s1), strings.ToLower(s2)), nil
	default:
		return false, fmt.Errorf("unknown comparison operator: %d", op)
	}
}

// compareNumeric orders two values as decimals when both parse, falling
// back to case-insensitive lexicographic comparison otherwise
func compareNumeric(s1, s2 string) int {
	d1, err1 := decimal.NewFromString(strings.TrimSpace(s1))
	d2, err2 := decimal.NewFromString(strings.TrimSpace(s2))
	if err1 == nil && err2 == nil {
		return d1.Cmp(d2)
	}
	return strings.Compare(strings.ToLower(s1), strings.ToLower(s2))
}
