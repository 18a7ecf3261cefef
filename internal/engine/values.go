package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warekit/shuttle/pkg/api"
)

// TimestampLayout is the fixed format used for date/time fields in SQL
// literals and screen text
const TimestampLayout = "2006-01-02 15:04:05"

// stringify renders a field value as display text. Unset values render as
// the empty string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(TimestampLayout)
	case decimal.Decimal:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// sqlLiteral renders a field value as a literal SQL fragment typed per the
// field's declared type: quoted strings with embedded quotes doubled,
// TRUE/FALSE boolean tokens, quoted fixed-format timestamps, bare integers,
// and NULL for unset values.
func sqlLiteral(v any, fieldType api.FieldType) string {
	if v == nil {
		return "NULL"
	}

	switch fieldType {
	case api.FieldInteger:
		return stringify(v)
	case api.FieldBoolean:
		if truthy(v) {
			return "TRUE"
		}
		return "FALSE"
	case api.FieldDateTime:
		if t, ok := v.(time.Time); ok {
			return "'" + t.Format(TimestampLayout) + "'"
		}
		return quoted(v)
	default:
		return quoted(v)
	}
}

func quoted(v any) string {
	return "'" + strings.ReplaceAll(stringify(v), "'", "''") + "'"
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.ToLower(t))
		return err == nil && b
	default:
		b, err := strconv.ParseBool(stringify(t))
		return err == nil && b
	}
}

// convertToFieldType coerces a parameter value to a field's declared type.
// Unconvertible values pass through unchanged rather than failing.
func convertToFieldType(v any, fieldType api.FieldType) any {
	if v == nil {
		return nil
	}

	switch fieldType {
	case api.FieldString:
		return stringify(v)

	case api.FieldInteger:
		switch t := v.(type) {
		case int:
			return t
		case int64:
			return int(t)
		case float64:
			return int(t)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(stringify(v))); err == nil {
			return n
		}
		return v

	case api.FieldBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
		if b, err := strconv.ParseBool(
			strings.ToLower(stringify(v)),
		); err == nil {
			return b
		}
		return v

	case api.FieldDateTime:
		if t, ok := v.(time.Time); ok {
			return t
		}
		s := stringify(v)
		if t, err := time.Parse(TimestampLayout, s); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		return v
	}
	return v
}
