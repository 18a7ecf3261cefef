// Package parse implements the statement placeholder grammar used by
// database action modules: `::#5#<uuid>#::` field tokens, an optional
// trailing RETURNS(...) clause, and an optional leading CONNECT directive.
// The grammar is fixed and intentionally testable in isolation from
// database execution.
package parse

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// fieldPattern matches a field reference token wrapping a standard
	// 36-character hyphenated UUID
	fieldPattern = regexp.MustCompile(
		`::#5#([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-` +
			`[0-9a-fA-F]{4}-[0-9a-fA-F]{12})#::`)

	// returnsPattern matches a RETURNS(...) clause, keyword case-insensitive
	returnsPattern = regexp.MustCompile(`(?i)RETURNS\s*\(([^)]*)\)`)

	// connectPattern matches a leading CONNECT <identifier>; directive
	connectPattern = regexp.MustCompile(`(?i)^\s*CONNECT\s+([A-Za-z0-9_]+)\s*;`)
)

// FieldToken renders the placeholder token for a field id
func FieldToken(id uuid.UUID) string {
	return "::#5#" + id.String() + "#::"
}

// ExtractFieldIDs returns every field id referenced by placeholder tokens in
// the statement, in order of appearance
func ExtractFieldIDs(statement string) []uuid.UUID {
	if statement == "" {
		return nil
	}

	var ids []uuid.UUID
	for _, m := range fieldPattern.FindAllStringSubmatch(statement, -1) {
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ExtractReturns parses the RETURNS clause into the positional list of
// fields a result row should populate and returns the statement with the
// clause removed
func ExtractReturns(statement string) ([]uuid.UUID, string) {
	if statement == "" {
		return nil, statement
	}

	var fields []uuid.UUID
	if m := returnsPattern.FindStringSubmatch(statement); m != nil {
		fields = ExtractFieldIDs(m[1])
	}
	cleaned := strings.TrimSpace(returnsPattern.ReplaceAllString(statement, ""))
	return fields, cleaned
}

// ExtractConnect strips a leading CONNECT directive, returning the named
// database and the remaining statement text. ok is false when no directive
// is present.
func ExtractConnect(statement string) (name, rest string, ok bool) {
	m := connectPattern.FindStringSubmatch(statement)
	if m == nil {
		return "", statement, false
	}
	rest = strings.TrimSpace(connectPattern.ReplaceAllString(statement, ""))
	return m[1], rest, true
}

// SubstituteFields replaces every placeholder token with the literal text
// produced by resolve. Tokens whose UUID cannot be parsed are left intact.
func SubstituteFields(
	statement string, resolve func(uuid.UUID) string,
) string {
	if statement == "" {
		return statement
	}

	return fieldPattern.ReplaceAllStringFunc(statement, func(tok string) string {
		m := fieldPattern.FindStringSubmatch(tok)
		id, err := uuid.Parse(m[1])
		if err != nil {
			return tok
		}
		return resolve(id)
	})
}
