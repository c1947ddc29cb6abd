// internal/logic/operators.go
package logic

import (
	"strings"
)

/*
 * Operator comparison logic.
 *
 * Implements the 10 condition operators of the form logic DSL. Values
 * arrive as whatever the host's JSON decoding produced (string, float64,
 * bool, []any); string operators coerce both sides to string before
 * comparing, matching the authored-rule semantics where every widget value
 * is ultimately text.
 *
 * Operators:
 *   - equals/not_equals: string equality after coercion
 *   - contains/not_contains: substring test
 *   - starts_with/ends_with: prefix/suffix test
 *   - is_empty/is_not_empty: emptiness checks, comparison value ignored
 *   - greater_than/less_than: numeric comparison only
 *
 * Numeric comparison policy: both sides must parse as finite numbers or
 * the condition evaluates to false. No lexicographic fallback; totality
 * over cleverness, a rule comparing "abc" > 5 simply never matches.
 *
 * Why function-based: 10 operators via switch statement cleaner than 10
 * interface implementations with minimal behavior variation.
 */

// Operator identifies a condition comparison. Stored as its wire string
// inside settings.logic_rules.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Known reports whether op is one of the DSL's operators. Unknown
// operators evaluate to false rather than erroring; a broken rule must not
// block the rest of the rule set.
func (op Operator) Known() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty,
		OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// compare applies the operator to left and right values. caseInsensitive
// lower-cases both sides for the string operators. Unknown operators
// return false.
func compare(op Operator, left, right any, caseInsensitive bool) bool {
	switch op {
	case OpIsEmpty:
		return isEmptyValue(left)
	case OpIsNotEmpty:
		return !isEmptyValue(left)
	case OpGreaterThan:
		return compareNumeric(left, right) > 0
	case OpLessThan:
		return compareNumeric(left, right) < 0
	}

	ls := valueToString(left)
	rs := valueToString(right)
	if caseInsensitive {
		ls = strings.ToLower(ls)
		rs = strings.ToLower(rs)
	}

	switch op {
	case OpEquals:
		return ls == rs
	case OpNotEquals:
		return ls != rs
	case OpContains:
		return strings.Contains(ls, rs)
	case OpNotContains:
		return !strings.Contains(ls, rs)
	case OpStartsWith:
		return strings.HasPrefix(ls, rs)
	case OpEndsWith:
		return strings.HasSuffix(ls, rs)
	default:
		return false
	}
}

// compareNumeric performs three-way numeric comparison (-1/0/1).
// Returns 0 when either side fails to parse as a finite number, which
// makes both greater_than and less_than evaluate false for non-numeric
// input.
func compareNumeric(a, b any) int {
	na, oka := toNumber(a)
	nb, okb := toNumber(b)
	if !oka || !okb {
		return 0
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}
