// internal/logic/condition.go
package logic

import (
	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Condition evaluation.
 *
 * A condition is an atomic predicate over one field's current value,
 * optionally compared against another field's current value instead of a
 * literal (CompareWithField). Evaluation is pure and total: no condition
 * ever errors. Malformed conditions (missing field id, unknown operator)
 * and dangling references (field deleted from the form after the rule was
 * authored) evaluate to false, so one broken rule degrades to a non-match
 * instead of taking the whole form down.
 */

// Condition is an atomic predicate over one field's value.
type Condition struct {
	FieldID types.FieldID
	// Operator selects the comparison. Unknown operators never match.
	Operator Operator
	// Value is the literal right-hand side, or a field identifier when
	// CompareWithField is set. Ignored entirely by is_empty/is_not_empty.
	Value any
	// CaseInsensitive lower-cases both sides for string operators.
	CaseInsensitive bool
	// CompareWithField substitutes the current value of the field named by
	// Value at evaluation time (dynamic cross-field comparison).
	CompareWithField bool
}

// EvaluateCondition evaluates one condition against the current submission
// values. schema may be nil when the caller has no field registry; then
// existence checks are skipped and missing fields simply read as nil.
func EvaluateCondition(cond Condition, values types.Values, schema *types.Schema) bool {
	if cond.FieldID == "" || !cond.Operator.Known() {
		return false
	}
	if schema != nil && !schema.Has(cond.FieldID) {
		return false
	}

	left := values[cond.FieldID]

	// Emptiness checks ignore the comparison value entirely.
	if cond.Operator == OpIsEmpty || cond.Operator == OpIsNotEmpty {
		return compare(cond.Operator, left, nil, false)
	}

	var right any
	if cond.CompareWithField {
		ref := types.FieldID(valueToString(cond.Value))
		if ref == "" {
			return false
		}
		if schema != nil && !schema.Has(ref) {
			return false
		}
		right = values[ref]
	} else {
		right = cond.Value
	}

	return compare(cond.Operator, left, right, cond.CaseInsensitive)
}
