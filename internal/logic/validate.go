// internal/logic/validate.go
package logic

import (
	"fmt"

	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Advisory rule-set validation.
 *
 * The authoring UI keeps rule sets well-formed by construction (a
 * condition's source field precedes its action targets, references point
 * at live fields). Those are conventions, not hard gates, so rule sets
 * arriving here can violate them. Validate surfaces violations as warnings
 * for the authoring surface to display; the evaluator itself never rejects
 * a rule, it degrades per condition.
 */

// WarningCode classifies a validation finding.
type WarningCode string

const (
	// WarnForwardReference flags a condition whose source field comes at or
	// after a field targeted by the same rule. Such rules still evaluate as
	// written, but they bypass the ordering convention that makes cyclic
	// dependencies structurally impossible.
	WarnForwardReference WarningCode = "forward_reference"
	// WarnUnknownField flags a reference to a field absent from the schema.
	WarnUnknownField WarningCode = "unknown_field"
	// WarnUnknownOperator flags an operator outside the DSL.
	WarnUnknownOperator WarningCode = "unknown_operator"
	// WarnEmptyConditions flags an enabled rule with no conditions; it can
	// never match.
	WarnEmptyConditions WarningCode = "empty_conditions"
	// WarnEmptyActions flags an enabled rule with no actions on its match
	// branch.
	WarnEmptyActions WarningCode = "empty_actions"
)

// Warning describes one advisory finding against a rule set.
type Warning struct {
	RuleID types.RuleID
	Code   WarningCode
	Field  types.FieldID
	Detail string
}

// Validate inspects a rule set against a schema and reports advisory
// warnings. It never fails: a rule set with warnings still evaluates.
func Validate(rules []Rule, schema *types.Schema) []Warning {
	var warnings []Warning

	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}

		if len(rule.Conditions) == 0 {
			warnings = append(warnings, Warning{
				RuleID: rule.ID,
				Code:   WarnEmptyConditions,
				Detail: "rule has no conditions and can never match",
			})
		}
		if len(rule.Actions) == 0 {
			warnings = append(warnings, Warning{
				RuleID: rule.ID,
				Code:   WarnEmptyActions,
				Detail: "rule has no actions on its match branch",
			})
		}

		maxSourceOrdinal := -1
		for _, cond := range rule.Conditions {
			if !cond.Operator.Known() {
				warnings = append(warnings, Warning{
					RuleID: rule.ID,
					Code:   WarnUnknownOperator,
					Field:  cond.FieldID,
					Detail: fmt.Sprintf("unknown operator %q", cond.Operator),
				})
			}
			warnings = appendFieldWarnings(warnings, rule.ID, cond.FieldID, schema)
			if cond.CompareWithField {
				ref := types.FieldID(valueToString(cond.Value))
				warnings = appendFieldWarnings(warnings, rule.ID, ref, schema)
			}
			if ord := schema.Ordinal(cond.FieldID); ord > maxSourceOrdinal {
				maxSourceOrdinal = ord
			}
		}

		for _, id := range actionTargets(rule.Actions) {
			warnings = appendFieldWarnings(warnings, rule.ID, id, schema)
			if ord := schema.Ordinal(id); ord >= 0 && maxSourceOrdinal >= ord {
				warnings = append(warnings, Warning{
					RuleID: rule.ID,
					Code:   WarnForwardReference,
					Field:  id,
					Detail: "condition source field does not precede action target",
				})
			}
		}
		for _, id := range actionTargets(rule.ElseActions) {
			warnings = appendFieldWarnings(warnings, rule.ID, id, schema)
		}
	}

	return warnings
}

// appendFieldWarnings adds an unknown-field warning when id is set but
// absent from the schema.
func appendFieldWarnings(warnings []Warning, ruleID types.RuleID, id types.FieldID, schema *types.Schema) []Warning {
	if id == "" || schema == nil || schema.Has(id) {
		return warnings
	}
	return append(warnings, Warning{
		RuleID: ruleID,
		Code:   WarnUnknownField,
		Field:  id,
		Detail: fmt.Sprintf("field %q not in form", id),
	})
}

// actionTargets collects every field identifier an action list touches.
func actionTargets(actions []Action) []types.FieldID {
	var ids []types.FieldID
	for _, action := range actions {
		switch a := action.(type) {
		case ShowFields:
			ids = append(ids, a.Targets...)
		case HideFields:
			ids = append(ids, a.Targets...)
		case RequireFields:
			ids = append(ids, a.Targets...)
		case UnrequireFields:
			ids = append(ids, a.Targets...)
		case SetValue:
			ids = append(ids, a.Target)
		}
	}
	return ids
}
