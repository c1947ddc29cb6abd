// internal/logic/rules.go
package logic

import (
	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * Evaluates an ordered rule list against the current submission values and
 * folds each matching branch's actions into an accumulating
 * DerivedFieldState.
 *
 * Evaluation flow:
 *   1. Start from the default state (all visible, schema required flags)
 *   2. Iterate rules in array order, skipping disabled rules
 *   3. Match: all/any over the rule's conditions
 *   4. Apply the matched branch's actions in array order; when the primary
 *      conditions fail and the else branch is enabled, apply else actions
 *   5. Conflict policy is last-write-wins per (field, attribute): the last
 *      rule executed prevails, reproducing the documented product behavior
 *
 * set_value writes into ValueOverrides only; the host propagates overrides
 * back into its value store, keeping evaluation pure and re-entrant.
 * skip_to_page sets NavigateTo under the same last-write-wins policy.
 *
 * The full pass re-runs on every value change. There is no incremental
 * update; O(rules x conditions) is cheap at authored form sizes and a
 * from-scratch rebuild makes the pass idempotent and ordering-stable.
 *
 * Authoring-time convention: a condition's source field precedes the
 * fields its actions target, which is what makes cyclic dependencies
 * structurally impossible. The evaluator does not recheck it; rules that
 * violate it are evaluated exactly as written. Validate surfaces them as
 * warnings.
 */

// ConditionLogic selects how a rule's conditions combine.
type ConditionLogic string

const (
	// LogicAll matches when every condition holds.
	LogicAll ConditionLogic = "all"
	// LogicAny matches when at least one condition holds.
	LogicAny ConditionLogic = "any"
)

// Rule is a named, orderable conditional statement with a match branch and
// an optional else branch. Authored externally, read-only at evaluation
// time.
type Rule struct {
	ID             types.RuleID
	Name           string
	Enabled        bool
	ConditionLogic ConditionLogic
	Conditions     []Condition
	Actions        []Action
	ElseEnabled    bool
	ElseActions    []Action
}

// Matches evaluates the rule's conditions against the current values.
// Empty condition lists never match. Anything other than "any" combines
// with all-semantics, matching the persisted format's default.
func (r *Rule) Matches(values types.Values, schema *types.Schema) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	if r.ConditionLogic == LogicAny {
		for _, c := range r.Conditions {
			if EvaluateCondition(c, values, schema) {
				return true
			}
		}
		return false
	}
	for _, c := range r.Conditions {
		if !EvaluateCondition(c, values, schema) {
			return false
		}
	}
	return true
}

// EvaluateRules runs one full evaluation pass and returns the derived
// state. Deterministic: same rules, values and schema always produce the
// same state.
func EvaluateRules(rules []Rule, values types.Values, schema *types.Schema) DerivedFieldState {
	state := NewDerivedFieldState(schema)

	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}
		if rule.Matches(values, schema) {
			applyActions(&state, rule.Actions, schema)
		} else if rule.ElseEnabled {
			applyActions(&state, rule.ElseActions, schema)
		}
	}

	return state
}

// applyActions folds one branch's action list into the accumulator in
// array order. Targets that no longer exist in the schema are silently
// skipped.
func applyActions(state *DerivedFieldState, actions []Action, schema *types.Schema) {
	for _, action := range actions {
		switch a := action.(type) {
		case ShowFields:
			for _, id := range a.Targets {
				if targetExists(id, schema) {
					state.Visibility[id] = true
				}
			}
		case HideFields:
			for _, id := range a.Targets {
				if targetExists(id, schema) {
					state.Visibility[id] = false
				}
			}
		case RequireFields:
			for _, id := range a.Targets {
				if targetExists(id, schema) {
					state.Required[id] = true
				}
			}
		case UnrequireFields:
			for _, id := range a.Targets {
				if targetExists(id, schema) {
					state.Required[id] = false
				}
			}
		case SetValue:
			if targetExists(a.Target, schema) {
				state.ValueOverrides[a.Target] = a.Value
			}
		case SkipToPage:
			if a.Page != "" {
				page := a.Page
				state.NavigateTo = &page
			}
		}
	}
}

// targetExists checks an action target against the schema. A nil schema
// accepts everything; the host opted out of existence checks.
func targetExists(id types.FieldID, schema *types.Schema) bool {
	if id == "" {
		return false
	}
	if schema == nil {
		return true
	}
	return schema.Has(id)
}
