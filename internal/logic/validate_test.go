// internal/logic/validate_test.go
package logic

import (
	"testing"

	"github.com/fieldworks/formlogic/internal/types"
)

func hasWarning(warnings []Warning, code WarningCode, field types.FieldID) bool {
	for _, w := range warnings {
		if w.Code == code && w.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_ForwardReference(t *testing.T) {
	schema := testSchema()

	// Conditions on "state" (ordinal 3) targeting "country" (ordinal 2):
	// source does not precede target.
	backward := enabledRule("backward", LogicAll,
		[]Condition{{FieldID: "state", Operator: OpIsNotEmpty}},
		[]Action{HideFields{Targets: []types.FieldID{"country"}}})

	warnings := Validate([]Rule{backward}, schema)
	if !hasWarning(warnings, WarnForwardReference, "country") {
		t.Errorf("warnings = %v, want forward_reference on country", warnings)
	}

	// Proper ordering produces no forward-reference warning.
	forward := enabledRule("forward", LogicAll,
		[]Condition{{FieldID: "country", Operator: OpIsNotEmpty}},
		[]Action{HideFields{Targets: []types.FieldID{"state"}}})

	warnings = Validate([]Rule{forward}, schema)
	if hasWarning(warnings, WarnForwardReference, "state") {
		t.Errorf("warnings = %v, want no forward_reference", warnings)
	}
}

func TestValidate_SelfReference(t *testing.T) {
	schema := testSchema()
	self := enabledRule("self", LogicAll,
		[]Condition{{FieldID: "state", Operator: OpIsNotEmpty}},
		[]Action{HideFields{Targets: []types.FieldID{"state"}}})

	warnings := Validate([]Rule{self}, schema)
	if !hasWarning(warnings, WarnForwardReference, "state") {
		t.Errorf("warnings = %v, want forward_reference for self-targeting rule", warnings)
	}
}

func TestValidate_UnknownReferences(t *testing.T) {
	schema := testSchema()
	rule := enabledRule("dangling", LogicAll,
		[]Condition{
			{FieldID: "deleted_field", Operator: OpIsEmpty},
			{FieldID: "country", Operator: OpEquals, Value: "other_deleted", CompareWithField: true},
			{FieldID: "country", Operator: "bogus_op", Value: "x"},
		},
		[]Action{ShowFields{Targets: []types.FieldID{"gone_target"}}})

	warnings := Validate([]Rule{rule}, schema)

	if !hasWarning(warnings, WarnUnknownField, "deleted_field") {
		t.Errorf("missing unknown_field warning for condition source")
	}
	if !hasWarning(warnings, WarnUnknownField, "other_deleted") {
		t.Errorf("missing unknown_field warning for comparison field")
	}
	if !hasWarning(warnings, WarnUnknownField, "gone_target") {
		t.Errorf("missing unknown_field warning for action target")
	}
	if !hasWarning(warnings, WarnUnknownOperator, "country") {
		t.Errorf("missing unknown_operator warning")
	}
}

func TestValidate_EmptyBranches(t *testing.T) {
	schema := testSchema()
	rule := Rule{ID: "hollow", Enabled: true, ConditionLogic: LogicAll}

	warnings := Validate([]Rule{rule}, schema)
	if !hasWarning(warnings, WarnEmptyConditions, "") {
		t.Errorf("missing empty_conditions warning")
	}
	if !hasWarning(warnings, WarnEmptyActions, "") {
		t.Errorf("missing empty_actions warning")
	}

	// Disabled rules are not inspected.
	rule.Enabled = false
	if warnings := Validate([]Rule{rule}, schema); len(warnings) != 0 {
		t.Errorf("warnings for disabled rule = %v, want none", warnings)
	}
}
