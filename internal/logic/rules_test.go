// internal/logic/rules_test.go
package logic

import (
	"testing"

	"github.com/fieldworks/formlogic/internal/types"
)

func enabledRule(id string, logic ConditionLogic, conds []Condition, actions []Action) Rule {
	return Rule{
		ID:             types.RuleID(id),
		Name:           id,
		Enabled:        true,
		ConditionLogic: logic,
		Conditions:     conds,
		Actions:        actions,
	}
}

func TestEvaluateRules_DefaultState(t *testing.T) {
	schema := &types.Schema{Fields: []types.FieldDef{
		{ID: "a", Ordinal: 0, Required: true},
		{ID: "b", Ordinal: 1},
	}}

	state := EvaluateRules(nil, types.Values{}, schema)

	if !state.Visible("a") || !state.Visible("b") {
		t.Errorf("default visibility = false, want all visible")
	}
	if !state.IsRequired("a") {
		t.Errorf("static required flag not carried into default state")
	}
	if state.IsRequired("b") {
		t.Errorf("Required[b] = true, want schema default false")
	}
	if len(state.ValueOverrides) != 0 {
		t.Errorf("ValueOverrides = %v, want empty", state.ValueOverrides)
	}
	if state.NavigateTo != nil {
		t.Errorf("NavigateTo = %v, want nil", *state.NavigateTo)
	}
}

func TestEvaluateRules_LastWriteWins(t *testing.T) {
	schema := testSchema()
	cond := []Condition{{FieldID: "country", Operator: OpEquals, Value: "US"}}

	rules := []Rule{
		enabledRule("rule-a", LogicAll, cond, []Action{HideFields{Targets: []types.FieldID{"state"}}}),
		enabledRule("rule-b", LogicAll, cond, []Action{ShowFields{Targets: []types.FieldID{"state"}}}),
	}

	state := EvaluateRules(rules, types.Values{"country": "US"}, schema)
	if !state.Visible("state") {
		t.Errorf("Visible(state) = false, want true (later rule prevails)")
	}

	// Reversed order flips the outcome.
	rules[0], rules[1] = rules[1], rules[0]
	state = EvaluateRules(rules, types.Values{"country": "US"}, schema)
	if state.Visible("state") {
		t.Errorf("Visible(state) = true, want false after reorder")
	}
}

func TestEvaluateRules_AllVsAny(t *testing.T) {
	schema := testSchema()
	conds := []Condition{
		{FieldID: "country", Operator: OpEquals, Value: "US"},
		{FieldID: "name", Operator: OpEquals, Value: "Alice"},
	}
	show := []Action{ShowFields{Targets: []types.FieldID{"state"}}}
	hide := []Action{HideFields{Targets: []types.FieldID{"state"}}}

	tests := []struct {
		name    string
		logic   ConditionLogic
		values  types.Values
		matched bool
	}{
		{name: "all with both", logic: LogicAll, values: types.Values{"country": "US", "name": "Alice"}, matched: true},
		{name: "all with one", logic: LogicAll, values: types.Values{"country": "US"}, matched: false},
		{name: "any with one", logic: LogicAny, values: types.Values{"name": "Alice"}, matched: true},
		{name: "any with neither", logic: LogicAny, values: types.Values{}, matched: false},
		{name: "blank logic defaults to all", logic: "", values: types.Values{"country": "US"}, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Hide first so a match is observable against the visible default.
			rules := []Rule{
				enabledRule("pre-hide", LogicAll, []Condition{{FieldID: "state", Operator: OpIsEmpty}}, hide),
				enabledRule("rule", tt.logic, conds, show),
			}
			state := EvaluateRules(rules, tt.values, schema)
			if state.Visible("state") != tt.matched {
				t.Errorf("Visible(state) = %v, want %v", state.Visible("state"), tt.matched)
			}
		})
	}
}

func TestEvaluateRules_ElseBranch(t *testing.T) {
	schema := testSchema()
	rule := Rule{
		ID:             "else-rule",
		Enabled:        true,
		ConditionLogic: LogicAll,
		Conditions:     []Condition{{FieldID: "country", Operator: OpEquals, Value: "US"}},
		Actions:        []Action{RequireFields{Targets: []types.FieldID{"state"}}},
		ElseEnabled:    true,
		ElseActions:    []Action{HideFields{Targets: []types.FieldID{"state"}}},
	}

	state := EvaluateRules([]Rule{rule}, types.Values{"country": "US"}, schema)
	if !state.Visible("state") || !state.IsRequired("state") {
		t.Errorf("primary branch: visible=%v required=%v, want true/true",
			state.Visible("state"), state.IsRequired("state"))
	}

	state = EvaluateRules([]Rule{rule}, types.Values{"country": "CA"}, schema)
	if state.Visible("state") {
		t.Errorf("else branch: Visible(state) = true, want false")
	}
	if state.IsRequired("state") {
		t.Errorf("else branch: Required(state) = true, want false (primary actions not applied)")
	}

	// Else branch disabled: conditions false applies nothing.
	rule.ElseEnabled = false
	state = EvaluateRules([]Rule{rule}, types.Values{"country": "CA"}, schema)
	if !state.Visible("state") {
		t.Errorf("no else: Visible(state) = false, want default true")
	}
}

func TestEvaluateRules_DisabledRuleSkipped(t *testing.T) {
	schema := testSchema()
	rule := enabledRule("off", LogicAll,
		[]Condition{{FieldID: "country", Operator: OpIsNotEmpty}},
		[]Action{HideFields{Targets: []types.FieldID{"state"}}})
	rule.Enabled = false

	state := EvaluateRules([]Rule{rule}, types.Values{"country": "US"}, schema)
	if !state.Visible("state") {
		t.Errorf("disabled rule applied its actions")
	}
}

func TestEvaluateRules_SetValueAndNavigation(t *testing.T) {
	schema := testSchema()
	values := types.Values{"country": "US"}
	cond := []Condition{{FieldID: "country", Operator: OpEquals, Value: "US"}}

	rules := []Rule{
		enabledRule("set", LogicAll, cond, []Action{SetValue{Target: "state", Value: "CA"}}),
		enabledRule("nav-1", LogicAll, cond, []Action{SkipToPage{Page: "page-2"}}),
		enabledRule("nav-2", LogicAll, cond, []Action{SkipToPage{Page: "page-3"}}),
	}

	state := EvaluateRules(rules, values, schema)
	if got := state.ValueOverrides["state"]; got != "CA" {
		t.Errorf("ValueOverrides[state] = %v, want CA", got)
	}
	if state.NavigateTo == nil || *state.NavigateTo != "page-3" {
		t.Errorf("NavigateTo = %v, want page-3 (last rule wins)", state.NavigateTo)
	}
	// The engine never writes overrides back into the store.
	if _, ok := values["state"]; ok {
		t.Errorf("value store mutated by evaluation")
	}
}

func TestEvaluateRules_DanglingTargetsIgnored(t *testing.T) {
	schema := testSchema()
	rules := []Rule{
		enabledRule("dangling", LogicAll,
			[]Condition{{FieldID: "country", Operator: OpIsNotEmpty}},
			[]Action{
				HideFields{Targets: []types.FieldID{"deleted_field", "state"}},
				SetValue{Target: "also_deleted", Value: "x"},
			}),
	}

	state := EvaluateRules(rules, types.Values{"country": "US"}, schema)
	if state.Visible("state") {
		t.Errorf("live target not applied alongside dangling one")
	}
	if _, ok := state.Visibility["deleted_field"]; ok {
		t.Errorf("dangling target written into state")
	}
	if len(state.ValueOverrides) != 0 {
		t.Errorf("dangling set_value target written: %v", state.ValueOverrides)
	}
}

// Scenario from the product docs: US respondents see and must fill a
// state field, everyone else never sees it.
func TestEvaluateRules_CountryStateScenario(t *testing.T) {
	schema := testSchema()
	usCond := []Condition{{FieldID: "country", Operator: OpEquals, Value: "US"}}

	rules := []Rule{
		enabledRule("show-state", LogicAll, usCond,
			[]Action{ShowFields{Targets: []types.FieldID{"state"}}}),
		{
			ID:             "require-state",
			Enabled:        true,
			ConditionLogic: LogicAll,
			Conditions:     usCond,
			Actions:        []Action{RequireFields{Targets: []types.FieldID{"state"}}},
			ElseEnabled:    true,
			ElseActions:    []Action{HideFields{Targets: []types.FieldID{"state"}}},
		},
	}

	state := EvaluateRules(rules, types.Values{"country": "US"}, schema)
	if !state.Visible("state") || !state.IsRequired("state") {
		t.Errorf("US: visible=%v required=%v, want true/true",
			state.Visible("state"), state.IsRequired("state"))
	}

	state = EvaluateRules(rules, types.Values{"country": "CA"}, schema)
	if state.Visible("state") {
		t.Errorf("CA: Visible(state) = true, want false")
	}
}
