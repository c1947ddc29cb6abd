// internal/engine/session_test.go
package engine

import (
	"testing"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/logic"
	"github.com/fieldworks/formlogic/internal/types"
)

func sessionFixture() *Session {
	schema := &types.Schema{Fields: []types.FieldDef{
		{ID: "country", Ordinal: 0},
		{ID: "state", Ordinal: 1},
	}}
	rules := []logic.Rule{
		{
			ID:             "us-state",
			Enabled:        true,
			ConditionLogic: logic.LogicAll,
			Conditions:     []logic.Condition{{FieldID: "country", Operator: logic.OpEquals, Value: "US"}},
			Actions:        []logic.Action{logic.RequireFields{Targets: []types.FieldID{"state"}}},
			ElseEnabled:    true,
			ElseActions:    []logic.Action{logic.HideFields{Targets: []types.FieldID{"state"}}},
		},
	}
	automations := []automation.Automation{
		{ID: "submit-mail", Enabled: true, Trigger: automation.TriggerOnSubmit,
			Action: automation.EffectSendEmail, Destination: "{{email}}"},
		{ID: "change-hook", Enabled: true, Trigger: automation.TriggerOnFieldChange,
			Action: automation.EffectWebhook, Destination: "https://hooks.example.com"},
		{ID: "partial-hook", Enabled: true, Trigger: automation.TriggerOnPartial,
			Action: automation.EffectWebhook, Destination: "https://hooks.example.com/partial"},
	}
	return NewSession(schema, rules, automations)
}

func TestSession_ReactiveEvaluation(t *testing.T) {
	s := sessionFixture()

	state, effects, err := s.SetValue("country", "US")
	if err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if !state.IsRequired("state") {
		t.Errorf("Required(state) = false after country=US, want true")
	}
	if len(effects) != 1 || effects[0].AutomationID != "change-hook" {
		t.Errorf("field-change effects = %v, want change-hook", effects)
	}

	state, _, err = s.SetValue("country", "CA")
	if err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if state.Visible("state") {
		t.Errorf("Visible(state) = true after country=CA, want false")
	}
}

func TestSession_FieldChangeFiresOnce(t *testing.T) {
	s := sessionFixture()

	_, first, _ := s.SetValue("country", "US")
	_, second, _ := s.SetValue("country", "CA")

	if len(first) != 1 {
		t.Errorf("first change effects = %d, want 1", len(first))
	}
	if len(second) != 0 {
		t.Errorf("second change effects = %d, want 0 (fired-set dedup)", len(second))
	}
}

func TestSession_SubmitIsTerminal(t *testing.T) {
	s := sessionFixture()
	s.SetValue("email", "alice@example.com")

	effects, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(effects) != 1 || effects[0].Destination != "alice@example.com" {
		t.Errorf("submit effects = %v, want rendered submit-mail", effects)
	}
	if s.Status() != StatusSubmitted {
		t.Errorf("Status() = %v, want submitted", s.Status())
	}

	if _, err := s.Submit(); err != types.ErrSessionClosed {
		t.Errorf("second Submit() error = %v, want ErrSessionClosed", err)
	}
	if _, err := s.Abandon(); err != types.ErrSessionClosed {
		t.Errorf("Abandon() after Submit() error = %v, want ErrSessionClosed", err)
	}
	if _, _, err := s.SetValue("country", "US"); err != types.ErrSessionClosed {
		t.Errorf("SetValue() after Submit() error = %v, want ErrSessionClosed", err)
	}
}

func TestSession_AbandonIsTerminal(t *testing.T) {
	s := sessionFixture()

	if _, err := s.Abandon(); err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}
	if s.Status() != StatusAbandoned {
		t.Errorf("Status() = %v, want abandoned", s.Status())
	}
	if _, err := s.Submit(); err != types.ErrSessionClosed {
		t.Errorf("Submit() after Abandon() error = %v, want ErrSessionClosed", err)
	}
}

func TestSession_PartialSaveRepeats(t *testing.T) {
	s := sessionFixture()

	for i := 0; i < 3; i++ {
		effects, err := s.PartialSave()
		if err != nil {
			t.Fatalf("PartialSave() %d error = %v", i, err)
		}
		if len(effects) != 1 || effects[0].AutomationID != "partial-hook" {
			t.Errorf("PartialSave() %d effects = %v, want partial-hook", i, effects)
		}
	}
}

func TestSession_OverridesNotWrittenBack(t *testing.T) {
	schema := &types.Schema{Fields: []types.FieldDef{
		{ID: "plan", Ordinal: 0},
		{ID: "discount", Ordinal: 1},
	}}
	rules := []logic.Rule{{
		ID:             "promo",
		Enabled:        true,
		ConditionLogic: logic.LogicAll,
		Conditions:     []logic.Condition{{FieldID: "plan", Operator: logic.OpEquals, Value: "annual"}},
		Actions:        []logic.Action{logic.SetValue{Target: "discount", Value: "20"}},
	}}
	s := NewSession(schema, rules, nil)

	state, _, err := s.SetValue("plan", "annual")
	if err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if got := state.ValueOverrides["discount"]; got != "20" {
		t.Errorf("ValueOverrides[discount] = %v, want 20", got)
	}
	if _, ok := s.Values()["discount"]; ok {
		t.Errorf("override leaked into the value store; propagation is the host's call")
	}
}

func TestRestoreSession_KeepsFiredSet(t *testing.T) {
	s := sessionFixture()
	s.SetValue("country", "US") // fires change-hook

	restored := RestoreSession(s.ID(), nil, nil,
		[]automation.Automation{{ID: "change-hook", Enabled: true,
			Trigger: automation.TriggerOnFieldChange, Action: automation.EffectWebhook}},
		s.Values(), StatusStarted,
		automation.NewFiredSetFromIDs(s.FiredSet().IDs()))

	_, effects, err := restored.SetValue("country", "DE")
	if err != nil {
		t.Fatalf("SetValue() on restored session error = %v", err)
	}
	if len(effects) != 0 {
		t.Errorf("restored session re-fired %d automations, want 0", len(effects))
	}
}
