// internal/settings/settings.go

// Package settings decodes and encodes the persisted form settings blob.
//
// Rules and automations live as plain JSON arrays inside a form's settings
// object (settings.logic_rules, settings.automations). The stored shape is
// the authoring UI's duck-typed one: actions are {type, targets?, target?,
// value?} objects, condition keys are camelCase. Decoding converts that
// into the tagged action variants the evaluator consumes, and adds a
// schema_version field the original format never had so future format
// changes can be detected instead of misread.
//
// Decoding is tolerant by design: an individual rule or automation entry
// that fails to decode is dropped rather than failing the whole blob,
// because one broken rule must not block the rest of the form. Hard errors
// are reserved for resource-limit violations and unknown future versions.
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/logic"
	"github.com/fieldworks/formlogic/internal/types"
)

// SchemaVersion is the settings format this build reads and writes.
// Version 0 (field absent) is the legacy unversioned format and decodes
// identically.
const SchemaVersion = 1

// FormSettings is the decoded logic-and-automation portion of a form's
// settings object.
type FormSettings struct {
	SchemaVersion int
	Rules         []logic.Rule
	Automations   []automation.Automation
}

type wireSettings struct {
	SchemaVersion int               `json:"schema_version,omitempty"`
	LogicRules    []json.RawMessage `json:"logic_rules"`
	Automations   []json.RawMessage `json:"automations"`
}

type wireCondition struct {
	FieldID          string `json:"fieldId"`
	Operator         string `json:"operator"`
	Value            any    `json:"value"`
	CaseInsensitive  bool   `json:"caseInsensitive,omitempty"`
	CompareWithField bool   `json:"compareWithField,omitempty"`
}

type wireAction struct {
	Type    string   `json:"type"`
	Targets []string `json:"targets,omitempty"`
	Target  string   `json:"target,omitempty"`
	Value   any      `json:"value,omitempty"`
}

type wireRule struct {
	ID             string          `json:"id"`
	Name           string          `json:"name,omitempty"`
	Enabled        bool            `json:"enabled"`
	ConditionLogic string          `json:"conditionLogic,omitempty"`
	Conditions     []wireCondition `json:"conditions"`
	Actions        []wireAction    `json:"actions"`
	ElseEnabled    bool            `json:"elseEnabled,omitempty"`
	ElseActions    []wireAction    `json:"elseActions,omitempty"`
}

type wireAutomation struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Enabled     bool              `json:"enabled"`
	Trigger     string            `json:"trigger"`
	Action      string            `json:"action"`
	Destination string            `json:"destination"`
	Config      map[string]string `json:"config,omitempty"`
}

// Decode parses a settings blob into evaluator-ready rules and
// automations.
func Decode(raw []byte) (*FormSettings, error) {
	var wire wireSettings
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if wire.SchemaVersion > SchemaVersion {
		return nil, types.ErrUnsupportedSchemaVersion
	}
	if len(wire.LogicRules) > types.MaxRulesPerForm {
		return nil, types.ErrTooManyRules
	}
	if len(wire.Automations) > types.MaxAutomationsPerForm {
		return nil, types.ErrTooManyAutomations
	}

	out := &FormSettings{SchemaVersion: SchemaVersion}

	for _, entry := range wire.LogicRules {
		var wr wireRule
		if err := json.Unmarshal(entry, &wr); err != nil {
			// Broken entry: drop it, keep the rest of the rule set.
			continue
		}
		rule, err := decodeRule(wr)
		if err != nil {
			return nil, err
		}
		out.Rules = append(out.Rules, rule)
	}

	for _, entry := range wire.Automations {
		var wa wireAutomation
		if err := json.Unmarshal(entry, &wa); err != nil {
			continue
		}
		out.Automations = append(out.Automations, automation.Automation{
			ID:          types.AutomationID(wa.ID),
			Name:        wa.Name,
			Enabled:     wa.Enabled,
			Trigger:     automation.Trigger(wa.Trigger),
			Action:      automation.EffectKind(wa.Action),
			Destination: wa.Destination,
			Config:      wa.Config,
		})
	}

	return out, nil
}

// decodeRule converts one wire rule, enforcing resource limits.
func decodeRule(wr wireRule) (logic.Rule, error) {
	if len(wr.Conditions) > types.MaxConditionsPerRule {
		return logic.Rule{}, types.ErrTooManyConditions
	}
	if len(wr.Actions) > types.MaxActionsPerRule || len(wr.ElseActions) > types.MaxActionsPerRule {
		return logic.Rule{}, types.ErrTooManyActions
	}

	rule := logic.Rule{
		ID:             types.RuleID(wr.ID),
		Name:           wr.Name,
		Enabled:        wr.Enabled,
		ConditionLogic: logic.ConditionLogic(wr.ConditionLogic),
		ElseEnabled:    wr.ElseEnabled,
	}
	if rule.ConditionLogic != logic.LogicAny {
		rule.ConditionLogic = logic.LogicAll
	}

	for _, wc := range wr.Conditions {
		rule.Conditions = append(rule.Conditions, logic.Condition{
			FieldID:          types.FieldID(wc.FieldID),
			Operator:         logic.Operator(wc.Operator),
			Value:            wc.Value,
			CaseInsensitive:  wc.CaseInsensitive,
			CompareWithField: wc.CompareWithField,
		})
	}

	var err error
	if rule.Actions, err = decodeActions(wr.Actions); err != nil {
		return logic.Rule{}, err
	}
	if rule.ElseActions, err = decodeActions(wr.ElseActions); err != nil {
		return logic.Rule{}, err
	}
	return rule, nil
}

// decodeActions converts duck-typed wire actions into tagged variants.
// Unknown action types are dropped. The legacy single-target aliases
// hide_field/show_field (target, not targets) observed in older persisted
// forms map onto the set-based variants.
func decodeActions(wire []wireAction) ([]logic.Action, error) {
	var actions []logic.Action
	for _, wa := range wire {
		targets, err := actionTargets(wa)
		if err != nil {
			return nil, err
		}
		switch wa.Type {
		case "show_fields", "show_field":
			actions = append(actions, logic.ShowFields{Targets: targets})
		case "hide_fields", "hide_field":
			actions = append(actions, logic.HideFields{Targets: targets})
		case "require_fields":
			actions = append(actions, logic.RequireFields{Targets: targets})
		case "unrequire_fields":
			actions = append(actions, logic.UnrequireFields{Targets: targets})
		case "set_value":
			actions = append(actions, logic.SetValue{
				Target: types.FieldID(wa.Target),
				Value:  wa.Value,
			})
		case "skip_to_page":
			actions = append(actions, logic.SkipToPage{
				Page: types.PageID(stringValue(wa.Value)),
			})
		}
	}
	return actions, nil
}

// actionTargets merges the targets array with the legacy single target
// field.
func actionTargets(wa wireAction) ([]types.FieldID, error) {
	if len(wa.Targets) > types.MaxTargetsPerAction {
		return nil, types.ErrTooManyTargets
	}
	targets := make([]types.FieldID, 0, len(wa.Targets)+1)
	for _, t := range wa.Targets {
		if t != "" {
			targets = append(targets, types.FieldID(t))
		}
	}
	if wa.Target != "" && wa.Type != "set_value" {
		targets = append(targets, types.FieldID(wa.Target))
	}
	return targets, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// Encode serializes settings back into the persisted shape, stamping the
// current schema version.
func Encode(s *FormSettings) ([]byte, error) {
	wire := wireSettings{SchemaVersion: SchemaVersion}

	for i := range s.Rules {
		entry, err := json.Marshal(encodeRule(&s.Rules[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule %s: %w", s.Rules[i].ID, err)
		}
		wire.LogicRules = append(wire.LogicRules, entry)
	}
	for i := range s.Automations {
		a := &s.Automations[i]
		entry, err := json.Marshal(wireAutomation{
			ID:          string(a.ID),
			Name:        a.Name,
			Enabled:     a.Enabled,
			Trigger:     string(a.Trigger),
			Action:      string(a.Action),
			Destination: a.Destination,
			Config:      a.Config,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode automation %s: %w", a.ID, err)
		}
		wire.Automations = append(wire.Automations, entry)
	}

	return json.Marshal(wire)
}

func encodeRule(r *logic.Rule) wireRule {
	wr := wireRule{
		ID:             string(r.ID),
		Name:           r.Name,
		Enabled:        r.Enabled,
		ConditionLogic: string(r.ConditionLogic),
		ElseEnabled:    r.ElseEnabled,
		Actions:        encodeActions(r.Actions),
		ElseActions:    encodeActions(r.ElseActions),
	}
	for _, c := range r.Conditions {
		wr.Conditions = append(wr.Conditions, wireCondition{
			FieldID:          string(c.FieldID),
			Operator:         string(c.Operator),
			Value:            c.Value,
			CaseInsensitive:  c.CaseInsensitive,
			CompareWithField: c.CompareWithField,
		})
	}
	return wr
}

func encodeActions(actions []logic.Action) []wireAction {
	var wire []wireAction
	for _, action := range actions {
		switch a := action.(type) {
		case logic.ShowFields:
			wire = append(wire, wireAction{Type: "show_fields", Targets: fieldIDStrings(a.Targets)})
		case logic.HideFields:
			wire = append(wire, wireAction{Type: "hide_fields", Targets: fieldIDStrings(a.Targets)})
		case logic.RequireFields:
			wire = append(wire, wireAction{Type: "require_fields", Targets: fieldIDStrings(a.Targets)})
		case logic.UnrequireFields:
			wire = append(wire, wireAction{Type: "unrequire_fields", Targets: fieldIDStrings(a.Targets)})
		case logic.SetValue:
			wire = append(wire, wireAction{Type: "set_value", Target: string(a.Target), Value: a.Value})
		case logic.SkipToPage:
			wire = append(wire, wireAction{Type: "skip_to_page", Value: string(a.Page)})
		}
	}
	return wire
}

func fieldIDStrings(ids []types.FieldID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
