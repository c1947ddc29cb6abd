// internal/logic/state.go
package logic

import (
	"github.com/fieldworks/formlogic/internal/types"
)

// DerivedFieldState is the full visibility/required/value/navigation
// snapshot produced by one evaluation pass. It is rebuilt from scratch on
// every pass, never mutated incrementally, so a newer pass always
// supersedes an older one.
type DerivedFieldState struct {
	Visibility     map[types.FieldID]bool
	Required       map[types.FieldID]bool
	ValueOverrides map[types.FieldID]any
	NavigateTo     *types.PageID
}

// NewDerivedFieldState returns the default state: every schema field
// visible, required per the schema's static flag, no overrides, no
// navigation. This is also the state the host falls back to when no rules
// exist, so a broken rule set degrades to a fully usable form.
func NewDerivedFieldState(schema *types.Schema) DerivedFieldState {
	state := DerivedFieldState{
		Visibility:     make(map[types.FieldID]bool),
		Required:       make(map[types.FieldID]bool),
		ValueOverrides: make(map[types.FieldID]any),
	}
	if schema != nil {
		for _, f := range schema.Fields {
			state.Visibility[f.ID] = true
			state.Required[f.ID] = f.Required
		}
	}
	return state
}

// Visible reports field visibility, defaulting to true for fields no rule
// ever touched and that a nil schema could not prefill.
func (s *DerivedFieldState) Visible(id types.FieldID) bool {
	v, ok := s.Visibility[id]
	if !ok {
		return true
	}
	return v
}

// IsRequired reports a field's derived required flag.
func (s *DerivedFieldState) IsRequired(id types.FieldID) bool {
	return s.Required[id]
}
