// internal/engine/session.go

// Package engine orchestrates rule evaluation and automation dispatch for
// one submission session. The host feeds value changes and lifecycle
// events in; derived field state and prepared effect requests come out.
// Evaluation is pure, synchronous and from-scratch on every change, so a
// newer pass always supersedes an older one with nothing to cancel.
package engine

import (
	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/logic"
	"github.com/fieldworks/formlogic/internal/types"
)

// Status tracks the session state machine:
// Started -> (field-change)* -> {Submitted | Abandoned}.
type Status string

const (
	StatusStarted   Status = "started"
	StatusSubmitted Status = "submitted"
	StatusAbandoned Status = "abandoned"
)

// Session owns one submission attempt: the form's rules, automations and
// schema (read-only), the current value snapshot, and a dispatcher with
// its own fired-set. Sessions are single-writer; concurrent sessions each
// build their own.
type Session struct {
	id         types.SubmissionID
	schema     *types.Schema
	rules      []logic.Rule
	dispatcher *automation.Dispatcher
	values     types.Values
	status     Status
}

// NewSession starts a submission session with an empty value store and a
// fresh fired-set.
func NewSession(schema *types.Schema, rules []logic.Rule, automations []automation.Automation) *Session {
	return &Session{
		id:         types.NewSubmissionID(),
		schema:     schema,
		rules:      rules,
		dispatcher: automation.NewDispatcher(automations),
		values:     make(types.Values),
		status:     StatusStarted,
	}
}

// RestoreSession rebuilds a session from persisted state, for host
// runtimes that keep sessions in storage between requests. The fired-set
// is rehydrated so at-most-once delivery survives process restarts.
func RestoreSession(id types.SubmissionID, schema *types.Schema, rules []logic.Rule,
	automations []automation.Automation, values types.Values, status Status,
	fired *automation.FiredSet) *Session {
	if values == nil {
		values = make(types.Values)
	}
	if status == "" {
		status = StatusStarted
	}
	return &Session{
		id:         id,
		schema:     schema,
		rules:      rules,
		dispatcher: automation.NewDispatcherWithFiredSet(automations, fired),
		values:     values,
		status:     status,
	}
}

// ID returns the session's submission identifier.
func (s *Session) ID() types.SubmissionID { return s.id }

// Status returns the session's lifecycle state.
func (s *Session) Status() Status { return s.status }

// Values returns a copy of the current value snapshot.
func (s *Session) Values() types.Values {
	out := make(types.Values, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetValue records one field change, re-runs the full rule pass, and
// dispatches on_field_change automations. The returned state is freshly
// derived; value overrides in it are not written back into the store by
// the engine, the host decides whether to propagate them (and calling
// SetValue again for an override re-enters evaluation safely).
func (s *Session) SetValue(id types.FieldID, value any) (logic.DerivedFieldState, []automation.EffectRequest, error) {
	return s.SetValues(types.Values{id: value})
}

// SetValues records a batch of field changes in one pass.
func (s *Session) SetValues(changes types.Values) (logic.DerivedFieldState, []automation.EffectRequest, error) {
	if s.status != StatusStarted {
		return logic.DerivedFieldState{}, nil, types.ErrSessionClosed
	}
	for k, v := range changes {
		s.values[k] = v
	}
	state := s.Evaluate()
	effects := s.dispatcher.Dispatch(automation.TriggerOnFieldChange, s.values)
	return state, effects, nil
}

// Evaluate re-runs the full rule pass against the current snapshot.
// Safe to call at any point in the lifecycle, including after close;
// rendering a submitted form's final state is still a pure read.
func (s *Session) Evaluate() logic.DerivedFieldState {
	return logic.EvaluateRules(s.rules, s.values, s.schema)
}

// PartialSave dispatches on_partial automations. A session can partial-
// save any number of times; each save is a distinct firing opportunity
// exempt from the fired-set.
func (s *Session) PartialSave() ([]automation.EffectRequest, error) {
	if s.status != StatusStarted {
		return nil, types.ErrSessionClosed
	}
	return s.dispatcher.Dispatch(automation.TriggerOnPartial, s.values), nil
}

// Submit closes the session and dispatches on_submit automations.
// Terminal: a second Submit (or Abandon) returns ErrSessionClosed.
func (s *Session) Submit() ([]automation.EffectRequest, error) {
	if s.status != StatusStarted {
		return nil, types.ErrSessionClosed
	}
	s.status = StatusSubmitted
	return s.dispatcher.Dispatch(automation.TriggerOnSubmit, s.values), nil
}

// Abandon closes the session and dispatches on_abandon automations.
func (s *Session) Abandon() ([]automation.EffectRequest, error) {
	if s.status != StatusStarted {
		return nil, types.ErrSessionClosed
	}
	s.status = StatusAbandoned
	return s.dispatcher.Dispatch(automation.TriggerOnAbandon, s.values), nil
}

// FiredSet exposes the session's fired-set for persistence between
// requests when the host runtime is stateless.
func (s *Session) FiredSet() *automation.FiredSet {
	return s.dispatcher.FiredSet()
}
