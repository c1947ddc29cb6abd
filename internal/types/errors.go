package types

import "errors"

// Sentinel errors for formlogic operations.
//
// None of these are raised during rule evaluation itself: a broken rule
// must never block the rest of the rule set or crash the form, so the
// evaluator degrades to non-match instead of erroring. These surface from
// settings decoding, session lifecycle, and storage.
var (
	// ErrTooManyRules indicates logic_rules exceeds MaxRulesPerForm.
	ErrTooManyRules = errors.New("too many logic rules")

	// ErrTooManyConditions indicates a rule exceeds MaxConditionsPerRule.
	ErrTooManyConditions = errors.New("rule has too many conditions")

	// ErrTooManyActions indicates a rule branch exceeds MaxActionsPerRule.
	ErrTooManyActions = errors.New("rule has too many actions")

	// ErrTooManyTargets indicates an action exceeds MaxTargetsPerAction.
	ErrTooManyTargets = errors.New("action has too many targets")

	// ErrTooManyAutomations indicates automations exceeds MaxAutomationsPerForm.
	ErrTooManyAutomations = errors.New("too many automations")

	// ErrUnsupportedSchemaVersion indicates a settings blob written by a
	// newer codec than this build understands.
	ErrUnsupportedSchemaVersion = errors.New("unsupported settings schema version")

	// ErrSessionClosed indicates a lifecycle call on a session already
	// submitted or abandoned.
	ErrSessionClosed = errors.New("submission session already closed")

	// ErrFormNotFound indicates a form identifier with no stored form.
	ErrFormNotFound = errors.New("form not found")

	// ErrSubmissionNotFound indicates a submission identifier with no open
	// or stored session.
	ErrSubmissionNotFound = errors.New("submission not found")
)
