// Package types provides domain models shared across formlogic components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so the evaluation core stays embeddable. ID utilities in ids.go
// import uuid but are isolated for selective inclusion.
//
// Separation from wire format: rules and automations are persisted as plain
// JSON inside a form's settings object. Decoding of that legacy shape lives
// in internal/settings; this package contains the hand-written types the
// engine evaluates.
package types

// FieldID identifies a form field. Authored by the form builder, opaque to
// the engine; the engine never inspects field contents beyond identifier
// and current value.
type FieldID string

// PageID identifies a page/step in a multi-page form. Used by skip_to_page
// routing.
type PageID string

// FormID represents a UUIDv7 form identifier.
// String alias enables type safety while maintaining JSON string serialization.
type FormID string

// RuleID represents a UUIDv7 logic rule identifier.
type RuleID string

// AutomationID represents a UUIDv7 automation identifier.
type AutomationID string

// DeliveryID identifies one automation delivery log entry.
type DeliveryID string

// SubmissionID represents a UUIDv7 submission session identifier.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type SubmissionID string

// Values is the current (possibly partial) submission: field identifier to
// current value. Supplied by the host; the engine only reads it. Values are
// whatever the host's JSON decoding produced (string, float64, bool, []any).
type Values map[FieldID]any

// FieldDef describes one field of a form as the engine sees it: identifier,
// ordinal position in the authored field sequence, and the schema's static
// required flag. Everything else about a field belongs to the rendering
// layer.
type FieldDef struct {
	ID       FieldID
	Ordinal  int
	Required bool
	Page     PageID
}

// Schema is the form's field sequence in authored order. The engine trusts
// the host for field contents and typing; it only needs identity, ordering
// and the static required defaults.
type Schema struct {
	Fields []FieldDef
}

// Has reports whether a field identifier exists in the schema.
func (s *Schema) Has(id FieldID) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Ordinal returns the position of a field in the authored sequence, or -1
// when the field does not exist.
func (s *Schema) Ordinal(id FieldID) int {
	if s == nil {
		return -1
	}
	for _, f := range s.Fields {
		if f.ID == id {
			return f.Ordinal
		}
	}
	return -1
}

// Resource limits enforced at settings decode time to keep per-keystroke
// evaluation cheap. Evaluation is O(rules x conditions) with no incremental
// update, so these bound the cost of a full pass.
const (
	// MaxRulesPerForm bounds the logic_rules array. Forms are authored by
	// hand; 200 is far beyond any observed real form.
	MaxRulesPerForm = 200

	// MaxConditionsPerRule bounds one rule's condition list.
	MaxConditionsPerRule = 32

	// MaxActionsPerRule bounds one branch's action list.
	MaxActionsPerRule = 32

	// MaxTargetsPerAction bounds the target set of a show/hide/require
	// action.
	MaxTargetsPerAction = 128

	// MaxAutomationsPerForm bounds the automations array.
	MaxAutomationsPerForm = 100

	// MaxTemplateExpansion caps the rendered size of one automation config
	// string after token substitution, preventing unbounded growth from
	// large field values.
	MaxTemplateExpansion = 64 * 1024
)
