package api

import (
	"encoding/json"
	"time"

	"github.com/fieldworks/formlogic/internal/logic"
	"github.com/fieldworks/formlogic/internal/types"
)

// formRow mirrors the forms table.
type formRow struct {
	FormID       string    `db:"form_id"`
	Name         string    `db:"name"`
	SchemaJSON   []byte    `db:"schema_json"`
	SettingsJSON []byte    `db:"settings_json"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// submissionRow mirrors the submissions table. Values and the fired-set
// travel as JSON blobs so a session can be rebuilt on any process.
type submissionRow struct {
	SubmissionID string    `db:"submission_id"`
	FormID       string    `db:"form_id"`
	Status       string    `db:"status"`
	ValuesJSON   []byte    `db:"values_json"`
	FiredJSON    []byte    `db:"fired_json"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// deliveryRow mirrors the automation_deliveries table.
type deliveryRow struct {
	DeliveryID   string    `db:"delivery_id"`
	SubmissionID string    `db:"submission_id"`
	AutomationID string    `db:"automation_id"`
	Action       string    `db:"action"`
	Destination  string    `db:"destination"`
	TriggerEvent string    `db:"trigger_event"`
	Status       string    `db:"status"`
	Detail       string    `db:"detail"`
	CreatedAt    time.Time `db:"created_at"`
}

// createFormRequest is the POST /v1/forms body.
type createFormRequest struct {
	Name     string          `json:"name"`
	Schema   json.RawMessage `json:"schema,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// formResponse is the wire shape of a form.
type formResponse struct {
	FormID    string          `json:"formId"`
	Name      string          `json:"name"`
	Schema    json.RawMessage `json:"schema,omitempty"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// warningResponse is one advisory finding from rule validation.
type warningResponse struct {
	RuleID string `json:"ruleId,omitempty"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// setValuesRequest is the POST /v1/submissions/{id}/values body.
type setValuesRequest struct {
	Values map[string]any `json:"values"`
}

// derivedStateResponse is the wire shape of one evaluation pass. hiddenFields
// and requiredFields carry only the deltas from the schema defaults plus
// every field a rule touched, keyed by field id.
type derivedStateResponse struct {
	Visibility     map[string]bool `json:"visibility"`
	Required       map[string]bool `json:"required"`
	ValueOverrides map[string]any  `json:"valueOverrides,omitempty"`
	NavigateTo     string          `json:"navigateTo,omitempty"`
}

// submissionResponse is the wire shape of a submission and, when the
// request triggered an evaluation pass, its derived state. StartedAt
// comes from the timestamp embedded in the UUIDv7 submission id.
type submissionResponse struct {
	SubmissionID string                `json:"submissionId"`
	FormID       string                `json:"formId"`
	Status       string                `json:"status"`
	StartedAt    time.Time             `json:"startedAt"`
	Values       map[string]any        `json:"values"`
	Derived      *derivedStateResponse `json:"derived,omitempty"`
}

// deliveryResponse is the wire shape of one automation delivery log row.
type deliveryResponse struct {
	DeliveryID   string    `json:"deliveryId"`
	AutomationID string    `json:"automationId"`
	Action       string    `json:"action"`
	Destination  string    `json:"destination,omitempty"`
	Trigger      string    `json:"trigger"`
	Status       string    `json:"status"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toDerivedStateResponse(state logic.DerivedFieldState) *derivedStateResponse {
	resp := &derivedStateResponse{
		Visibility: make(map[string]bool, len(state.Visibility)),
		Required:   make(map[string]bool, len(state.Required)),
	}
	for id, visible := range state.Visibility {
		resp.Visibility[string(id)] = visible
	}
	for id, required := range state.Required {
		resp.Required[string(id)] = required
	}
	if len(state.ValueOverrides) > 0 {
		resp.ValueOverrides = make(map[string]any, len(state.ValueOverrides))
		for id, v := range state.ValueOverrides {
			resp.ValueOverrides[string(id)] = v
		}
	}
	if state.NavigateTo != nil {
		resp.NavigateTo = string(*state.NavigateTo)
	}
	return resp
}

func toValuesMap(values types.Values) map[string]any {
	out := make(map[string]any, len(values))
	for id, v := range values {
		out[string(id)] = v
	}
	return out
}

func fromValuesMap(values map[string]any) types.Values {
	out := make(types.Values, len(values))
	for id, v := range values {
		out[types.FieldID(id)] = v
	}
	return out
}
