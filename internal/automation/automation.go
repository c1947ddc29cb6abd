// internal/automation/automation.go

// Package automation selects and prepares external side effects for a
// submission session: which enabled automations match a lifecycle trigger,
// at-most-once deduplication against the session's fired-set, and template
// token rendering. Actually sending (webhook HTTP call, mail service, CRM
// client) belongs to a Sender collaborator and is decoupled from
// field-state derivation entirely.
package automation

import (
	"context"

	"github.com/fieldworks/formlogic/internal/types"
)

// Trigger is a submission lifecycle event an automation can bind to.
type Trigger string

const (
	TriggerOnSubmit      Trigger = "on_submit"
	TriggerOnPartial     Trigger = "on_partial"
	TriggerOnAbandon     Trigger = "on_abandon"
	TriggerOnFieldChange Trigger = "on_field_change"
)

// Known reports whether t is a recognized lifecycle trigger.
func (t Trigger) Known() bool {
	switch t {
	case TriggerOnSubmit, TriggerOnPartial, TriggerOnAbandon, TriggerOnFieldChange:
		return true
	}
	return false
}

// EffectKind is the external action an automation performs.
type EffectKind string

const (
	EffectSendEmail  EffectKind = "send_email"
	EffectSendSMS    EffectKind = "send_sms"
	EffectWebhook    EffectKind = "webhook"
	EffectTagContact EffectKind = "tag_contact"
	EffectUpdateCRM  EffectKind = "update_crm"
)

// Automation binds a lifecycle trigger to an external effect. Authored in
// the form builder, persisted in settings.automations, read-only here.
type Automation struct {
	ID          types.AutomationID
	Name        string
	Enabled     bool
	Trigger     Trigger
	Action      EffectKind
	Destination string
	Config      map[string]string
}

// EffectRequest is one prepared effect for the host transport to deliver.
// Destination and Config have template tokens already rendered against the
// submission values at dispatch time.
type EffectRequest struct {
	AutomationID types.AutomationID
	Action       EffectKind
	Destination  string
	Config       map[string]string
}

// Sender delivers prepared effects. Implementations may be slow, retry, or
// fail independently; dispatch never blocks on them. A failed send is not
// retried by the engine: the automation id is committed to the fired-set
// before hand-off, trading duplicate sends for at-most-once delivery.
type Sender interface {
	Send(ctx context.Context, req EffectRequest) error
}
