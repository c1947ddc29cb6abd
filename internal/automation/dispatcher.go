// internal/automation/dispatcher.go
package automation

import (
	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Automation dispatch.
 *
 * Dispatch is synchronous and only decides what to send; delivery belongs
 * to the Sender. Selection: enabled automations bound to the fired
 * trigger, minus anything already in the session fired-set. The fired-set
 * is marked before the request leaves the dispatcher (optimistic marking),
 * which makes delivery at-most-once: a send that later fails is not
 * retried. Moving commitment to after a confirmed send would give
 * at-least-once at the cost of duplicate emails/webhooks on races; this
 * engine deliberately does not.
 *
 * on_partial is exempt from deduplication. A session can partial-save many
 * times and each save is a distinct firing opportunity; on_submit and
 * on_abandon are terminal single-fire events guarded both here and by the
 * session state machine.
 */

// Dispatcher selects matching automations for lifecycle triggers within
// one submission session. Each session owns its own dispatcher (and
// fired-set); dispatchers are not shared across sessions.
type Dispatcher struct {
	automations []Automation
	fired       *FiredSet
}

// NewDispatcher creates a dispatcher over a form's automations with a
// fresh fired-set. Starting a new submission session means building a new
// dispatcher.
func NewDispatcher(automations []Automation) *Dispatcher {
	return NewDispatcherWithFiredSet(automations, NewFiredSet())
}

// NewDispatcherWithFiredSet allows the caller to supply the fired-set,
// e.g. one rehydrated from a persisted session.
func NewDispatcherWithFiredSet(automations []Automation, fired *FiredSet) *Dispatcher {
	if fired == nil {
		fired = NewFiredSet()
	}
	return &Dispatcher{automations: automations, fired: fired}
}

// FiredSet exposes the session's fired-set for persistence.
func (d *Dispatcher) FiredSet() *FiredSet {
	return d.fired
}

// Dispatch returns the prepared effect requests for one lifecycle trigger.
// Template tokens in destination and config render against the current
// submission values. Returned requests are already committed to the
// fired-set (except on_partial); the caller hands them to the Sender.
func (d *Dispatcher) Dispatch(trigger Trigger, values types.Values) []EffectRequest {
	var requests []EffectRequest

	for i := range d.automations {
		a := &d.automations[i]
		if !a.Enabled || a.Trigger != trigger {
			continue
		}
		if trigger != TriggerOnPartial {
			if d.fired.Contains(a.ID) {
				continue
			}
			d.fired.Mark(a.ID)
		}
		requests = append(requests, EffectRequest{
			AutomationID: a.ID,
			Action:       a.Action,
			Destination:  RenderTemplate(a.Destination, values),
			Config:       renderConfig(a.Config, values),
		})
	}

	return requests
}

// renderConfig renders template tokens in every config value. Keys are
// authored setting names and pass through untouched.
func renderConfig(config map[string]string, values types.Values) map[string]string {
	if len(config) == 0 {
		return nil
	}
	rendered := make(map[string]string, len(config))
	for k, v := range config {
		rendered[k] = RenderTemplate(v, values)
	}
	return rendered
}
