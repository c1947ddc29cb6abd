// internal/logic/action.go
package logic

import (
	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Action variants.
 *
 * The persisted form settings carry actions as duck-typed JSON objects
 * ({type, targets?, target?, value?}). Internally each action type is its
 * own variant carrying only the fields it uses, so the applicator needs no
 * defensive nil-checks at call sites. Decoding from the persisted shape
 * lives in internal/settings.
 */

// Action is a mutation to derived field state applied when a rule branch
// runs. Implementations: ShowFields, HideFields, RequireFields,
// UnrequireFields, SetValue, SkipToPage.
type Action interface {
	isAction()
}

// ShowFields makes a set of fields visible.
type ShowFields struct {
	Targets []types.FieldID
}

// HideFields makes a set of fields hidden.
type HideFields struct {
	Targets []types.FieldID
}

// RequireFields marks a set of fields required.
type RequireFields struct {
	Targets []types.FieldID
}

// UnrequireFields clears the required flag on a set of fields.
type UnrequireFields struct {
	Targets []types.FieldID
}

// SetValue writes a literal into a single field's value override. The host
// is responsible for propagating the override back into its value store;
// the engine never mutates the store itself.
type SetValue struct {
	Target types.FieldID
	Value  any
}

// SkipToPage routes the respondent to a page/step.
type SkipToPage struct {
	Page types.PageID
}

func (ShowFields) isAction()      {}
func (HideFields) isAction()      {}
func (RequireFields) isAction()   {}
func (UnrequireFields) isAction() {}
func (SetValue) isAction()        {}
func (SkipToPage) isAction()      {}
