// internal/settings/schema.go
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/fieldworks/formlogic/internal/types"
)

// wireFieldDef is a form field as the builder persists it. The engine
// keeps identifier, position, static required flag and page; everything
// else (label, widget type, options) belongs to the rendering layer and
// is ignored here.
type wireFieldDef struct {
	ID       string `json:"id"`
	Ordinal  int    `json:"ordinal"`
	Required bool   `json:"required,omitempty"`
	Page     string `json:"page,omitempty"`
}

type wireSchema struct {
	Fields []wireFieldDef `json:"fields"`
}

// DecodeSchema parses the persisted field list into the engine's schema
// view. Entries without an id are dropped. When ordinals are absent
// (legacy forms persisted before explicit ordering), array position is
// the ordinal.
func DecodeSchema(raw []byte) (*types.Schema, error) {
	var wire wireSchema
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode form schema: %w", err)
	}

	schema := &types.Schema{}
	explicit := false
	for _, f := range wire.Fields {
		if f.Ordinal != 0 {
			explicit = true
			break
		}
	}
	for i, f := range wire.Fields {
		if f.ID == "" {
			continue
		}
		ordinal := f.Ordinal
		if !explicit {
			ordinal = i
		}
		schema.Fields = append(schema.Fields, types.FieldDef{
			ID:       types.FieldID(f.ID),
			Ordinal:  ordinal,
			Required: f.Required,
			Page:     types.PageID(f.Page),
		})
	}
	return schema, nil
}

// EncodeSchema serializes the engine's schema view.
func EncodeSchema(schema *types.Schema) ([]byte, error) {
	wire := wireSchema{}
	for _, f := range schema.Fields {
		wire.Fields = append(wire.Fields, wireFieldDef{
			ID:       string(f.ID),
			Ordinal:  f.Ordinal,
			Required: f.Required,
			Page:     string(f.Page),
		})
	}
	return json.Marshal(wire)
}
