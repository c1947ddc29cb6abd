package settings

import (
	"testing"

	"github.com/fieldworks/formlogic/internal/types"
)

func TestDecodeSchema(t *testing.T) {
	raw := []byte(`{
		"fields": [
			{"id": "name", "ordinal": 0, "required": true, "label": "Full name", "widget": "text"},
			{"id": "email", "ordinal": 1, "page": "p2"},
			{"id": "", "ordinal": 2},
			{"id": "notes", "ordinal": 5}
		]
	}`)

	schema, err := DecodeSchema(raw)
	if err != nil {
		t.Fatalf("DecodeSchema failed: %v", err)
	}
	if len(schema.Fields) != 3 {
		t.Fatalf("got %d fields, want 3 (blank id dropped)", len(schema.Fields))
	}
	if !schema.Fields[0].Required {
		t.Error("name should keep its required flag")
	}
	if schema.Fields[1].Page != types.PageID("p2") {
		t.Errorf("email page = %q, want p2", schema.Fields[1].Page)
	}
	if got := schema.Ordinal("notes"); got != 5 {
		t.Errorf("notes ordinal = %d, want 5", got)
	}
	if schema.Has("") {
		t.Error("blank id should not survive decoding")
	}
}

func TestDecodeSchemaLegacyOrdinals(t *testing.T) {
	// Forms persisted before explicit ordering carry no ordinal at all;
	// array position is the ordering contract.
	raw := []byte(`{
		"fields": [
			{"id": "first"},
			{"id": "second"},
			{"id": "third"}
		]
	}`)

	schema, err := DecodeSchema(raw)
	if err != nil {
		t.Fatalf("DecodeSchema failed: %v", err)
	}
	for i, want := range []types.FieldID{"first", "second", "third"} {
		if got := schema.Ordinal(want); got != i {
			t.Errorf("%s ordinal = %d, want %d", want, got, i)
		}
	}
}

func TestDecodeSchemaMalformed(t *testing.T) {
	if _, err := DecodeSchema([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed schema blob")
	}
}

func TestEncodeSchemaRoundTrip(t *testing.T) {
	in := &types.Schema{Fields: []types.FieldDef{
		{ID: "a", Ordinal: 0, Required: true},
		{ID: "b", Ordinal: 3, Page: "p2"},
	}}

	raw, err := EncodeSchema(in)
	if err != nil {
		t.Fatalf("EncodeSchema failed: %v", err)
	}
	out, err := DecodeSchema(raw)
	if err != nil {
		t.Fatalf("DecodeSchema failed: %v", err)
	}
	if len(out.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(out.Fields))
	}
	if out.Fields[1].Ordinal != 3 || out.Fields[1].Page != "p2" {
		t.Errorf("field b round-tripped as %+v", out.Fields[1])
	}
}
