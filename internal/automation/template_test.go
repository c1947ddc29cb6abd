// internal/automation/template_test.go
package automation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fieldworks/formlogic/internal/types"
)

func TestRenderTemplate(t *testing.T) {
	values := types.Values{
		"name":    "Alice",
		"email":   "alice@example.com",
		"guests":  float64(3),
		"topics":  []any{"pricing", "support"},
		"confirm": true,
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "curly token",
			in:   "Hello {{name}}",
			want: "Hello Alice",
		},
		{
			name: "bracket token",
			in:   "Hello [name]",
			want: "Hello Alice",
		},
		{
			name: "mixed styles",
			in:   "{{name}} <[email]>",
			want: "Alice <alice@example.com>",
		},
		{
			name: "curly token with inner whitespace",
			in:   "Hello {{ name }}",
			want: "Hello Alice",
		},
		{
			name: "unresolved token left literal",
			in:   "Hello {{nickname}} and [title]",
			want: "Hello {{nickname}} and [title]",
		},
		{
			name: "number renders without decimals",
			in:   "Guests: {{guests}}",
			want: "Guests: 3",
		},
		{
			name: "multi-value joins with comma",
			in:   "Topics: {{topics}}",
			want: "Topics: pricing, support",
		},
		{
			name: "boolean",
			in:   "Confirmed: [confirm]",
			want: "Confirmed: true",
		},
		{
			name: "no tokens passes through",
			in:   "plain text",
			want: "plain text",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderTemplate(tt.in, values)
			if got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderTemplate_ExpansionCap(t *testing.T) {
	big := strings.Repeat("x", types.MaxTemplateExpansion)
	values := types.Values{"essay": big}

	out := RenderTemplate("{{essay}}{{essay}}", values)
	if len(out) > types.MaxTemplateExpansion {
		t.Errorf("rendered length %d exceeds cap %d", len(out), types.MaxTemplateExpansion)
	}
}

func TestRenderTemplate_ExpansionCapRuneBoundary(t *testing.T) {
	// Three-byte runes never align with the cap, so a byte-boundary cut
	// would split one.
	big := strings.Repeat("€", types.MaxTemplateExpansion/3+100)
	values := types.Values{"essay": big}

	out := RenderTemplate("{{essay}}", values)
	if len(out) > types.MaxTemplateExpansion {
		t.Errorf("rendered length %d exceeds cap %d", len(out), types.MaxTemplateExpansion)
	}
	if !utf8.ValidString(out) {
		t.Error("truncation split a multi-byte rune")
	}
}
