// internal/automation/template.go
package automation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fieldworks/formlogic/internal/types"
)

/*
 * Template token rendering.
 *
 * Automation destinations and config strings may embed field tokens in two
 * authored styles: {{field_id}} and [field_id]. At dispatch time each
 * token resolves to the field's current value. Tokens naming a field with
 * no current value stay literal text, not blanked: an unresolved token is
 * visible in the delivered email/webhook, which is the wanted authoring
 * feedback, while blanking would silently eat content.
 */

var (
	curlyToken   = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)
	bracketToken = regexp.MustCompile(`\[([A-Za-z0-9_.-]+)\]`)
)

// RenderTemplate substitutes field tokens in s with current submission
// values. Output is capped at MaxTemplateExpansion.
func RenderTemplate(s string, values types.Values) string {
	if s == "" || (!strings.Contains(s, "{{") && !strings.Contains(s, "[")) {
		return s
	}
	out := replaceTokens(s, curlyToken, values)
	out = replaceTokens(out, bracketToken, values)
	if len(out) > types.MaxTemplateExpansion {
		// Back off to a rune boundary; the cap must not split a
		// multi-byte character in a rendered value.
		cut := types.MaxTemplateExpansion
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// replaceTokens substitutes one token style, leaving unresolved tokens
// literal.
func replaceTokens(s string, re *regexp.Regexp, values types.Values) string {
	return re.ReplaceAllStringFunc(s, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		v, ok := values[types.FieldID(sub[1])]
		if !ok || v == nil {
			return match
		}
		return stringifyValue(v)
	})
}

// stringifyValue renders a field value for inclusion in text. Multi-value
// answers join with ", " matching the rendering layer's display.
func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringifyValue(e))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
