// internal/logic/coerce.go
package logic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*
 * Value coercion for condition evaluation.
 *
 * Host values come straight from JSON decoding of submission data, so the
 * concrete types are string, float64, bool, []any, or nil. Coercion is
 * lenient by design: string operators accept any type and stringify it,
 * because form widget values are text-shaped even when the host stores
 * them as numbers (a "how many guests" input holds float64(3) but the
 * author wrote the rule against "3").
 *
 * Emptiness: nil, "", and empty collections are empty. "0" and 0 are not;
 * an answered numeric field is an answer.
 */

// valueToString coerces any host value to its string form.
// nil becomes "" so missing fields compare like unanswered fields.
// Multi-value answers (checkbox groups) join with a bare comma, the same
// form the submission runtime stores for array answers, so contains-style
// rules authored against "a,b" match.
func valueToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, valueToString(e))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toNumber attempts to coerce a value to a finite float64.
// Accepts numeric types and numeric strings. Whitespace-padded strings
// are trimmed first; empty strings, booleans and collections are not
// numbers. NaN and infinities are rejected so comparisons stay total.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isEmptyValue reports whether a host value counts as unanswered.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
