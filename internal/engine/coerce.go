// internal/engine/coerce.go
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

/*
 * Loose value coercion for condition evaluation.
 *
 * Entity snapshots are heterogeneous (Deal vs Lead vs Person have different
 * shapes) and arrive as JSON-decoded map[string]any, so operators compare
 * through a small coercion layer instead of assuming types:
 *
 *   - stringify: canonical string form (numbers render without exponent
 *     where possible, booleans as true/false)
 *   - toNumber: numeric form for ordering operators; strings are trimmed,
 *     empty/whitespace-only strings are not numbers
 *   - looseEqual: string-form equality with a numeric fallback so
 *     amount=1000 equals value "1000" and "1e3" equals 1000
 *   - toTime: timestamp form for the age operators
 *
 * nil (absent field) never coerces: stringify/toNumber/toTime all report
 * failure and each operator decides its own nil behavior.
 */

// stringify converts a snapshot value to its canonical string form.
// Returns false for nil values.
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case bool:
		if s {
			return "true", true
		}
		return "false", true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int32:
		return strconv.FormatInt(int64(s), 10), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case time.Time:
		return s.Format(time.RFC3339), true
	default:
		return fmt.Sprintf("%v", s), true
	}
}

// toNumber converts a snapshot value to float64 for numeric comparison.
// Accepts numeric types and numeric strings. Whitespace is trimmed;
// empty/whitespace-only strings are not valid numbers.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		n = strings.TrimSpace(n)
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// looseEqual compares a snapshot value against a condition value string.
// String forms are compared first; if both sides parse as numbers the
// numeric forms are compared too, so "1e3" matches a field holding 1000.
// nil never equals anything, including the empty string.
func looseEqual(v any, value string) bool {
	s, ok := stringify(v)
	if !ok {
		return false
	}
	if s == value {
		return true
	}
	if fv, ok := toNumber(v); ok {
		if cv, ok := toNumber(value); ok {
			return fv == cv
		}
	}
	return false
}

// Timestamp layouts accepted for age comparisons, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime converts a snapshot value to a timestamp.
// Accepts time.Time, RFC3339-style and date strings, and numeric epoch
// milliseconds (the form JSON-decoded snapshots carry).
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		if ms, ok := toNumber(v); ok {
			return time.UnixMilli(int64(ms)), true
		}
		return time.Time{}, false
	}
}

// falsy reports whether a value counts as absent for the age operators:
// nil, empty string, zero number, false.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	default:
		if n, ok := toNumber(v); ok {
			return n == 0
		}
		return false
	}
}
