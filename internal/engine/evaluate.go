// internal/engine/evaluate.go
package engine

import (
	"strings"
	"time"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Single-condition evaluation.
 *
 * Applies one operator to one entity field. The field value is read fresh
 * from the snapshot on every call; a missing field reads as nil and each
 * operator defines its own nil behavior rather than erroring.
 *
 * Failure semantics: evaluation never panics and never returns an error.
 * Unknown operators, unparsable numbers and absent change data all resolve
 * to false. The engine runs as an add-on to the primary CRM write path, so
 * one malformed condition must not abort sibling rules or the enclosing
 * entity mutation.
 *
 * Operator families:
 *   - equality: EQUALS/NOT_EQUALS compare canonical string forms
 *   - text: CONTAINS/STARTS_WITH/ENDS_WITH, case-insensitive
 *   - ordering: GREATER_THAN/LESS_THAN/GREATER_EQUAL/LESS_EQUAL, numeric only
 *   - null checks: IS_NULL/IS_NOT_NULL (0 and false are not null)
 *   - membership: IN/NOT_IN over comma-separated, whitespace-trimmed tokens
 *   - age: OLDER_THAN/NEWER_THAN against an interval expression
 *   - change detection: CHANGED_FROM/CHANGED_TO against original_<field>
 *     values; false when no change data exists (create events)
 */

// EvaluateCondition evaluates one condition against an entity snapshot.
// change may be nil; now supplies the reference time for age operators.
func EvaluateCondition(cond types.Condition, entity, change map[string]any, now time.Time) bool {
	var field any
	if entity != nil {
		field = entity[cond.Field]
	}

	switch cond.Operator {
	case types.OpEquals:
		return equalsString(field, cond.ValueString())
	case types.OpNotEquals:
		return !equalsString(field, cond.ValueString())

	case types.OpContains:
		return matchText(field, cond.ValueString(), strings.Contains)
	case types.OpStartsWith:
		return matchText(field, cond.ValueString(), strings.HasPrefix)
	case types.OpEndsWith:
		return matchText(field, cond.ValueString(), strings.HasSuffix)

	case types.OpGreaterThan:
		return compareNumeric(field, cond.ValueString(), func(a, b float64) bool { return a > b })
	case types.OpLessThan:
		return compareNumeric(field, cond.ValueString(), func(a, b float64) bool { return a < b })
	case types.OpGreaterEqual:
		return compareNumeric(field, cond.ValueString(), func(a, b float64) bool { return a >= b })
	case types.OpLessEqual:
		return compareNumeric(field, cond.ValueString(), func(a, b float64) bool { return a <= b })

	case types.OpIsNull:
		return field == nil
	case types.OpIsNotNull:
		return field != nil

	case types.OpIn:
		return inList(field, cond.ValueString())
	case types.OpNotIn:
		return !inList(field, cond.ValueString())

	case types.OpOlderThan:
		return compareAge(field, cond.ValueString(), now, func(age, interval time.Duration) bool {
			return age > interval
		})
	case types.OpNewerThan:
		return compareAge(field, cond.ValueString(), now, func(age, interval time.Duration) bool {
			return age < interval
		})

	case types.OpChangedFrom:
		return changedFrom(cond.Field, field, cond.ValueString(), change)
	case types.OpChangedTo:
		return changedTo(cond.Field, field, cond.ValueString(), change)

	default:
		// Unknown operator from external configuration: non-match, not an error
		return false
	}
}

// equalsString compares the canonical string forms of both sides, so a
// numeric field matches the string encoding of the same number.
// nil equals nothing, including the empty string.
func equalsString(field any, value string) bool {
	s, ok := stringify(field)
	return ok && s == value
}

// matchText applies a case-insensitive substring/prefix/suffix predicate.
func matchText(field any, value string, match func(s, substr string) bool) bool {
	s, ok := stringify(field)
	if !ok {
		return false
	}
	return match(strings.ToLower(s), strings.ToLower(value))
}

// compareNumeric orders the numeric forms of both sides.
// Either side failing to parse is a non-match.
func compareNumeric(field any, value string, cmp func(a, b float64) bool) bool {
	fv, ok := toNumber(field)
	if !ok {
		return false
	}
	cv, ok := toNumber(value)
	if !ok {
		return false
	}
	return cmp(fv, cv)
}

// inList splits value on commas, trims each token, and tests membership of
// the field's string form.
func inList(field any, value string) bool {
	s, ok := stringify(field)
	if !ok {
		return false
	}
	for _, token := range strings.Split(value, ",") {
		if strings.TrimSpace(token) == s {
			return true
		}
	}
	return false
}

// compareAge parses the field as a timestamp and its condition value as an
// interval expression, then orders the elapsed time against the interval.
// Falsy field values (nil, "", 0, false) and unparsable timestamps are
// non-matches.
func compareAge(field any, value string, now time.Time, cmp func(age, interval time.Duration) bool) bool {
	if falsy(field) {
		return false
	}
	ts, ok := toTime(field)
	if !ok {
		return false
	}
	return cmp(now.Sub(ts), ParseInterval(value))
}

// changedFrom matches when the prior value equals the condition value and
// the current value no longer does. Requires change data; create events
// carry none and never match.
func changedFrom(name string, field any, value string, change map[string]any) bool {
	if change == nil {
		return false
	}
	original := change[types.ChangeDataKeyPrefix+name]
	return looseEqual(original, value) && !looseEqual(field, value)
}

// changedTo matches when the current value equals the condition value and
// the prior value did not. A field absent from the change data counts as
// "was something else", so transitions from unset still match.
func changedTo(name string, field any, value string, change map[string]any) bool {
	if change == nil {
		return false
	}
	original := change[types.ChangeDataKeyPrefix+name]
	return looseEqual(field, value) && !looseEqual(original, value)
}
