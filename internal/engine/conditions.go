// internal/engine/conditions.go
package engine

import (
	"time"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Condition-set combination.
 *
 * Folds an ordered condition list into a single boolean. Conditions tagged
 * with logicalOperator OR accumulate into an OR group; everything else
 * accumulates into an AND chain.
 *
 * COMPATIBILITY QUIRK, preserved on purpose: when at least one OR-tagged
 * condition is present the final result is the OR accumulator alone. The
 * AND chain is still evaluated but its result is discarded, so
 * "A AND (B OR C)" cannot be expressed by mixing an untagged A with
 * OR-tagged B and C - A is silently ignored. This matches the observable
 * behavior rule authors depend on today. Do not "fix" the precedence here
 * without a coordinated change to existing rule sets.
 *
 * Every condition is evaluated even when the outcome is already decided;
 * with never-erroring single-condition evaluation this keeps the combinator
 * a pure fold with no short-circuit ordering concerns.
 */

// EvaluateConditions combines an ordered condition list into one boolean.
// An empty or nil list matches (a rule with no conditions always fires).
func EvaluateConditions(conds []types.Condition, entity, change map[string]any, now time.Time) bool {
	andResult := true
	orResult := false
	sawOr := false

	for _, cond := range conds {
		result := EvaluateCondition(cond, entity, change, now)
		if cond.LogicalOperator == types.LogicalOr {
			sawOr = true
			orResult = orResult || result
		} else {
			andResult = andResult && result
		}
	}

	if sawOr {
		// AND chain evaluated but discarded; see package comment
		return orResult
	}
	return andResult
}
