// internal/engine/validate.go
package engine

import (
	"fmt"
	"strings"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Structural rule and context validation.
 *
 * ValidateRule runs before a rule is accepted into the store; findings are
 * human-readable strings shown verbatim by the administration API and the
 * lint command, so the wording here is part of the external contract. All checks
 * run independently - every violation is collected, nothing short-circuits.
 *
 * ValidateContext guards Process against caller bugs. Unlike rule findings
 * (rejected at authoring time) a malformed ProcessingContext blocks
 * processing, because it means the entity-mutation layer built the request
 * wrong.
 *
 * Conditions and actions are reported 1-indexed to match how rule authors
 * see them in the admin UI.
 */

// ValidateRule checks structural well-formedness of a rule definition.
// Returns one finding per violation; an empty slice means the rule is valid.
func ValidateRule(rule *types.BusinessRule) []string {
	var findings []string

	if strings.TrimSpace(rule.Name) == "" {
		findings = append(findings, "Rule name is required")
	}
	if len(rule.Conditions) == 0 {
		findings = append(findings, "At least one condition is required")
	}
	if len(rule.Actions) == 0 {
		findings = append(findings, "At least one action is required")
	}

	if rule.TriggerType == types.TriggerEventBased && len(rule.TriggerEvents) == 0 {
		findings = append(findings, "Event-based rules must specify at least one trigger event")
	}
	if rule.TriggerType == types.TriggerFieldChange && len(rule.TriggerFields) == 0 {
		findings = append(findings, "Field-change rules must specify at least one trigger field")
	}

	for i, cond := range rule.Conditions {
		n := i + 1
		if cond.Field == "" {
			findings = append(findings, fmt.Sprintf("Condition %d: Field is required", n))
		}
		if cond.Operator == "" {
			findings = append(findings, fmt.Sprintf("Condition %d: Operator is required", n))
		}
		// Empty string is a legitimate value (IS_NULL/IS_NOT_NULL ignore it);
		// only an absent value is a violation. The JSON/YAML decoders map an
		// absent "value" key and an explicit null both to HasValue=false via
		// the rule-file loader; API input uses the same convention.
		if !cond.HasValue() {
			findings = append(findings, fmt.Sprintf("Condition %d: Value is required", n))
		}
	}

	for i, action := range rule.Actions {
		n := i + 1
		if action.Type == "" {
			findings = append(findings, fmt.Sprintf("Action %d: Type is required", n))
		}
		if (action.Type == types.ActionNotifyUser || action.Type == types.ActionSendEmail) && action.Target == "" {
			findings = append(findings, fmt.Sprintf("Action %d: Target is required for %s", n, action.Type))
		}
	}

	return findings
}

// ValidateContext collects the missing required fields of a processing
// context. An empty slice means the context is usable.
func ValidateContext(pc *types.ProcessingContext) []string {
	var findings []string

	if pc.EntityType == "" {
		findings = append(findings, "entityType is required")
	}
	if pc.EntityID == "" {
		findings = append(findings, "entityId is required")
	}
	if pc.TriggerEvent == "" {
		findings = append(findings, "triggerEvent is required")
	}
	if pc.EntityData == nil {
		findings = append(findings, "entityData is required")
	}

	return findings
}
