// Package rulefile loads business rules from YAML or JSON files.
//
// Files are used by the lint and eval commands and for seeding rule
// sets outside the API. A file holds either a document with a top-level
// "rules" list or a single rule object.
package rulefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meridian-crm/rulekit/internal/types"
)

// document is the multi-rule file form.
type document struct {
	Rules []types.BusinessRule `json:"rules" yaml:"rules"`
}

// LoadFile reads and parses a rule file. The format is chosen by
// extension: .json is JSON, everything else is YAML.
func LoadFile(path string) ([]types.BusinessRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML parses rules from YAML bytes.
func ParseYAML(data []byte) ([]types.BusinessRule, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Rules) > 0 {
		return doc.Rules, nil
	}

	var rule types.BusinessRule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	if rule.Name == "" && len(rule.Conditions) == 0 {
		return nil, fmt.Errorf("rule file contains no rules")
	}
	return []types.BusinessRule{rule}, nil
}

// ParseJSON parses rules from JSON bytes.
func ParseJSON(data []byte) ([]types.BusinessRule, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err == nil && len(doc.Rules) > 0 {
		return doc.Rules, nil
	}

	var rule types.BusinessRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	if rule.Name == "" && len(rule.Conditions) == 0 {
		return nil, fmt.Errorf("rule file contains no rules")
	}
	return []types.BusinessRule{rule}, nil
}
