package types

import (
	"errors"
	"strings"
)

// Sentinel errors for rulekit operations.
var (
	// ErrRuleNotFound indicates a rule ID does not exist in the store.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleExists indicates a create collided with an existing rule ID.
	ErrRuleExists = errors.New("rule already exists")

	// ErrInvalidRule indicates a rule failed structural validation.
	// The validation findings travel separately as []string.
	ErrInvalidRule = errors.New("rule failed validation")

	// ErrInvalidContext indicates a malformed ProcessingContext.
	// A malformed context is a caller bug and blocks processing, unlike
	// malformed rule data which degrades to a non-match.
	ErrInvalidContext = errors.New("invalid processing context")
)

// InvalidContextError reports every missing field of a ProcessingContext.
// Unwraps to ErrInvalidContext for errors.Is checks.
type InvalidContextError struct {
	Fields []string
}

func (e *InvalidContextError) Error() string {
	return "invalid processing context: " + strings.Join(e.Fields, "; ")
}

func (e *InvalidContextError) Unwrap() error {
	return ErrInvalidContext
}
