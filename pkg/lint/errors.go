package lint

import "errors"

var (
	// ErrRuleInternal marks a rule that panicked or returned an error.
	ErrRuleInternal = errors.New("rule internal error")

	// ErrRuleTimeout marks a rule that exceeded its time budget.
	ErrRuleTimeout = errors.New("rule timed out")

	// ErrDuplicateRule is returned when registering a code or alias twice.
	ErrDuplicateRule = errors.New("duplicate rule")
)
