package lint

import "github.com/yaklabco/downlint/pkg/config"

// BaseRule provides the metadata half of the Rule interface.
// Embed this in rule implementations and add a Check method.
//
// Fields are unexported to avoid stutter and name collisions with interface methods.
// Use NewBaseRule and the With* methods.
type BaseRule struct {
	code     string
	name     string
	desc     string
	aliases  []string
	tags     []string
	params   []config.Param
	fixable  bool
	disabled bool
	severity config.Severity
}

// NewBaseRule creates a BaseRule with the given code, primary alias,
// description, and tags.
func NewBaseRule(code, name, desc string, tags ...string) BaseRule {
	return BaseRule{
		code: code,
		name: name,
		desc: desc,
		tags: tags,
	}
}

// WithParams declares the rule's parameters.
func (r BaseRule) WithParams(params ...config.Param) BaseRule {
	r.params = params
	return r
}

// WithAliases declares extra aliases beyond Name.
func (r BaseRule) WithAliases(aliases ...string) BaseRule {
	r.aliases = aliases
	return r
}

// Fixable marks the rule as proposing fixes.
func (r BaseRule) Fixable() BaseRule {
	r.fixable = true
	return r
}

// Disabled marks the rule as off unless configured.
func (r BaseRule) Disabled() BaseRule {
	r.disabled = true
	return r
}

// WithSeverity overrides the default severity.
func (r BaseRule) WithSeverity(severity config.Severity) BaseRule {
	r.severity = severity
	return r
}

// Code returns the stable rule code.
func (r *BaseRule) Code() string {
	return r.code
}

// Name returns the primary alias.
func (r *BaseRule) Name() string {
	return r.name
}

// Description returns a one-line description of what the rule checks.
func (r *BaseRule) Description() string {
	return r.desc
}

// Aliases returns the names the rule answers to besides its code.
func (r *BaseRule) Aliases() []string {
	return r.aliases
}

// Tags returns categorization tags for this rule.
func (r *BaseRule) Tags() []string {
	return r.tags
}

// DefaultEnabled returns whether the rule is enabled by default.
func (r *BaseRule) DefaultEnabled() bool {
	return !r.disabled
}

// DefaultSeverity returns the default severity for this rule.
func (r *BaseRule) DefaultSeverity() config.Severity {
	if r.severity == "" {
		return config.DefaultSeverity
	}
	return r.severity
}

// Params returns the parameter schema.
func (r *BaseRule) Params() []config.Param {
	return r.params
}

// CanFix returns whether this rule can auto-fix issues.
func (r *BaseRule) CanFix() bool {
	return r.fixable
}
