// Package lint provides the rule registry, the execution engine, and the
// violation model for downlint.
package lint

import (
	"context"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Rule defines the interface that all lint rules must implement.
type Rule interface {
	// Code returns the stable rule code (e.g., "MD013").
	Code() string

	// Name returns the primary alias (e.g., "line-length").
	Name() string

	// Description returns a one-line description of what the rule checks.
	Description() string

	// Aliases returns additional names the rule can be referenced by.
	Aliases() []string

	// Tags returns the groups the rule belongs to (e.g., "headers").
	Tags() []string

	// DefaultEnabled returns whether the rule is enabled by default.
	DefaultEnabled() bool

	// DefaultSeverity returns the severity used when none is configured.
	DefaultSeverity() config.Severity

	// Params returns the typed parameter schema with defaults.
	Params() []config.Param

	// CanFix returns whether the rule proposes fixes.
	CanFix() bool

	// Check inspects the document and reports violations through ctx.
	//
	// Rules must:
	//   - Read parameters from ctx, never from package state.
	//   - Report fixes only inside the violation's own span.
	//   - Return an error only for internal failures, not violations.
	Check(ctx *Context) error
}

// Kind classifies a violation.
type Kind int

const (
	// KindRule is an ordinary rule finding.
	KindRule Kind = iota
	// KindInternalError is a synthetic violation for a rule that failed.
	KindInternalError
	// KindTimeout is a synthetic violation for a rule that ran out of time.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInternalError:
		return "internal-error"
	case KindTimeout:
		return "timeout"
	default:
		return "rule"
	}
}

// Fix is a suggested replacement of Span with Replacement.
type Fix struct {
	Span        mdast.Span
	Replacement string
}

// Violation is a single reported rule failure.
type Violation struct {
	RuleCode string
	RuleName string
	Severity config.Severity
	Message  string
	Path     string

	// Span is the byte range in the document source.
	Span  mdast.Span
	Start mdast.Position
	End   mdast.Position

	// Fix is the optional suggested fix.
	Fix *Fix

	Kind Kind
}

// HasFix returns true if this violation carries a fix.
func (v *Violation) HasFix() bool {
	return v.Fix != nil
}

// Parser produces documents from Markdown text.
type Parser interface {
	Parse(ctx context.Context, path string, content []byte) (*mdast.Document, error)
}
