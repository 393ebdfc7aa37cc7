package lint

import (
	"context"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Context is the private view one rule gets of one document: the document,
// the rule's own resolved parameters, and a violation buffer no other rule
// can see.
//
// Context stores context.Context as a field (Ctx) rather than passing it
// as a method parameter. It is a short-lived parameter object created per
// rule invocation, which keeps the Rule interface to a single Check method.
type Context struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// Doc is the parsed document. Rules must not modify it.
	Doc *mdast.Document

	rule     Rule
	settings config.RuleSettings
	lines    *LineInfo

	violations []Violation
}

func newContext(ctx context.Context, doc *mdast.Document, rule Rule, settings config.RuleSettings, lines *LineInfo) *Context {
	return &Context{
		Ctx:      ctx,
		Doc:      doc,
		rule:     rule,
		settings: settings,
		lines:    lines,
	}
}

// NewContext creates a standalone Context, for running a rule directly.
func NewContext(ctx context.Context, doc *mdast.Document, rule Rule, settings config.RuleSettings) *Context {
	return newContext(ctx, doc, rule, settings, NewLineInfo(doc))
}

// Cancelled returns true if the context has been cancelled.
func (c *Context) Cancelled() bool {
	select {
	case <-c.Ctx.Done():
		return true
	default:
		return false
	}
}

// Settings returns the rule's resolved settings.
func (c *Context) Settings() config.RuleSettings {
	return c.settings
}

// Param returns a parameter value, falling back to the schema default.
func (c *Context) Param(name string) any {
	if v, ok := c.settings.Params[name]; ok {
		return v
	}
	for _, p := range c.rule.Params() {
		if p.Name == name {
			return p.Default
		}
	}
	return nil
}

// Int returns an integer parameter.
func (c *Context) Int(name string) int {
	switch v := c.Param(name).(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// String returns a string parameter.
func (c *Context) String(name string) string {
	s, _ := c.Param(name).(string)
	return s
}

// Bool returns a boolean parameter.
func (c *Context) Bool(name string) bool {
	b, _ := c.Param(name).(bool)
	return b
}

// Strings returns a string list parameter.
func (c *Context) Strings(name string) []string {
	switch v := c.Param(name).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Lines returns the per-line classification of the document.
func (c *Context) Lines() *LineInfo {
	return c.lines
}

// InCode reports whether the 1-based line is inside a code block.
func (c *Context) InCode(line int) bool {
	return c.lines.InCode(line)
}

// InFrontMatter reports whether the 1-based line is inside front matter.
func (c *Context) InFrontMatter(line int) bool {
	return c.lines.InFrontMatter(line)
}

// InHTML reports whether the 1-based line is inside an HTML block.
func (c *Context) InHTML(line int) bool {
	return c.lines.InHTML(line)
}

// Report records a violation covering node id.
func (c *Context) Report(id mdast.NodeID, message string) {
	c.ReportSpan(c.Doc.Node(id).Span, message)
}

// ReportSpan records a violation covering span.
func (c *Context) ReportSpan(span mdast.Span, message string) {
	c.violations = append(c.violations, Violation{Span: span, Message: message})
}

// ReportFix records a violation covering span with a suggested fix. The
// fix span must lie within span or the engine drops the fix.
func (c *Context) ReportFix(span mdast.Span, message string, fix Fix) {
	c.violations = append(c.violations, Violation{Span: span, Message: message, Fix: &fix})
}

// ReportLine records a violation covering the content of a 1-based line.
func (c *Context) ReportLine(line int, message string) {
	c.ReportSpan(c.Doc.LineSpan(line), message)
}

// Violations returns what the rule has reported so far.
func (c *Context) Violations() []Violation {
	return c.violations
}
