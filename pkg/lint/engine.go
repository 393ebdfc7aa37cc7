package lint

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/downlint/internal/logging"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Options controls rule execution.
type Options struct {
	// Parallel evaluates the rules of one document concurrently.
	Parallel bool

	// Workers bounds concurrent rules when Parallel is set.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// RuleTimeout is the time budget per rule. Zero disables it.
	RuleTimeout time.Duration
}

// Engine runs registered rules over parsed documents.
type Engine struct {
	// Registry holds all available rules.
	Registry *Registry

	opts Options
}

// NewEngine creates a new Engine over the given registry.
func NewEngine(registry *Registry, opts Options) *Engine {
	return &Engine{
		Registry: registry,
		opts:     opts,
	}
}

// Options returns the engine's execution options.
func (e *Engine) Options() Options {
	return e.opts
}

// Run evaluates every rule enabled in cfg against doc and returns the merged
// violations. A nil cfg runs the registry defaults.
//
// Each rule writes only to its own buffer. Buffers are concatenated in
// registration order and stably sorted by (line, column, rule code), so the
// output does not depend on scheduling. A rule that panics, fails, or runs
// out of time yields one synthetic violation and the run continues.
// Cancelling ctx stops starting new rules; running rules complete.
func (e *Engine) Run(ctx context.Context, doc *mdast.Document, cfg *config.ResolvedConfig) []Violation {
	if cfg == nil {
		cfg = e.Registry.DefaultConfig()
	}

	type task struct {
		rule     Rule
		settings config.RuleSettings
	}
	var tasks []task
	for _, rule := range e.Registry.Rules() {
		settings, ok := cfg.Rule(rule.Code())
		if !ok || !settings.Enabled {
			continue
		}
		tasks = append(tasks, task{rule: rule, settings: settings})
	}

	lines := NewLineInfo(doc)
	buffers := make([][]Violation, len(tasks))

	if e.opts.Parallel && len(tasks) > 1 {
		workers := e.opts.Workers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		var g errgroup.Group
		g.SetLimit(workers)
		for i, t := range tasks {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				buffers[i] = e.runRule(ctx, doc, t.rule, t.settings, lines)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, t := range tasks {
			if ctx.Err() != nil {
				break
			}
			buffers[i] = e.runRule(ctx, doc, t.rule, t.settings, lines)
		}
	}

	return merge(buffers)
}

// LintDocument runs the engine and wraps the outcome in a Result.
func (e *Engine) LintDocument(ctx context.Context, doc *mdast.Document, cfg *config.ResolvedConfig) Result {
	return NewResult(doc.Path, e.Run(ctx, doc, cfg))
}

func (e *Engine) runRule(
	ctx context.Context,
	doc *mdast.Document,
	rule Rule,
	settings config.RuleSettings,
	lines *LineInfo,
) []Violation {
	if e.opts.RuleTimeout <= 0 {
		return invoke(ctx, doc, rule, settings, lines)
	}

	ruleCtx, cancel := context.WithTimeout(ctx, e.opts.RuleTimeout)
	defer cancel()

	done := make(chan []Violation, 1)
	go func() {
		done <- invoke(ruleCtx, doc, rule, settings, lines)
	}()

	select {
	case out := <-done:
		return out
	case <-ruleCtx.Done():
		select {
		case out := <-done:
			return out
		default:
		}
		if errors.Is(ruleCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			logging.FromContext(ctx).Warn("rule timed out",
				logging.FieldRule, rule.Code(), logging.FieldPath, doc.Path, logging.FieldTimeout, e.opts.RuleTimeout)
			return []Violation{synthetic(doc, rule, KindTimeout,
				fmt.Errorf("%w after %s", ErrRuleTimeout, e.opts.RuleTimeout))}
		}
		// The run was cancelled: let the rule finish.
		return <-done
	}
}

// invoke runs one rule with fault isolation.
func invoke(
	ctx context.Context,
	doc *mdast.Document,
	rule Rule,
	settings config.RuleSettings,
	lines *LineInfo,
) (out []Violation) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Debug("rule panicked",
				logging.FieldRule, rule.Code(), logging.FieldPath, doc.Path, "panic", r, "stack", string(debug.Stack()))
			out = []Violation{synthetic(doc, rule, KindInternalError,
				fmt.Errorf("%w: panic: %v", ErrRuleInternal, r))}
		}
	}()

	rc := newContext(ctx, doc, rule, settings, lines)
	if err := rule.Check(rc); err != nil {
		logging.FromContext(ctx).Debug("rule failed",
			logging.FieldRule, rule.Code(), logging.FieldPath, doc.Path, logging.FieldError, err)
		return []Violation{synthetic(doc, rule, KindInternalError, fmt.Errorf("%w: %w", ErrRuleInternal, err))}
	}
	return finish(ctx, doc, rule, settings, rc.violations)
}

// finish stamps rule identity, severity, and positions on a rule's
// violations and drops fixes that reach outside their violation.
func finish(
	ctx context.Context,
	doc *mdast.Document,
	rule Rule,
	settings config.RuleSettings,
	violations []Violation,
) []Violation {
	srcLen := len(doc.Source)
	for i := range violations {
		v := &violations[i]
		v.Span.Start = min(max(v.Span.Start, 0), srcLen)
		v.Span.End = min(max(v.Span.End, v.Span.Start), srcLen)

		v.RuleCode = rule.Code()
		v.RuleName = rule.Name()
		v.Severity = settings.Severity
		v.Path = doc.Path
		v.Kind = KindRule
		v.Start = doc.Position(v.Span.Start)
		v.End = doc.Position(v.Span.End)

		if v.Fix != nil && !v.Span.Contains(v.Fix.Span) {
			logging.FromContext(ctx).Debug("dropping fix outside violation span",
				logging.FieldRule, rule.Code(), logging.FieldPath, doc.Path,
				"span", v.Span, "fix", v.Fix.Span)
			v.Fix = nil
		}
	}
	return violations
}

func synthetic(doc *mdast.Document, rule Rule, kind Kind, err error) Violation {
	pos := mdast.Position{Line: 1, Column: 1}
	return Violation{
		RuleCode: rule.Code(),
		RuleName: rule.Name(),
		Severity: config.SeverityError,
		Message:  err.Error(),
		Path:     doc.Path,
		Start:    pos,
		End:      pos,
		Kind:     kind,
	}
}

func merge(buffers [][]Violation) []Violation {
	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	out := make([]Violation, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	SortViolations(out)
	return out
}

// SortViolations stably orders violations by line, column, and rule code.
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		if a.Start.Column != b.Start.Column {
			return a.Start.Column < b.Start.Column
		}
		return a.RuleCode < b.RuleCode
	})
}
