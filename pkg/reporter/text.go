package reporter

import (
	"io"
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
)

// textRenderer writes "path:line:col: CODE message" lines.
type textRenderer struct {
	opts Options
}

func (r *textRenderer) Render(w io.Writer, report *Report) error {
	lw := newLineWriter(w)
	for i := range report.Violations {
		v := &report.Violations[i]
		lw.printf("%s:%d:%d: %s %s\n", r.opts.displayPath(v.Path), v.Start.Line, v.Start.Column, v.RuleCode, v.Message)
	}
	writeFailures(lw, report, r.opts)
	return lw.flush()
}

// conciseRenderer writes styled lines followed by a summary.
type conciseRenderer struct {
	opts Options
}

func (r *conciseRenderer) Render(w io.Writer, report *Report) error {
	styles := r.opts.Styles
	lw := newLineWriter(w)
	for i := range report.Violations {
		v := &report.Violations[i]
		lw.write(styles.FormatViolation(r.opts.displayPath(v.Path), v))
	}
	for _, failure := range report.Failures {
		lw.write(styles.FormatFailure(r.opts.displayPath(failure.Path), r.opts.failureMessage(failure)))
	}

	if !r.opts.Quiet {
		tally := report.Tally()
		tally.Fixed = r.opts.Fixed
		lw.write(styles.FormatSummary(tally))
	}
	return lw.flush()
}

// mdlRenderer writes "path:line: CODE description" lines.
type mdlRenderer struct {
	opts Options
}

func (r *mdlRenderer) Render(w io.Writer, report *Report) error {
	lw := newLineWriter(w)
	for i := range report.Violations {
		v := &report.Violations[i]
		lw.printf("%s:%d: %s %s\n", r.opts.displayPath(v.Path), v.Start.Line, v.RuleCode, stripDetail(v.Message))
	}
	writeFailures(lw, report, r.opts)
	return lw.flush()
}

// markdownlintRenderer writes "path:line:col CODE/alias message" lines.
type markdownlintRenderer struct {
	opts Options
}

func (r *markdownlintRenderer) Render(w io.Writer, report *Report) error {
	lw := newLineWriter(w)
	for i := range report.Violations {
		v := &report.Violations[i]
		id := config.FormatRuleID(config.RuleFormatCombined, v.RuleCode, v.RuleName)
		lw.printf("%s:%d:%d %s %s\n", r.opts.displayPath(v.Path), v.Start.Line, v.Start.Column, id, v.Message)
	}
	writeFailures(lw, report, r.opts)
	return lw.flush()
}

func writeFailures(lw *lineWriter, report *Report, opts Options) {
	for _, failure := range report.Failures {
		lw.printf("%s: %s %s\n", opts.displayPath(failure.Path), parseErrorCode, opts.failureMessage(failure))
	}
}

// stripDetail drops a trailing " [...]" detail from a message.
func stripDetail(message string) string {
	if !strings.HasSuffix(message, "]") {
		return message
	}
	if idx := strings.LastIndex(message, " ["); idx > 0 {
		return message[:idx]
	}
	return message
}
