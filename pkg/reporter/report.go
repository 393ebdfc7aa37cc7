package reporter

import (
	"cmp"
	"slices"

	"github.com/yaklabco/downlint/internal/ui/pretty"
	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Failure is a file that could not be read or parsed.
type Failure struct {
	Path string
	Err  error
}

// Report is the aggregated outcome of a run.
type Report struct {
	// Files is the number of files examined, including failures.
	Files int

	// Violations are deduplicated and sorted by path, line, column, and code.
	Violations []lint.Violation

	// Failures are sorted by path.
	Failures []Failure

	Errors   int
	Warnings int
	Infos    int
	Fixable  int

	// FailOn is the threshold ExitOK was computed against.
	FailOn config.Severity

	// ExitOK is true when no violation is at or above FailOn and every
	// file was checked.
	ExitOK bool
}

type dedupKey struct {
	path    string
	code    string
	span    mdast.Span
	message string
}

// Aggregate merges per-file results into a single Report. Violations that
// share a path, rule code, span, and message are reported once.
func Aggregate(results []lint.Result, failOn config.Severity) *Report {
	if failOn == "" {
		failOn = config.SeverityWarning
	}

	report := &Report{
		Files:      len(results),
		Violations: make([]lint.Violation, 0),
		FailOn:     failOn,
		ExitOK:     true,
	}

	seen := make(map[dedupKey]struct{})
	for i := range results {
		result := &results[i]
		if result.Status == lint.StatusParseFailed {
			report.Failures = append(report.Failures, Failure{Path: result.Path, Err: result.Err})
			continue
		}

		for _, v := range result.Violations {
			if v.Path == "" {
				v.Path = result.Path
			}
			key := dedupKey{path: v.Path, code: v.RuleCode, span: v.Span, message: v.Message}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			report.Violations = append(report.Violations, v)
		}
	}

	slices.SortStableFunc(report.Violations, compareViolations)
	slices.SortStableFunc(report.Failures, func(a, b Failure) int {
		return cmp.Compare(a.Path, b.Path)
	})

	for i := range report.Violations {
		v := &report.Violations[i]
		switch v.Severity {
		case config.SeverityWarning:
			report.Warnings++
		case config.SeverityInfo:
			report.Infos++
		default:
			report.Errors++
		}
		if v.HasFix() {
			report.Fixable++
		}
		if v.Severity.AtLeast(failOn) {
			report.ExitOK = false
		}
	}
	if len(report.Failures) > 0 {
		report.ExitOK = false
	}

	return report
}

func compareViolations(a, b lint.Violation) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start.Line, b.Start.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start.Column, b.Start.Column); c != 0 {
		return c
	}
	return cmp.Compare(a.RuleCode, b.RuleCode)
}

// Tally returns the counts used by the concise summary line.
func (r *Report) Tally() pretty.Tally {
	return pretty.Tally{
		Files:      r.Files,
		Violations: len(r.Violations),
		Errors:     r.Errors,
		Warnings:   r.Warnings,
		Infos:      r.Infos,
		Fixable:    r.Fixable,
		Failed:     len(r.Failures),
	}
}
