// Package analysis computes per-rule and per-file statistics over a lint
// report.
package analysis

import (
	"cmp"
	"slices"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/reporter"
)

// counts is the severity breakdown shared by rule and file stats.
type counts struct {
	errors, warnings, infos int
}

func (c *counts) add(sev config.Severity) {
	switch sev {
	case config.SeverityError:
		c.errors++
	case config.SeverityWarning:
		c.warnings++
	case config.SeverityInfo:
		c.infos++
	}
}

// analysisContext holds temporary state during analysis.
type analysisContext struct {
	rules     map[string]*RuleStats
	files     map[string]*FileStats
	ruleFiles map[string]map[string]bool
	fileRules map[string]map[string]bool
}

func newAnalysisContext() *analysisContext {
	return &analysisContext{
		rules:     make(map[string]*RuleStats),
		files:     make(map[string]*FileStats),
		ruleFiles: make(map[string]map[string]bool),
		fileRules: make(map[string]map[string]bool),
	}
}

func (ctx *analysisContext) file(path string) *FileStats {
	if _, ok := ctx.files[path]; !ok {
		ctx.files[path] = &FileStats{Path: path}
		ctx.fileRules[path] = make(map[string]bool)
	}
	return ctx.files[path]
}

func (ctx *analysisContext) rule(code, name string) *RuleStats {
	if _, ok := ctx.rules[code]; !ok {
		ctx.rules[code] = &RuleStats{RuleCode: code, RuleName: name}
		ctx.ruleFiles[code] = make(map[string]bool)
	}
	return ctx.rules[code]
}

func (ctx *analysisContext) record(v *lint.Violation) {
	var c counts
	c.add(v.Severity)

	fs := ctx.file(v.Path)
	fs.Violations++
	fs.Errors += c.errors
	fs.Warnings += c.warnings
	fs.Infos += c.infos
	ctx.fileRules[v.Path][v.RuleCode] = true

	rs := ctx.rule(v.RuleCode, v.RuleName)
	rs.Violations++
	rs.Errors += c.errors
	rs.Warnings += c.warnings
	rs.Infos += c.infos
	if v.HasFix() {
		rs.Fixable++
	}
	ctx.ruleFiles[v.RuleCode][v.Path] = true
}

// Analyze groups the violations of report by rule and by file in a single
// pass.
func Analyze(report *reporter.Report, opts Options) *Summary {
	summary := &Summary{}
	if report == nil {
		return summary
	}

	ctx := newAnalysisContext()
	for i := range report.Violations {
		ctx.record(&report.Violations[i])
	}

	summary.Totals = Totals{
		Files:           report.Files,
		FilesWithIssues: len(ctx.files),
		Violations:      len(report.Violations),
		Errors:          report.Errors,
		Warnings:        report.Warnings,
		Infos:           report.Infos,
		Fixable:         report.Fixable,
		Failed:          len(report.Failures),
	}
	summary.ByRule = ctx.buildByRule(opts)
	summary.ByFile = ctx.buildByFile(opts)
	return summary
}

func (ctx *analysisContext) buildByRule(opts Options) []RuleStats {
	result := make([]RuleStats, 0, len(ctx.rules))
	for code, rs := range ctx.rules {
		rs.Files = sortedKeys(ctx.ruleFiles[code])
		result = append(result, *rs)
	}
	slices.SortFunc(result, func(left, right RuleStats) int {
		return compareStats(opts,
			left.RuleCode, right.RuleCode,
			counts{left.Errors, left.Warnings, left.Infos}, counts{right.Errors, right.Warnings, right.Infos},
			left.Violations, right.Violations)
	})
	return result
}

func (ctx *analysisContext) buildByFile(opts Options) []FileStats {
	result := make([]FileStats, 0, len(ctx.files))
	for path, fs := range ctx.files {
		fs.Rules = sortedKeys(ctx.fileRules[path])
		result = append(result, *fs)
	}
	slices.SortFunc(result, func(left, right FileStats) int {
		return compareStats(opts,
			left.Path, right.Path,
			counts{left.Errors, left.Warnings, left.Infos}, counts{right.Errors, right.Warnings, right.Infos},
			left.Violations, right.Violations)
	})
	return result
}

// compareStats orders two entries by opts. Ties always fall back to the key
// so the output is deterministic.
func compareStats(opts Options, leftKey, rightKey string, left, right counts, leftTotal, rightTotal int) int {
	var result int
	switch opts.SortBy {
	case SortByAlpha:
	case SortBySeverity:
		result = cmp.Compare(right.errors, left.errors)
		if result == 0 {
			result = cmp.Compare(right.warnings, left.warnings)
		}
		if result == 0 {
			result = cmp.Compare(rightTotal, leftTotal)
		}
	default:
		result = cmp.Compare(leftTotal, rightTotal)
		if opts.SortDesc {
			result = -result
		}
	}
	if result == 0 {
		result = cmp.Compare(leftKey, rightKey)
	}
	return result
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
