package reporter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
	"github.com/yaklabco/downlint/pkg/reporter"
)

func violation(path, code string, line, col int, sev config.Severity, msg string) lint.Violation {
	return lint.Violation{
		RuleCode: code,
		RuleName: "rule-" + code,
		Severity: sev,
		Message:  msg,
		Path:     path,
		Span:     mdast.Span{Start: line*100 + col, End: line*100 + col + 1},
		Start:    mdast.Position{Line: line, Column: col},
		End:      mdast.Position{Line: line, Column: col + 1},
	}
}

func sampleResults() []lint.Result {
	long := violation("b.md", "MD013", 1, 81, config.SeverityError, "Line length [Expected: 80; Actual: 81]")
	trailing := violation("a.md", "MD009", 2, 5, config.SeverityWarning, "Trailing spaces [Expected: 0 or 2; Actual: 1]")
	trailing.Fix = &lint.Fix{Span: mdast.Span{Start: 10, End: 11}}

	return []lint.Result{
		lint.NewResult("b.md", []lint.Violation{long}),
		lint.NewResult("a.md", []lint.Violation{trailing}),
		lint.FailedResult("c.md", errors.New("invalid UTF-8 at byte 3")),
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    config.OutputFormat
		wantErr bool
	}{
		{"", config.FormatConcise, false},
		{"text", config.FormatText, false},
		{"JSON", config.FormatJSON, false},
		{"mdl", config.FormatMDL, false},
		{"markdownlint", config.FormatMarkdownlint, false},
		{"sarif", config.FormatSARIF, false},
		{"table", "", true},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(testCase.input)
			if testCase.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid formats")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestAggregate_DedupAndSort(t *testing.T) {
	t.Parallel()

	first := violation("doc.md", "MD009", 3, 1, config.SeverityError, "Trailing spaces")
	dup := first
	sameSpotOtherRule := violation("doc.md", "MD010", 3, 1, config.SeverityError, "Hard tabs")
	sameSpotOtherRule.Span = first.Span
	early := violation("doc.md", "MD001", 1, 1, config.SeverityError, "Header levels")

	results := []lint.Result{
		lint.NewResult("doc.md", []lint.Violation{sameSpotOtherRule, first, dup, early}),
	}

	// The dedup key includes the rule code, so two rules flagging the same
	// span with different messages both survive; only exact repeats merge.
	report := reporter.Aggregate(results, config.SeverityWarning)
	require.Len(t, report.Violations, 3)
	assert.Equal(t, "MD001", report.Violations[0].RuleCode)
	assert.Equal(t, "MD009", report.Violations[1].RuleCode)
	assert.Equal(t, "MD010", report.Violations[2].RuleCode)
	assert.Equal(t, 3, report.Errors)
	assert.False(t, report.ExitOK)
}

func TestAggregate_PathFilledFromResult(t *testing.T) {
	t.Parallel()

	v := violation("", "MD047", 4, 1, config.SeverityError, "File should end with a single newline character")
	report := reporter.Aggregate([]lint.Result{lint.NewResult("notes.md", []lint.Violation{v})}, config.SeverityError)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "notes.md", report.Violations[0].Path)
}

func TestAggregate_ExitOK(t *testing.T) {
	t.Parallel()

	warn := violation("doc.md", "MD009", 1, 4, config.SeverityWarning, "Trailing spaces")
	info := violation("doc.md", "MD013", 2, 81, config.SeverityInfo, "Line length")

	tests := []struct {
		name    string
		results []lint.Result
		failOn  config.Severity
		want    bool
	}{
		{"no results", nil, config.SeverityWarning, true},
		{"clean file", []lint.Result{lint.NewResult("doc.md", nil)}, config.SeverityWarning, true},
		{"warning below error threshold", []lint.Result{lint.NewResult("doc.md", []lint.Violation{warn})}, config.SeverityError, true},
		{"warning at threshold", []lint.Result{lint.NewResult("doc.md", []lint.Violation{warn})}, config.SeverityWarning, false},
		{"info at info threshold", []lint.Result{lint.NewResult("doc.md", []lint.Violation{info})}, config.SeverityInfo, false},
		{"parse failure", []lint.Result{lint.FailedResult("doc.md", errors.New("boom"))}, config.SeverityError, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			report := reporter.Aggregate(testCase.results, testCase.failOn)
			assert.Equal(t, testCase.want, report.ExitOK)
		})
	}
}

func TestAggregate_Counts(t *testing.T) {
	t.Parallel()

	report := reporter.Aggregate(sampleResults(), config.SeverityWarning)

	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Warnings)
	assert.Equal(t, 0, report.Infos)
	assert.Equal(t, 1, report.Fixable)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "c.md", report.Failures[0].Path)

	tally := report.Tally()
	assert.Equal(t, 2, tally.Violations)
	assert.Equal(t, 1, tally.Failed)
}

func render(t *testing.T, format config.OutputFormat, opts reporter.Options) string {
	t.Helper()

	var buf bytes.Buffer
	report := reporter.Aggregate(sampleResults(), config.SeverityWarning)
	require.NoError(t, reporter.Render(&buf, report, format, opts))
	return buf.String()
}

func TestRender_Text(t *testing.T) {
	t.Parallel()

	want := "a.md:2:5: MD009 Trailing spaces [Expected: 0 or 2; Actual: 1]\n" +
		"b.md:1:81: MD013 Line length [Expected: 80; Actual: 81]\n" +
		"c.md: parse-error invalid UTF-8 at byte 3\n"
	assert.Equal(t, want, render(t, config.FormatText, reporter.Options{}))
}

func TestRender_Concise(t *testing.T) {
	t.Parallel()

	out := render(t, config.FormatConcise, reporter.Options{})
	assert.Contains(t, out, "a.md:2:5: MD009 Trailing spaces")
	assert.Contains(t, out, "c.md: parse-error invalid UTF-8 at byte 3\n")
	assert.Contains(t, out, "Found 2 errors. (1 error, 1 warning) 1 fixable with --fix.")

	quiet := render(t, config.FormatConcise, reporter.Options{Quiet: true})
	assert.NotContains(t, quiet, "Found")
}

func TestRender_ConciseClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := reporter.Aggregate([]lint.Result{lint.NewResult("doc.md", nil)}, config.SeverityWarning)
	require.NoError(t, reporter.Render(&buf, report, config.FormatConcise, reporter.Options{}))
	assert.Equal(t, "All checks passed!\n", buf.String())
}

func TestRender_MDL(t *testing.T) {
	t.Parallel()

	want := "a.md:2: MD009 Trailing spaces\n" +
		"b.md:1: MD013 Line length\n" +
		"c.md: parse-error invalid UTF-8 at byte 3\n"
	assert.Equal(t, want, render(t, config.FormatMDL, reporter.Options{}))
}

func TestRender_Markdownlint(t *testing.T) {
	t.Parallel()

	out := render(t, config.FormatMarkdownlint, reporter.Options{})
	assert.Contains(t, out, "b.md:1:81 MD013/rule-MD013 Line length [Expected: 80; Actual: 81]\n")
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()

	out := render(t, config.FormatJSON, reporter.Options{Compact: true})

	var entries []reporter.JSONViolation
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "a.md", entries[0].Path)
	assert.Equal(t, "MD009", entries[0].RuleCode)
	assert.Equal(t, "warning", entries[0].Severity)
	require.NotNil(t, entries[0].Fix)
	assert.Equal(t, 10, entries[0].Fix.StartOffset)

	assert.Equal(t, 81, entries[1].Column)
	assert.Nil(t, entries[1].Fix)

	assert.Equal(t, "parse-error", entries[2].RuleCode)
	assert.Equal(t, 1, entries[2].Line)
}

func TestRender_JSONEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, reporter.Render(&buf, reporter.Aggregate(nil, config.SeverityWarning), config.FormatJSON, reporter.Options{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRender_SARIF(t *testing.T) {
	t.Parallel()

	out := render(t, config.FormatSARIF, reporter.Options{
		Version:          "1.2.3",
		RuleDescriptions: map[string]string{"MD013": "Line length"},
	})

	var doc reporter.SARIFOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "downlint", run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	require.Len(t, run.Results, 3)
	require.Len(t, run.Tool.Driver.Rules, 3)

	assert.Equal(t, "warning", run.Results[0].Level)
	require.Len(t, run.Results[0].Fixes, 1)
	deleted := run.Results[0].Fixes[0].ArtifactChanges[0].Replacements[0].DeletedRegion
	assert.Equal(t, 10, deleted.CharOffset)
	assert.Equal(t, 1, deleted.CharLength)

	assert.Equal(t, "Line length", run.Tool.Driver.Rules[1].ShortDescription.Text)
	assert.Equal(t, "parse-error", run.Results[2].RuleID)
}

func TestRender_WorkingDir(t *testing.T) {
	t.Parallel()

	v := violation("/repo/docs/a.md", "MD001", 1, 1, config.SeverityError, "Header levels")
	report := reporter.Aggregate([]lint.Result{lint.NewResult("/repo/docs/a.md", []lint.Violation{v})}, config.SeverityError)

	var buf bytes.Buffer
	require.NoError(t, reporter.Render(&buf, report, config.FormatText, reporter.Options{WorkingDir: "/repo"}))
	assert.Equal(t, "docs/a.md:1:1: MD001 Header levels\n", buf.String())
}

func TestRender_FailureWorkingDir(t *testing.T) {
	t.Parallel()

	parseErr := &mdast.ParseError{Path: "/repo/docs/bad.md", Offset: 9, Line: 2, Err: mdast.ErrInvalidEncoding}
	report := reporter.Aggregate([]lint.Result{lint.FailedResult("/repo/docs/bad.md", parseErr)}, config.SeverityError)
	opts := reporter.Options{WorkingDir: "/repo"}

	for _, format := range []config.OutputFormat{
		config.FormatText, config.FormatConcise, config.FormatMDL,
		config.FormatMarkdownlint, config.FormatJSON, config.FormatSARIF,
	} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, reporter.Render(&buf, report, format, opts))
			assert.Contains(t, buf.String(), "docs/bad.md:2: parse failed at byte 9")
			assert.NotContains(t, buf.String(), "/repo/")
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(config.OutputFormat("table"), reporter.Options{})
	require.Error(t, err)
}
