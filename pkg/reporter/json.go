package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yaklabco/downlint/pkg/config"
)

// JSONViolation is one element of the JSON output array.
type JSONViolation struct {
	Path      string   `json:"path"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"endLine"`
	EndColumn int      `json:"endColumn"`
	RuleCode  string   `json:"ruleCode"`
	RuleName  string   `json:"ruleName"`
	Severity  string   `json:"severity"`
	Message   string   `json:"message"`
	Fix       *JSONFix `json:"fix,omitempty"`
}

// JSONFix is a proposed replacement of the byte range [StartOffset, EndOffset).
type JSONFix struct {
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Replacement string `json:"replacement"`
}

type jsonRenderer struct {
	opts Options
}

func (r *jsonRenderer) Render(w io.Writer, report *Report) error {
	output := r.buildOutput(report)

	lw := newLineWriter(w)
	encoder := json.NewEncoder(lw.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return lw.flush()
}

func (r *jsonRenderer) buildOutput(report *Report) []JSONViolation {
	output := make([]JSONViolation, 0, len(report.Violations)+len(report.Failures))

	for i := range report.Violations {
		v := &report.Violations[i]
		entry := JSONViolation{
			Path:      r.opts.displayPath(v.Path),
			Line:      v.Start.Line,
			Column:    v.Start.Column,
			EndLine:   v.End.Line,
			EndColumn: v.End.Column,
			RuleCode:  v.RuleCode,
			RuleName:  v.RuleName,
			Severity:  string(v.Severity),
			Message:   v.Message,
		}
		if v.Fix != nil {
			entry.Fix = &JSONFix{
				StartOffset: v.Fix.Span.Start,
				EndOffset:   v.Fix.Span.End,
				Replacement: v.Fix.Replacement,
			}
		}
		output = append(output, entry)
	}

	for _, failure := range report.Failures {
		output = append(output, JSONViolation{
			Path:      r.opts.displayPath(failure.Path),
			Line:      1,
			Column:    1,
			EndLine:   1,
			EndColumn: 1,
			RuleCode:  parseErrorCode,
			RuleName:  parseErrorCode,
			Severity:  string(config.SeverityError),
			Message:   r.opts.failureMessage(failure),
		})
	}

	return output
}
