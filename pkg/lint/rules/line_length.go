package rules

import (
	"bytes"
	"unicode/utf8"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// LineLengthRule checks that lines stay within a maximum length.
type LineLengthRule struct {
	lint.BaseRule
}

// NewLineLengthRule creates the MD013 rule.
func NewLineLengthRule() *LineLengthRule {
	return &LineLengthRule{
		BaseRule: lint.NewBaseRule("MD013", "line-length", "Line length", "line_length").
			WithParams(
				config.IntParam("line_length", 80, "Maximum line length in characters"),
				config.BoolParam(paramCodeBlocks, true, "Check lines inside code blocks"),
				config.BoolParam("tables", true, "Check lines inside tables"),
				config.BoolParam("strict", true,
					"Flag every long line; when false, lines with no whitespace past the limit are allowed"),
			),
	}
}

// Check reports each line longer than line_length characters, starting at
// the first character past the limit. Front matter is never checked.
func (r *LineLengthRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	limit := ctx.Int("line_length")
	if limit <= 0 {
		return nil
	}
	codeBlocks := ctx.Bool(paramCodeBlocks)
	tables := ctx.Bool("tables")
	strict := ctx.Bool("strict")

	for n := 1; n <= doc.LineCount(); n++ {
		if ctx.InFrontMatter(n) ||
			(!codeBlocks && ctx.InCode(n)) ||
			(!tables && ctx.Lines().InTable(n)) {
			continue
		}
		line := doc.LineText(n)
		length := utf8.RuneCount(line)
		if length <= limit {
			continue
		}
		over := runeOffset(line, limit+1)
		if !strict && !bytes.ContainsAny(line[over:], " \t") {
			continue
		}

		span := doc.LineSpan(n)
		reportf(ctx, r, mdast.Span{Start: span.Start + over, End: span.End},
			"Expected: %d; Actual: %d", limit, length)
	}
	return nil
}
