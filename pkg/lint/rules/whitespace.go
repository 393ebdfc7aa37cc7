package rules

import (
	"bytes"
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// tabWidth is the tab stop used when hard tabs are expanded.
const tabWidth = 4

// TrailingSpacesRule checks for spaces at the end of lines.
type TrailingSpacesRule struct {
	lint.BaseRule
}

// NewTrailingSpacesRule creates the MD009 rule.
func NewTrailingSpacesRule() *TrailingSpacesRule {
	return &TrailingSpacesRule{
		BaseRule: lint.NewBaseRule("MD009", "no-trailing-spaces", "Trailing spaces", "whitespace").
			WithParams(config.IntParam("br_spaces", 2,
				"Exact number of trailing spaces allowed as a hard line break; below 2 disables the exception")).
			Fixable(),
	}
}

// Check reports each line ending in spaces and removes them. A run of
// exactly br_spaces after text is a hard line break and is allowed, except
// on the last line of a paragraph where it has no effect.
func (r *TrailingSpacesRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	brSpaces := ctx.Int("br_spaces")

	for n := 1; n <= doc.LineCount(); n++ {
		line := doc.LineText(n)
		trimmed := bytes.TrimRight(line, " ")
		count := len(line) - len(trimmed)
		if count == 0 {
			continue
		}
		if brSpaces >= 2 && count == brSpaces && len(bytes.TrimSpace(trimmed)) > 0 &&
			!ctx.InCode(n) && n < doc.LineCount() && !doc.IsBlankLine(n+1) {
			continue
		}

		span := doc.LineSpan(n)
		trail := mdast.Span{Start: span.Start + len(trimmed), End: span.End}
		ctx.ReportFix(trail, detail(r.Description(), "Expected: 0 or %d; Actual: %d", brSpaces, count),
			lint.Fix{Span: trail})
	}
	return nil
}

// HardTabsRule checks for tab characters.
type HardTabsRule struct {
	lint.BaseRule
}

// NewHardTabsRule creates the MD010 rule.
func NewHardTabsRule() *HardTabsRule {
	return &HardTabsRule{
		BaseRule: lint.NewBaseRule("MD010", "no-hard-tabs", "Hard tabs", "whitespace", "hard_tab").
			WithParams(config.BoolParam(paramCodeBlocks, true, "Check lines inside code blocks")).
			Fixable(),
	}
}

// Check reports each line holding a tab and expands its tabs to spaces at
// the usual four-column stops. The violation starts at the first tab.
func (r *HardTabsRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	codeBlocks := ctx.Bool(paramCodeBlocks)

	for n := 1; n <= doc.LineCount(); n++ {
		if !codeBlocks && ctx.InCode(n) {
			continue
		}
		line := doc.LineText(n)
		first := bytes.IndexByte(line, '\t')
		if first < 0 {
			continue
		}
		last := bytes.LastIndexByte(line, '\t')

		span := doc.LineSpan(n)
		tabs := mdast.Span{Start: span.Start + first, End: span.Start + last + 1}
		ctx.ReportFix(tabs, detail(r.Description(), "Column: %d", doc.Position(tabs.Start).Column),
			lint.Fix{Span: tabs, Replacement: expandTabs(line, first, last+1)})
	}
	return nil
}

// expandTabs returns line[from:to] with tabs replaced by spaces up to the
// next tab stop, counting columns from the start of line.
func expandTabs(line []byte, from, to int) string {
	col := len([]rune(string(line[:from])))
	var b strings.Builder
	for _, char := range string(line[from:to]) {
		if char == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(char)
		col++
	}
	return b.String()
}

// MultipleBlanksRule checks for runs of blank lines.
type MultipleBlanksRule struct {
	lint.BaseRule
}

// NewMultipleBlanksRule creates the MD012 rule.
func NewMultipleBlanksRule() *MultipleBlanksRule {
	return &MultipleBlanksRule{
		BaseRule: lint.NewBaseRule("MD012", "no-multiple-blanks",
			"Multiple consecutive blank lines", "whitespace", "blank_lines").
			WithParams(config.IntParam("maximum", 1, "Maximum consecutive blank lines")).
			Fixable(),
	}
}

// Check reports every blank line beyond the allowed run length outside code
// blocks and front matter, and deletes it.
func (r *MultipleBlanksRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	maximum := max(ctx.Int("maximum"), 0)

	run := 0
	for n := 1; n <= doc.LineCount(); n++ {
		if !doc.IsBlankLine(n) || ctx.InCode(n) || ctx.InFrontMatter(n) {
			run = 0
			continue
		}
		run++
		if run <= maximum {
			continue
		}
		line := doc.Lines[n-1]
		whole := mdast.Span{Start: line.Start, End: line.Next}
		ctx.ReportFix(whole, detail(r.Description(), "Expected: %d; Actual: %d", maximum, run),
			lint.Fix{Span: whole})
	}
	return nil
}

// SingleTrailingNewlineRule checks that the file ends with a newline.
type SingleTrailingNewlineRule struct {
	lint.BaseRule
}

// NewSingleTrailingNewlineRule creates the MD047 rule.
func NewSingleTrailingNewlineRule() *SingleTrailingNewlineRule {
	return &SingleTrailingNewlineRule{
		BaseRule: lint.NewBaseRule("MD047", "single-trailing-newline",
			"File should end with a single newline character", "blank_lines").
			Fixable(),
	}
}

// Check reports a non-empty file whose last line is unterminated and
// appends the line ending the file already uses.
func (r *SingleTrailingNewlineRule) Check(ctx *lint.Context) error {
	src := ctx.Doc.Source
	if len(src) == 0 || src[len(src)-1] == '\n' {
		return nil
	}

	newline := "\n"
	if bytes.Contains(src, []byte("\r\n")) {
		newline = "\r\n"
	}
	last := ctx.Doc.LineSpan(ctx.Doc.LineCount())
	ctx.ReportFix(mdast.Span{Start: last.Start, End: len(src)}, r.Description(),
		lint.Fix{Span: mdast.Span{Start: len(src), End: len(src)}, Replacement: newline})
	return nil
}
