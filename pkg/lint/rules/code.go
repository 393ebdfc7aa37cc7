package rules

import (
	"bytes"
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/langdetect"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Code block style values for MD046.
const (
	styleFenced   = "fenced"
	styleIndented = "indented"
)

func codeStyle(code *mdast.CodeAttrs) string {
	if code.Fenced {
		return styleFenced
	}
	return styleIndented
}

// codeContent returns the content lines of a code block joined by newlines.
func codeContent(doc *mdast.Document, id mdast.NodeID) []byte {
	first, last := codeContentLines(doc, id)
	var buf bytes.Buffer
	for n := first; n <= last; n++ {
		buf.Write(doc.LineText(n))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// CommandsShowOutputRule checks for shell sessions that show no output.
type CommandsShowOutputRule struct {
	lint.BaseRule
}

// NewCommandsShowOutputRule creates the MD014 rule.
func NewCommandsShowOutputRule() *CommandsShowOutputRule {
	return &CommandsShowOutputRule{
		BaseRule: lint.NewBaseRule("MD014", "commands-show-output",
			"Dollar signs used before commands without showing output", "code"),
	}
}

// Check reports code blocks in which every non-blank line starts with a
// dollar prompt.
func (r *CommandsShowOutputRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindCodeBlock) {
		first, last := codeContentLines(doc, id)
		commands := 0
		output := false
		for n := first; n <= last; n++ {
			text := bytes.TrimLeft(doc.LineText(n), " \t")
			if len(text) == 0 {
				continue
			}
			if !bytes.HasPrefix(text, []byte("$ ")) && !bytes.Equal(text, []byte("$")) {
				output = true
				break
			}
			commands++
		}
		if commands > 0 && !output {
			ctx.Report(id, r.Description())
		}
	}
	return nil
}

// BlanksAroundFencesRule checks for blank lines around fenced code.
type BlanksAroundFencesRule struct {
	lint.BaseRule
}

// NewBlanksAroundFencesRule creates the MD031 rule.
func NewBlanksAroundFencesRule() *BlanksAroundFencesRule {
	return &BlanksAroundFencesRule{
		BaseRule: lint.NewBaseRule("MD031", "blanks-around-fences",
			"Fenced code blocks should be surrounded by blank lines", "code", "blank_lines"),
	}
}

// Check reports the opening or closing fence of a fenced block that touches
// a sibling block.
func (r *BlanksAroundFencesRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindCodeBlock) {
		if !doc.Node(id).Code.Fenced {
			continue
		}
		if prev := prevBlock(doc, id); prev != mdast.NoNode && !blankLinesBetween(doc, prev, id) {
			ctx.ReportLine(doc.LineOf(id), r.Description())
		}
		if next := doc.NextSibling(id); next != mdast.NoNode && !blankLinesBetween(doc, id, next) {
			ctx.ReportLine(doc.EndLineOf(id), r.Description())
		}
	}
	return nil
}

// SpaceInCodeRule checks for blanks just inside code span backticks.
type SpaceInCodeRule struct {
	lint.BaseRule
}

// NewSpaceInCodeRule creates the MD038 rule.
func NewSpaceInCodeRule() *SpaceInCodeRule {
	return &SpaceInCodeRule{
		BaseRule: lint.NewBaseRule("MD038", "no-space-in-code",
			"Spaces inside code span elements", "whitespace", "code").
			Fixable(),
	}
}

// Check reports code spans with leading or trailing blanks inside the
// backticks and trims them. One space of padding is kept next to content
// that itself begins or ends with a backtick, and spans of only blanks are
// left alone.
func (r *SpaceInCodeRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindCodeSpan) {
		text := string(doc.Text(id))
		run := len(text) - len(strings.TrimLeft(text, "`"))
		if run == 0 || len(text) < 2*run || !strings.HasSuffix(text, strings.Repeat("`", run)) {
			continue
		}
		fence := text[:run]
		inner := text[run : len(text)-run]
		trimmed := strings.Trim(inner, " \t")
		if trimmed == "" || trimmed == inner {
			continue
		}

		want := trimmed
		if strings.HasPrefix(trimmed, "`") {
			want = " " + want
		}
		if strings.HasSuffix(trimmed, "`") {
			want += " "
		}
		if want == inner {
			continue
		}
		span := doc.Node(id).Span
		ctx.ReportFix(span, r.Description(), lint.Fix{Span: span, Replacement: fence + want + fence})
	}
	return nil
}

// FencedCodeLanguageRule checks that fenced code declares a language.
type FencedCodeLanguageRule struct {
	lint.BaseRule
}

// NewFencedCodeLanguageRule creates the MD040 rule.
func NewFencedCodeLanguageRule() *FencedCodeLanguageRule {
	return &FencedCodeLanguageRule{
		BaseRule: lint.NewBaseRule("MD040", "fenced-code-language",
			"Fenced code blocks should have a language specified", "code", "language"),
	}
}

// Check reports fenced blocks with an empty info string. When the content
// is recognizable the message suggests a language.
func (r *FencedCodeLanguageRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindCodeBlock) {
		code := doc.Node(id).Code
		if !code.Fenced || code.Info != "" {
			continue
		}
		span := doc.LineSpan(doc.LineOf(id))
		if lang := langdetect.Detect(codeContent(doc, id)); lang != langdetect.Text {
			reportf(ctx, r, span, "Suggested: %s", lang)
			continue
		}
		ctx.ReportSpan(span, r.Description())
	}
	return nil
}

// CodeBlockStyleRule checks whether code blocks are fenced or indented.
type CodeBlockStyleRule struct {
	lint.BaseRule
}

// NewCodeBlockStyleRule creates the MD046 rule.
func NewCodeBlockStyleRule() *CodeBlockStyleRule {
	return &CodeBlockStyleRule{
		BaseRule: lint.NewBaseRule("MD046", "code-block-style", "Code block style", "code").
			WithParams(config.StringParam(paramStyle, styleFenced, "Required code block style",
				styleConsistent, styleFenced, styleIndented)),
	}
}

// Check reports code blocks whose style differs from the configured one,
// or from the first block in consistent mode.
func (r *CodeBlockStyleRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	want := ctx.String(paramStyle)
	for _, id := range doc.OfKind(mdast.KindCodeBlock) {
		actual := codeStyle(doc.Node(id).Code)
		if want == styleConsistent {
			want = actual
			continue
		}
		if actual != want {
			reportf(ctx, r, doc.LineSpan(doc.LineOf(id)), "Expected: %s; Actual: %s", want, actual)
		}
	}
	return nil
}
