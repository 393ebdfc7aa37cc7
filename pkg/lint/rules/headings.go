package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Heading style values for MD003.
const (
	styleConsistent          = "consistent"
	styleATX                 = "atx"
	styleATXClosed           = "atx_closed"
	styleSetext              = "setext"
	styleSetextWithATX       = "setext_with_atx"
	styleSetextWithATXClosed = "setext_with_atx_closed"
)

// HeaderIncrementRule checks that heading levels only increase one at a time.
type HeaderIncrementRule struct {
	lint.BaseRule
}

// NewHeaderIncrementRule creates the MD001 rule.
func NewHeaderIncrementRule() *HeaderIncrementRule {
	return &HeaderIncrementRule{
		BaseRule: lint.NewBaseRule("MD001", "header-increment",
			"Header levels should only increment by one level at a time", "headers"),
	}
}

// Check reports top-level headings that skip a level.
func (r *HeaderIncrementRule) Check(ctx *lint.Context) error {
	prev := 0
	for _, id := range topLevelHeadings(ctx.Doc) {
		level := ctx.Doc.Node(id).Level()
		if prev > 0 && level > prev+1 {
			reportf(ctx, r, ctx.Doc.Node(id).Span, "Expected: h%d; Actual: h%d", prev+1, level)
		}
		prev = level
	}
	return nil
}

// FirstHeaderH1Rule checks the level of the first heading.
type FirstHeaderH1Rule struct {
	lint.BaseRule
}

// NewFirstHeaderH1Rule creates the MD002 rule.
func NewFirstHeaderH1Rule() *FirstHeaderH1Rule {
	return &FirstHeaderH1Rule{
		BaseRule: lint.NewBaseRule("MD002", "first-header-h1",
			"First header should be a top level header", "headers").
			WithParams(config.IntParam(paramLevel, 1, "Expected level of the first heading")),
	}
}

// Check reports the first top-level heading when its level is not the
// configured one.
func (r *FirstHeaderH1Rule) Check(ctx *lint.Context) error {
	headings := topLevelHeadings(ctx.Doc)
	if len(headings) == 0 {
		return nil
	}
	want := ctx.Int(paramLevel)
	first := ctx.Doc.Node(headings[0])
	if first.Level() != want {
		reportf(ctx, r, first.Span, "Expected: h%d; Actual: h%d", want, first.Level())
	}
	return nil
}

// HeaderStyleRule checks that headings use one style.
type HeaderStyleRule struct {
	lint.BaseRule
}

// NewHeaderStyleRule creates the MD003 rule.
func NewHeaderStyleRule() *HeaderStyleRule {
	return &HeaderStyleRule{
		BaseRule: lint.NewBaseRule("MD003", "header-style", "Header style", "headers").
			WithParams(config.StringParam(paramStyle, styleConsistent, "Required heading style",
				styleConsistent, styleATX, styleATXClosed, styleSetext,
				styleSetextWithATX, styleSetextWithATXClosed)),
	}
}

// Check reports headings whose style differs from the configured style.
// In consistent mode the first heading sets the style; a setext first
// heading does not constrain levels 3 and up, which cannot be setext.
func (r *HeaderStyleRule) Check(ctx *lint.Context) error {
	style := ctx.String(paramStyle)
	var first *mdast.HeadingStyle

	for _, id := range ctx.Doc.OfKind(mdast.KindHeading) {
		node := ctx.Doc.Node(id)
		actual := node.Heading.Style

		var want mdast.HeadingStyle
		switch style {
		case styleATX:
			want = mdast.HeadingATX
		case styleATXClosed:
			want = mdast.HeadingATXClosed
		case styleSetext:
			want = mdast.HeadingSetext
		case styleSetextWithATX, styleSetextWithATXClosed:
			want = mdast.HeadingSetext
			if node.Level() > 2 {
				want = mdast.HeadingATX
				if style == styleSetextWithATXClosed {
					want = mdast.HeadingATXClosed
				}
			}
		default:
			if first == nil {
				first = &actual
				continue
			}
			want = *first
			if want == mdast.HeadingSetext && node.Level() > 2 {
				continue
			}
		}

		if actual != want {
			reportf(ctx, r, node.Span, "Expected: %s; Actual: %s", want, actual)
		}
	}
	return nil
}

// BlanksAroundHeadersRule checks for blank lines around headings.
type BlanksAroundHeadersRule struct {
	lint.BaseRule
}

// NewBlanksAroundHeadersRule creates the MD022 rule.
func NewBlanksAroundHeadersRule() *BlanksAroundHeadersRule {
	return &BlanksAroundHeadersRule{
		BaseRule: lint.NewBaseRule("MD022", "blanks-around-headers",
			"Headers should be surrounded by blank lines", "headers", "blank_lines"),
	}
}

// Check reports headings with a sibling block on the adjacent line.
func (r *BlanksAroundHeadersRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindHeading) {
		span := doc.Node(id).Span
		if prev := prevBlock(doc, id); prev != mdast.NoNode && !blankLinesBetween(doc, prev, id) {
			reportf(ctx, r, span, "Expected: 1; Actual: 0; Above")
		}
		if next := doc.NextSibling(id); next != mdast.NoNode && !blankLinesBetween(doc, id, next) {
			reportf(ctx, r, span, "Expected: 1; Actual: 0; Below")
		}
	}
	return nil
}

// HeaderStartLeftRule checks that headings are not indented.
type HeaderStartLeftRule struct {
	lint.BaseRule
}

// NewHeaderStartLeftRule creates the MD023 rule.
func NewHeaderStartLeftRule() *HeaderStartLeftRule {
	return &HeaderStartLeftRule{
		BaseRule: lint.NewBaseRule("MD023", "header-start-left",
			"Headers must start at the beginning of the line", "headers", "spaces").
			Fixable(),
	}
}

// Check reports indented top-level headings and removes the indentation.
func (r *HeaderStartLeftRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range topLevelHeadings(doc) {
		span := doc.Node(id).Span
		start := lineStartOf(doc, span.Start)
		if start == span.Start || blankRun(doc.Source, start, span.Start) != span.Start-start {
			continue
		}
		ctx.ReportFix(mdast.Span{Start: start, End: span.End}, r.Description(),
			lint.Fix{Span: mdast.Span{Start: start, End: span.Start}})
	}
	return nil
}

// DuplicateHeaderRule checks for headings with the same text.
type DuplicateHeaderRule struct {
	lint.BaseRule
}

// NewDuplicateHeaderRule creates the MD024 rule.
func NewDuplicateHeaderRule() *DuplicateHeaderRule {
	return &DuplicateHeaderRule{
		BaseRule: lint.NewBaseRule("MD024", "no-duplicate-header",
			"Multiple headers with the same content", "headers").
			WithParams(config.BoolParam("allow_different_nesting", false,
				"Allow the same text under different parent headings")),
	}
}

// Check reports every heading whose text repeats an earlier one. With
// allow_different_nesting only headings under the same chain of parent
// headings count as duplicates.
func (r *DuplicateHeaderRule) Check(ctx *lint.Context) error {
	nested := ctx.Bool("allow_different_nesting")
	seen := make(map[string]bool)
	// parents[i] is the text of the open heading of level i+1.
	var parents [6]string

	for _, id := range ctx.Doc.OfKind(mdast.KindHeading) {
		node := ctx.Doc.Node(id)
		text := headingText(ctx.Doc, id)
		level := min(max(node.Level(), 1), len(parents))

		key := text
		if nested {
			key = strings.Join(parents[:level-1], "\x00") + "\x00" + text
		}
		if seen[key] {
			reportf(ctx, r, node.Span, "Text: %s", text)
		}
		seen[key] = true

		parents[level-1] = text
		for i := level; i < len(parents); i++ {
			parents[i] = ""
		}
	}
	return nil
}

// SingleH1Rule checks that a document has one top-level heading.
type SingleH1Rule struct {
	lint.BaseRule
}

// NewSingleH1Rule creates the MD025 rule.
func NewSingleH1Rule() *SingleH1Rule {
	return &SingleH1Rule{
		BaseRule: lint.NewBaseRule("MD025", "single-h1",
			"Multiple top level headers in the same document", "headers").
			WithParams(config.IntParam(paramLevel, 1, "Level of the title heading")),
	}
}

// Check reports every top-level heading of the title level after the first.
func (r *SingleH1Rule) Check(ctx *lint.Context) error {
	level := ctx.Int(paramLevel)
	seen := false
	for _, id := range topLevelHeadings(ctx.Doc) {
		if ctx.Doc.Node(id).Level() != level {
			continue
		}
		if seen {
			ctx.Report(id, r.Description())
		}
		seen = true
	}
	return nil
}

//nolint:gochecknoglobals // Compiled once.
var entityPattern = regexp.MustCompile(`&#?[0-9A-Za-z]+;$`)

// TrailingPunctuationRule checks for punctuation at the end of headings.
type TrailingPunctuationRule struct {
	lint.BaseRule
}

// NewTrailingPunctuationRule creates the MD026 rule.
func NewTrailingPunctuationRule() *TrailingPunctuationRule {
	return &TrailingPunctuationRule{
		BaseRule: lint.NewBaseRule("MD026", "no-trailing-punctuation",
			"Trailing punctuation in header", "headers").
			WithParams(config.StringParam(paramPunctuation, defaultPunctuation, "Characters treated as punctuation")).
			Fixable(),
	}
}

// Check reports headings whose text ends in punctuation and removes it.
// A trailing HTML entity such as &amp; is not punctuation.
func (r *TrailingPunctuationRule) Check(ctx *lint.Context) error {
	punct := ctx.String(paramPunctuation)
	if punct == "" {
		return nil
	}
	doc := ctx.Doc

	for _, id := range doc.OfKind(mdast.KindHeading) {
		children := doc.Children(id)
		if len(children) == 0 {
			continue
		}
		last := children[len(children)-1]
		if doc.Kind(last) != mdast.KindText {
			continue
		}
		text := doc.Text(last)
		if entityPattern.Match(text) {
			continue
		}

		textSpan := doc.Node(last).Span
		cut := len(text)
		for cut > 0 {
			char, size := utf8.DecodeLastRune(text[:cut])
			if !strings.ContainsRune(punct, char) {
				break
			}
			cut -= size
		}
		if cut == len(text) {
			continue
		}

		char, _ := utf8.DecodeLastRune(text)
		fixSpan := mdast.Span{Start: textSpan.Start + cut, End: textSpan.End}
		ctx.ReportFix(doc.Node(id).Span, detail(r.Description(), "Punctuation: '%c'", char),
			lint.Fix{Span: fixSpan})
	}
	return nil
}

// EmphasisAsHeaderRule checks for paragraphs that are only emphasized text.
type EmphasisAsHeaderRule struct {
	lint.BaseRule
}

// NewEmphasisAsHeaderRule creates the MD036 rule.
func NewEmphasisAsHeaderRule() *EmphasisAsHeaderRule {
	return &EmphasisAsHeaderRule{
		BaseRule: lint.NewBaseRule("MD036", "no-emphasis-as-header",
			"Emphasis used instead of a header", "headers", "emphasis").
			WithParams(config.StringParam(paramPunctuation, defaultPunctuation,
				"Trailing characters that mark the text as a sentence")),
	}
}

// Check reports single-line paragraphs made of one emphasis or strong span
// holding plain text that does not end in punctuation.
func (r *EmphasisAsHeaderRule) Check(ctx *lint.Context) error {
	punct := ctx.String(paramPunctuation)
	doc := ctx.Doc

	for _, id := range doc.OfKind(mdast.KindParagraph) {
		if doc.HasAncestor(id, mdast.KindListItem) {
			continue
		}
		children := doc.Children(id)
		if len(children) != 1 || doc.LineOf(id) != doc.EndLineOf(id) {
			continue
		}
		emph := children[0]
		if kind := doc.Kind(emph); kind != mdast.KindEmphasis && kind != mdast.KindStrong {
			continue
		}
		if !onlyText(doc, emph) {
			continue
		}
		text := strings.TrimSpace(doc.PlainText(emph))
		if text == "" {
			continue
		}
		char, _ := utf8.DecodeLastRuneInString(text)
		if strings.ContainsRune(punct, char) {
			continue
		}
		ctx.Report(emph, r.Description())
	}
	return nil
}

// onlyText reports whether every child of id is a Text node.
func onlyText(doc *mdast.Document, id mdast.NodeID) bool {
	for _, child := range doc.Children(id) {
		if doc.Kind(child) != mdast.KindText {
			return false
		}
	}
	return len(doc.Children(id)) > 0
}

// FirstLineH1Rule checks that a document opens with a title heading.
type FirstLineH1Rule struct {
	lint.BaseRule
}

// NewFirstLineH1Rule creates the MD041 rule.
func NewFirstLineH1Rule() *FirstLineH1Rule {
	return &FirstLineH1Rule{
		BaseRule: lint.NewBaseRule("MD041", "first-line-h1",
			"First line in file should be a top level header", "headers").
			WithParams(
				config.IntParam(paramLevel, 1, "Level of the title heading"),
				config.StringParam("front_matter_title", "title",
					"Front matter key that provides the title; empty disables the check"),
			),
	}
}

//nolint:gochecknoglobals // Compiled once.
var htmlHeading = regexp.MustCompile(`(?i)^<h([1-6])[\s>]`)

// Check reports the first block when it is not a heading of the title
// level. A title in front matter or an HTML heading satisfies the rule.
func (r *FirstLineH1Rule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	if key := ctx.String("front_matter_title"); key != "" && doc.Meta != nil {
		if _, ok := doc.Meta[key]; ok {
			return nil
		}
	}

	first := firstBlock(doc)
	if first == mdast.NoNode {
		return nil
	}
	level := ctx.Int(paramLevel)
	node := doc.Node(first)

	switch node.Kind {
	case mdast.KindHeading:
		if node.Level() == level {
			return nil
		}
	case mdast.KindHTMLBlock:
		if m := htmlHeading.FindSubmatch(doc.Text(first)); m != nil && int(m[1][0]-'0') == level {
			return nil
		}
	}
	ctx.ReportLine(doc.LineOf(first), r.Description())
	return nil
}
