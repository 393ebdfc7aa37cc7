package rules

import (
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// MultipleSpaceBlockquoteRule checks for extra blanks after '>'.
type MultipleSpaceBlockquoteRule struct {
	lint.BaseRule
}

// NewMultipleSpaceBlockquoteRule creates the MD027 rule.
func NewMultipleSpaceBlockquoteRule() *MultipleSpaceBlockquoteRule {
	return &MultipleSpaceBlockquoteRule{
		BaseRule: lint.NewBaseRule("MD027", "no-multiple-space-blockquote",
			"Multiple spaces after blockquote symbol", "blockquote", "whitespace", "indentation").
			Fixable(),
	}
}

// Check examines the first line of each block directly inside a blockquote,
// and every line of its paragraphs, and collapses the blanks after the last
// '>' to one space. Code blocks are skipped since their indentation is
// content.
func (r *MultipleSpaceBlockquoteRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	seen := make(map[int]bool)

	for _, quote := range doc.OfKind(mdast.KindBlockQuote) {
		for _, child := range doc.Children(quote) {
			switch doc.Kind(child) {
			case mdast.KindBlockQuote, mdast.KindCodeBlock:
				continue
			case mdast.KindParagraph:
				for n := doc.LineOf(child); n <= doc.EndLineOf(child); n++ {
					r.checkLine(ctx, n, seen)
				}
			default:
				r.checkLine(ctx, doc.LineOf(child), seen)
			}
		}
	}
	return nil
}

func (r *MultipleSpaceBlockquoteRule) checkLine(ctx *lint.Context, n int, seen map[int]bool) {
	if seen[n] || ctx.InCode(n) {
		return
	}
	seen[n] = true

	doc := ctx.Doc
	span := doc.LineSpan(n)
	src := doc.Source

	pos := span.Start + blankRun(src, span.Start, span.End)
	marker := -1
	ws := 0
	for pos < span.End && src[pos] == '>' {
		marker = pos
		ws = blankRun(src, pos+1, span.End)
		pos += 1 + ws
	}
	if marker < 0 || ws < 2 || pos >= span.End {
		return
	}

	violation := mdast.Span{Start: marker, End: pos}
	ctx.ReportFix(violation, r.Description(),
		lint.Fix{Span: mdast.Span{Start: marker + 1, End: pos}, Replacement: " "})
}

// BlanksBlockquoteRule checks for blank lines between blockquotes.
type BlanksBlockquoteRule struct {
	lint.BaseRule
}

// NewBlanksBlockquoteRule creates the MD028 rule.
func NewBlanksBlockquoteRule() *BlanksBlockquoteRule {
	return &BlanksBlockquoteRule{
		BaseRule: lint.NewBaseRule("MD028", "no-blanks-blockquote",
			"Blank line inside blockquote", "blockquote", "whitespace"),
	}
}

// Check reports the blank lines that split what reads as one blockquote
// into two adjacent ones.
func (r *BlanksBlockquoteRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, quote := range doc.OfKind(mdast.KindBlockQuote) {
		next := doc.NextSibling(quote)
		if next == mdast.NoNode || doc.Kind(next) != mdast.KindBlockQuote {
			continue
		}
		for n := doc.EndLineOf(quote) + 1; n < doc.LineOf(next); n++ {
			if doc.IsBlankLine(n) {
				ctx.ReportLine(n, r.Description())
			}
		}
	}
	return nil
}
