package rules

import (
	"regexp"
	"strings"

	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// closedATX splits a line written as a closed ATX heading into its opening
// hashes, inner blanks, content, and closing hashes.
//
//nolint:gochecknoglobals // Compiled once.
var closedATX = regexp.MustCompile(`^(#{1,6})([ \t]*)(.*?)([ \t]*)(#+)[ \t]*$`)

// atxParts holds the byte offsets of a closed ATX heading line.
type atxParts struct {
	open, openEnd   int // opening hashes
	content, cEnd   int // content without surrounding blanks
	close, closeEnd int // closing hashes
}

func (p atxParts) leading() int  { return p.content - p.openEnd }
func (p atxParts) trailing() int { return p.close - p.cEnd }

// normalized returns the heading line from open to closeEnd with the inner
// blanks replaced by single spaces.
func (p atxParts) normalized(src []byte) string {
	var b strings.Builder
	b.Write(src[p.open:p.openEnd])
	b.WriteByte(' ')
	b.Write(src[p.content:p.cEnd])
	b.WriteByte(' ')
	b.Write(src[p.close:p.closeEnd])
	return b.String()
}

// parseClosedATX matches the text from start to the end of its line. The
// content must be non-empty, must not start with a hash, and must not end
// with an escaping backslash.
func parseClosedATX(doc *mdast.Document, start int) (atxParts, bool) {
	end := lineEndOf(doc, start)
	m := closedATX.FindSubmatchIndex(doc.Source[start:end])
	if m == nil || m[6] == m[7] || doc.Source[start+m[6]] == '#' || doc.Source[start+m[7]-1] == '\\' {
		return atxParts{}, false
	}
	return atxParts{
		open: start + m[2], openEnd: start + m[3],
		content: start + m[6], cEnd: start + m[7],
		close: start + m[10], closeEnd: start + m[11],
	}, true
}

// hashLineStart returns the offset of the first '#' of line n when the line
// starts with at most three blanks followed by a hash, or -1.
func hashLineStart(doc *mdast.Document, n int) int {
	span := doc.LineSpan(n)
	ws := blankRun(doc.Source, span.Start, span.End)
	pos := span.Start + ws
	if ws > 3 || pos >= span.End || doc.Source[pos] != '#' {
		return -1
	}
	return pos
}

// proseLines returns the lines that hold paragraph text and are not part of
// code, HTML, or front matter.
func proseLines(ctx *lint.Context) []int {
	doc := ctx.Doc
	var lines []int
	for _, id := range doc.OfKind(mdast.KindParagraph) {
		for n := doc.LineOf(id); n <= doc.EndLineOf(id); n++ {
			if ctx.InCode(n) || ctx.InHTML(n) || ctx.InFrontMatter(n) {
				continue
			}
			lines = append(lines, n)
		}
	}
	return lines
}

// MissingSpaceATXRule checks for a missing space after the opening hashes.
type MissingSpaceATXRule struct {
	lint.BaseRule
}

// NewMissingSpaceATXRule creates the MD018 rule.
func NewMissingSpaceATXRule() *MissingSpaceATXRule {
	return &MissingSpaceATXRule{
		BaseRule: lint.NewBaseRule("MD018", "no-missing-space-atx",
			"No space after hash on atx style header", "headers", "atx", "spaces").
			Fixable(),
	}
}

// Check reports paragraph lines that look like a heading without the space
// after the hashes and inserts it. Lines that also end in hashes belong to
// MD020.
func (r *MissingSpaceATXRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, n := range proseLines(ctx) {
		start := hashLineStart(doc, n)
		if start < 0 {
			continue
		}
		end := trimmedLineEnd(doc, start)
		if doc.Source[end-1] == '#' {
			continue
		}

		hashes := 0
		for start+hashes < end && doc.Source[start+hashes] == '#' {
			hashes++
		}
		if hashes > 6 || start+hashes >= end || isBlank(doc.Source[start+hashes]) {
			continue
		}

		at := start + hashes
		ctx.ReportFix(mdast.Span{Start: start, End: end}, r.Description(),
			lint.Fix{Span: mdast.Span{Start: at, End: at}, Replacement: " "})
	}
	return nil
}

// MultipleSpaceATXRule checks for extra blanks after the opening hashes.
type MultipleSpaceATXRule struct {
	lint.BaseRule
}

// NewMultipleSpaceATXRule creates the MD019 rule.
func NewMultipleSpaceATXRule() *MultipleSpaceATXRule {
	return &MultipleSpaceATXRule{
		BaseRule: lint.NewBaseRule("MD019", "no-multiple-space-atx",
			"Multiple spaces after hash on atx style header", "headers", "atx", "spaces").
			Fixable(),
	}
}

// Check reports ATX headings with more than one blank after the hashes and
// collapses them to one space.
func (r *MultipleSpaceATXRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindHeading) {
		node := doc.Node(id)
		if node.Heading.Style != mdast.HeadingATX {
			continue
		}
		at := node.Span.Start + node.Level()
		ws := blankRun(doc.Source, at, node.Span.End)
		if ws < 2 || at+ws >= node.Span.End {
			continue
		}
		ctx.ReportFix(node.Span, r.Description(),
			lint.Fix{Span: mdast.Span{Start: at, End: at + ws}, Replacement: " "})
	}
	return nil
}

// MissingSpaceClosedATXRule checks for missing spaces inside the hashes of
// closed ATX headings.
type MissingSpaceClosedATXRule struct {
	lint.BaseRule
}

// NewMissingSpaceClosedATXRule creates the MD020 rule.
func NewMissingSpaceClosedATXRule() *MissingSpaceClosedATXRule {
	return &MissingSpaceClosedATXRule{
		BaseRule: lint.NewBaseRule("MD020", "no-missing-space-closed-atx",
			"No space inside hashes on closed atx style header", "headers", "atx_closed", "spaces").
			Fixable(),
	}
}

// Check reports lines such as "#Title#" or "# Title#". Without the inner
// spaces the parser sees a paragraph or an open heading with a trailing
// hash, so both heading lines and paragraph lines are examined.
func (r *MissingSpaceClosedATXRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc

	var starts []int
	for _, id := range doc.OfKind(mdast.KindHeading) {
		if node := doc.Node(id); node.Heading.Style == mdast.HeadingATX {
			starts = append(starts, node.Span.Start)
		}
	}
	for _, n := range proseLines(ctx) {
		if start := hashLineStart(doc, n); start >= 0 {
			starts = append(starts, start)
		}
	}

	for _, start := range starts {
		parts, ok := parseClosedATX(doc, start)
		if !ok || (parts.leading() > 0 && parts.trailing() > 0) {
			continue
		}
		span := mdast.Span{Start: parts.open, End: parts.closeEnd}

		var b strings.Builder
		b.Write(doc.Source[parts.open:parts.openEnd])
		if parts.leading() == 0 {
			b.WriteByte(' ')
		}
		b.Write(doc.Source[parts.openEnd:parts.close])
		if parts.trailing() == 0 {
			b.WriteByte(' ')
		}
		b.Write(doc.Source[parts.close:parts.closeEnd])

		ctx.ReportFix(span, r.Description(), lint.Fix{Span: span, Replacement: b.String()})
	}
	return nil
}

// MultipleSpaceClosedATXRule checks for extra blanks inside the hashes of
// closed ATX headings.
type MultipleSpaceClosedATXRule struct {
	lint.BaseRule
}

// NewMultipleSpaceClosedATXRule creates the MD021 rule.
func NewMultipleSpaceClosedATXRule() *MultipleSpaceClosedATXRule {
	return &MultipleSpaceClosedATXRule{
		BaseRule: lint.NewBaseRule("MD021", "no-multiple-space-closed-atx",
			"Multiple spaces inside hashes on closed atx style header", "headers", "atx_closed", "spaces").
			Fixable(),
	}
}

// Check reports closed ATX headings with more than one blank on either
// side of the content and collapses them.
func (r *MultipleSpaceClosedATXRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindHeading) {
		node := doc.Node(id)
		if node.Heading.Style != mdast.HeadingATXClosed {
			continue
		}
		parts, ok := parseClosedATX(doc, node.Span.Start)
		if !ok || (parts.leading() < 2 && parts.trailing() < 2) {
			continue
		}
		span := mdast.Span{Start: parts.open, End: parts.closeEnd}
		ctx.ReportFix(span, r.Description(), lint.Fix{Span: span, Replacement: parts.normalized(doc.Source)})
	}
	return nil
}
