package rules

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// SpaceInEmphasisRule checks for blanks just inside emphasis markers.
type SpaceInEmphasisRule struct {
	lint.BaseRule
}

// NewSpaceInEmphasisRule creates the MD037 rule.
func NewSpaceInEmphasisRule() *SpaceInEmphasisRule {
	return &SpaceInEmphasisRule{
		BaseRule: lint.NewBaseRule("MD037", "no-space-in-emphasis",
			"Spaces inside emphasis markers", "whitespace", "emphasis").
			Fixable(),
	}
}

// Check finds marker pairs such as "* text *" or "__ text__" that failed to
// become emphasis because of the inner blanks, and trims the blanks. Code
// spans, raw HTML, autolinks, and link destinations are not searched.
func (r *SpaceInEmphasisRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, id := range doc.OfKind(mdast.KindParagraph, mdast.KindHeading, mdast.KindTableCell) {
		skip := opaqueRanges(doc, id)
		span := doc.Node(id).Span
		for n := doc.LineOf(id); n <= doc.EndLineOf(id); n++ {
			line := doc.LineSpan(n)
			from := max(line.Start, span.Start)
			to := min(line.End, span.End)
			if from < to {
				r.scan(ctx, from, to, skip)
			}
		}
	}
	return nil
}

// scan looks for spaced emphasis in src[from:to].
func (r *SpaceInEmphasisRule) scan(ctx *lint.Context, from, to int, skip []mdast.Span) {
	src := ctx.Doc.Source
	for pos := from; pos < to; {
		char := src[pos]
		if (char != '*' && char != '_') || inSpans(skip, pos) || (pos > from && src[pos-1] == '\\') {
			pos++
			continue
		}
		run := runLength(src, pos, to, char)
		if run > 3 || (pos > from && isWordByte(src, pos-1)) {
			pos += run
			continue
		}

		open := pos
		inner := open + run
		closeAt := findCloser(src, inner, to, char, run, skip)
		if closeAt < 0 {
			pos += run
			continue
		}

		content := src[inner:closeAt]
		trimmed := bytes.Trim(content, " \t")
		if len(trimmed) > 0 && len(trimmed) != len(content) {
			marker := string(src[open:inner])
			span := mdast.Span{Start: open, End: closeAt + run}
			ctx.ReportFix(span, detail(r.Description(), "Context: %s", src[span.Start:span.End]),
				lint.Fix{Span: span, Replacement: marker + string(trimmed) + marker})
		}
		pos = closeAt + run
	}
}

// findCloser returns the offset of the next run of exactly n chars in
// src[from:to] that is not followed by a word character, or -1.
func findCloser(src []byte, from, to int, char byte, n int, skip []mdast.Span) int {
	for pos := from; pos < to; {
		if src[pos] != char || inSpans(skip, pos) {
			pos++
			continue
		}
		run := runLength(src, pos, to, char)
		if run == n && (pos+run >= to || !isWordByte(src, pos+run)) {
			return pos
		}
		pos += run
	}
	return -1
}

func runLength(src []byte, pos, end int, char byte) int {
	n := 0
	for pos+n < end && src[pos+n] == char {
		n++
	}
	return n
}

func isWordByte(src []byte, pos int) bool {
	r, _ := utf8.DecodeRune(src[pos:])
	if r == utf8.RuneError {
		// Inside a multi-byte rune; look back for its start.
		r, _ = utf8.DecodeLastRune(src[:pos+1])
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// opaqueRanges returns the spans under id whose characters are not
// Markdown emphasis: code spans, raw HTML, autolinks, and the destination
// part of links and images.
func opaqueRanges(doc *mdast.Document, id mdast.NodeID) []mdast.Span {
	var spans []mdast.Span
	doc.Inspect(id, func(cur mdast.NodeID) bool {
		node := doc.Node(cur)
		switch node.Kind {
		case mdast.KindCodeSpan, mdast.KindRawHTML, mdast.KindAutoLink:
			spans = append(spans, node.Span)
			return false
		case mdast.KindLink, mdast.KindImage:
			tail := node.Span.Start
			if children := node.Children; len(children) > 0 {
				tail = doc.Node(children[len(children)-1]).Span.End
			}
			spans = append(spans, mdast.Span{Start: tail, End: node.Span.End})
		}
		return true
	})
	return spans
}

func inSpans(spans []mdast.Span, pos int) bool {
	for _, s := range spans {
		if pos >= s.Start && pos < s.End {
			return true
		}
	}
	return false
}
