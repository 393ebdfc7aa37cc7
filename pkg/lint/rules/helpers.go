package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// Parameter names shared by several rules.
const (
	paramStyle       = "style"
	paramLevel       = "level"
	paramPunctuation = "punctuation"
	paramCodeBlocks  = "code_blocks"
)

const defaultPunctuation = ".,;:!?"

// detail appends a bracketed detail to a rule description.
func detail(desc, format string, args ...any) string {
	return desc + " [" + fmt.Sprintf(format, args...) + "]"
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// blankRun returns the number of spaces and tabs starting at pos.
func blankRun(src []byte, pos, end int) int {
	n := 0
	for pos+n < end && isBlank(src[pos+n]) {
		n++
	}
	return n
}

// lineStartOf returns the offset of the start of the line holding offset.
func lineStartOf(doc *mdast.Document, offset int) int {
	return doc.LineSpan(doc.LineAt(offset)).Start
}

// lineEndOf returns the offset of the end of the line holding offset,
// excluding the terminator.
func lineEndOf(doc *mdast.Document, offset int) int {
	return doc.LineSpan(doc.LineAt(offset)).End
}

// trimmedLineEnd returns the end of the line holding offset with trailing
// blanks removed.
func trimmedLineEnd(doc *mdast.Document, offset int) int {
	span := doc.LineSpan(doc.LineAt(offset))
	end := span.End
	for end > span.Start && isBlank(doc.Source[end-1]) {
		end--
	}
	return end
}

// runeOffset returns the byte offset within line of the rune at column
// (1-based), or -1 when the line is shorter.
func runeOffset(line []byte, column int) int {
	col := 1
	for i := 0; i < len(line); {
		if col == column {
			return i
		}
		_, size := utf8.DecodeRune(line[i:])
		i += size
		col++
	}
	return -1
}

// blankLinesBetween reports whether at least one blank line separates the
// end of a and the start of b.
func blankLinesBetween(doc *mdast.Document, a, b mdast.NodeID) bool {
	return doc.LineOf(b)-doc.EndLineOf(a) >= 2
}

// prevBlock returns the previous sibling of id, ignoring front matter.
func prevBlock(doc *mdast.Document, id mdast.NodeID) mdast.NodeID {
	prev := doc.PrevSibling(id)
	if prev != mdast.NoNode && doc.Kind(prev) == mdast.KindFrontMatter {
		return mdast.NoNode
	}
	return prev
}

// firstBlock returns the first top-level block after any front matter.
func firstBlock(doc *mdast.Document) mdast.NodeID {
	for _, id := range doc.Blocks() {
		if doc.Kind(id) != mdast.KindFrontMatter {
			return id
		}
	}
	return mdast.NoNode
}

// headingText returns the plain text of a heading with surrounding blanks
// removed.
func headingText(doc *mdast.Document, id mdast.NodeID) string {
	return strings.TrimSpace(doc.PlainText(id))
}

// topLevelHeadings returns the headings that are direct children of the
// document.
func topLevelHeadings(doc *mdast.Document) []mdast.NodeID {
	var ids []mdast.NodeID
	for _, id := range doc.Blocks() {
		if doc.Kind(id) == mdast.KindHeading {
			ids = append(ids, id)
		}
	}
	return ids
}

// codeContentLines returns the inclusive line range holding the content of
// a code block, excluding fences. first > last for an empty block.
func codeContentLines(doc *mdast.Document, id mdast.NodeID) (int, int) {
	first, last := doc.LineOf(id), doc.EndLineOf(id)
	code := doc.Node(id).Code
	if code != nil && code.Fenced {
		first++
		if code.Closed {
			last--
		}
	}
	return first, last
}

// reportf reports a violation over span whose message is the rule
// description plus a detail.
func reportf(ctx *lint.Context, rule lint.Rule, span mdast.Span, format string, args ...any) {
	ctx.ReportSpan(span, detail(rule.Description(), format, args...))
}
