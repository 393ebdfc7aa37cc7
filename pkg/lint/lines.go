package lint

import "github.com/yaklabco/downlint/pkg/mdast"

type lineFlags uint8

const (
	lineCode lineFlags = 1 << iota
	lineFence
	lineFrontMatter
	lineHTML
	lineTable
)

// LineInfo classifies each line of a document. It is computed once per
// document and shared read-only by every rule.
type LineInfo struct {
	flags []lineFlags
}

// NewLineInfo classifies the lines of doc.
func NewLineInfo(doc *mdast.Document) *LineInfo {
	info := &LineInfo{flags: make([]lineFlags, doc.LineCount()+1)}

	if start, end := doc.FrontMatterLines(); start > 0 {
		info.mark(start, end, lineFrontMatter)
	}

	for _, id := range doc.OfKind(mdast.KindCodeBlock, mdast.KindHTMLBlock, mdast.KindTable) {
		first, last := doc.LineOf(id), doc.EndLineOf(id)
		node := doc.Node(id)
		switch node.Kind {
		case mdast.KindCodeBlock:
			info.mark(first, last, lineCode)
			if node.Code != nil && node.Code.Fenced {
				info.mark(first, first, lineFence)
				if node.Code.Closed && last > first {
					info.mark(last, last, lineFence)
				}
			}
		case mdast.KindHTMLBlock:
			info.mark(first, last, lineHTML)
		case mdast.KindTable:
			info.mark(first, last, lineTable)
		}
	}
	return info
}

func (l *LineInfo) mark(first, last int, flag lineFlags) {
	for n := max(first, 1); n <= last && n < len(l.flags); n++ {
		l.flags[n] |= flag
	}
}

func (l *LineInfo) has(line int, flag lineFlags) bool {
	return line > 0 && line < len(l.flags) && l.flags[line]&flag != 0
}

// InCode reports whether the 1-based line belongs to a code block,
// including fence lines.
func (l *LineInfo) InCode(line int) bool {
	return l.has(line, lineCode)
}

// IsFence reports whether the 1-based line is an opening or closing fence.
func (l *LineInfo) IsFence(line int) bool {
	return l.has(line, lineFence)
}

// InFrontMatter reports whether the 1-based line belongs to front matter.
func (l *LineInfo) InFrontMatter(line int) bool {
	return l.has(line, lineFrontMatter)
}

// InHTML reports whether the 1-based line belongs to an HTML block.
func (l *LineInfo) InHTML(line int) bool {
	return l.has(line, lineHTML)
}

// InTable reports whether the 1-based line belongs to a table.
func (l *LineInfo) InTable(line int) bool {
	return l.has(line, lineTable)
}
