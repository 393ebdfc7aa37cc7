package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/downlint/pkg/mdast"
)

// mapper copies a goldmark tree into an mdast arena. goldmark keeps the
// byte segments of block content and inline text but not the positions of
// markers, so spans are recovered from those segments and, for constructs
// with no content, by scanning forward from a cursor that only ever moves
// down the document.
type mapper struct {
	b    *mdast.Builder
	src  []byte
	scan scanner
	fm   mdast.Span

	// cursor is the earliest offset the next unmapped block can start at.
	cursor int
	// inline is the end of the previous inline sibling.
	inline int
	// items is the stack of open list items.
	items []mdast.NodeID
}

func newMapper(b *mdast.Builder, fm mdast.Span) *mapper {
	return &mapper{
		b:    b,
		src:  b.Source(),
		scan: scanner{src: b.Source(), lines: b.Lines()},
		fm:   fm,
	}
}

func (m *mapper) mapDocument(doc ast.Node) {
	if !m.fm.IsEmpty() {
		m.b.Add(mdast.Root, mdast.Node{Kind: mdast.KindFrontMatter, Span: m.fm})
		m.advance(m.fm)
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if !m.fm.IsEmpty() {
			if off := firstOffset(child); off >= 0 && off < m.fm.End {
				continue
			}
		}
		m.mapBlock(mdast.Root, child)
	}
}

// advance moves the block cursor past the last line of span.
func (m *mapper) advance(span mdast.Span) {
	off := span.Start
	if span.End > span.Start {
		off = span.End - 1
	}
	if off >= len(m.src) {
		m.cursor = len(m.src)
		return
	}
	if next := m.scan.nextLine(off); next > m.cursor {
		m.cursor = next
	}
}

func (m *mapper) setSpan(id mdast.NodeID, start, end int) mdast.Span {
	start = min(max(start, 0), len(m.src))
	end = min(max(end, start), len(m.src))
	span := mdast.Span{Start: start, End: end}
	m.b.SetSpan(id, span)
	return span
}

// childBounds returns the start of the first child and the end of the last.
func (m *mapper) childBounds(id mdast.NodeID) (int, int, bool) {
	children := m.b.Node(id).Children
	if len(children) == 0 {
		return 0, 0, false
	}
	first := m.b.Node(children[0]).Span
	last := m.b.Node(children[len(children)-1]).Span
	return first.Start, last.End, true
}

func (m *mapper) mapBlock(parent mdast.NodeID, n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		m.mapHeading(parent, node)
	case *ast.Paragraph, *ast.TextBlock:
		m.mapParagraph(parent, n)
	case *ast.List:
		m.mapList(parent, node)
	case *ast.Blockquote:
		m.mapBlockquote(parent, node)
	case *ast.FencedCodeBlock:
		m.mapFencedCode(parent, node)
	case *ast.CodeBlock:
		m.mapIndentedCode(parent, node)
	case *ast.ThematicBreak:
		m.mapThematicBreak(parent)
	case *ast.HTMLBlock:
		m.mapHTMLBlock(parent, node)
	case *east.Table:
		m.mapTable(parent, node)
	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if child.Type() == ast.TypeBlock {
				m.mapBlock(parent, child)
			}
		}
	}
}

func (m *mapper) mapHeading(parent mdast.NodeID, h *ast.Heading) {
	attrs := &mdast.HeadingAttrs{Level: h.Level}
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindHeading, Heading: attrs})

	var start, end int
	lines := h.Lines()
	if lines.Len() > 0 {
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		lineStart := m.scan.lineStart(first.Start)

		hashEnd := first.Start
		for hashEnd > lineStart && isBlank(m.src[hashEnd-1]) {
			hashEnd--
		}
		hashStart := hashEnd
		for hashStart > lineStart && m.src[hashStart-1] == '#' {
			hashStart--
		}

		if hashStart < hashEnd {
			start = hashStart
			end = m.scan.trimmedLineEnd(last.Start)
			contentEnd := max(m.scan.contentEnd(last.Start, last.Stop), first.Start)
			if isClosingSequence(m.src[contentEnd:end]) {
				attrs.Style = mdast.HeadingATXClosed
			}
		} else {
			attrs.Style = mdast.HeadingSetext
			start = first.Start
			end = m.scan.contentEnd(last.Start, last.Stop)
			under := m.scan.nextLine(m.scan.lastContentByte(last.Start, last.Stop))
			if under < len(m.src) {
				underEnd := m.scan.lineEnd(under)
				pos := skipBlanks(m.src, under, underEnd)
				for pos < underEnd && m.src[pos] == '>' {
					pos = skipBlanks(m.src, pos+1, underEnd)
				}
				if isSetextUnderline(m.src, pos, underEnd) {
					end = m.scan.trimmedLineEnd(pos)
				}
			}
		}
	} else {
		start = m.scan.seek(m.cursor, -1, func(pos, lineEnd int) bool {
			return isATXStart(m.src, pos, lineEnd)
		})
		if start < 0 {
			start = m.cursor
		}
		end = m.scan.trimmedLineEnd(min(start, len(m.src)))
		open := start
		for open < end && m.src[open] == '#' {
			open++
		}
		if isClosingSequence(m.src[open:end]) {
			attrs.Style = mdast.HeadingATXClosed
		}
	}

	m.inline = start
	m.mapInlines(id, h)
	m.advance(m.setSpan(id, start, end))
}

// isClosingSequence reports whether text is blanks followed by a run of '#'.
func isClosingSequence(text []byte) bool {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || len(trimmed) == len(text) {
		return false
	}
	for _, c := range trimmed {
		if c != '#' {
			return false
		}
	}
	return isBlank(text[0])
}

func (m *mapper) mapParagraph(parent mdast.NodeID, n ast.Node) {
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindParagraph})

	lines := n.Lines()
	start, end := m.cursor, m.cursor
	if lines.Len() > 0 {
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		start = first.Start
		end = max(m.scan.contentEnd(last.Start, last.Stop), start)
	}

	m.inline = start
	m.mapInlines(id, n)
	if _, childEnd, ok := m.childBounds(id); ok && childEnd > end {
		end = childEnd
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapList(parent mdast.NodeID, list *ast.List) {
	entry := m.cursor
	attrs := &mdast.ListAttrs{
		Ordered: list.IsOrdered(),
		Marker:  list.Marker,
		Start:   list.Start,
		Tight:   list.IsTight,
	}
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindList, List: attrs})

	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		if item, ok := child.(*ast.ListItem); ok {
			m.mapListItem(id, item, attrs)
		}
	}

	start, end, ok := m.childBounds(id)
	if !ok {
		start, end = entry, entry
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapListItem(parent mdast.NodeID, item *ast.ListItem, list *mdast.ListAttrs) {
	entry := m.cursor
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindListItem, Item: &mdast.ItemAttrs{}})

	m.items = append(m.items, id)
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		m.mapBlock(id, child)
	}
	m.items = m.items[:len(m.items)-1]

	isMarker := func(pos, lineEnd int) bool {
		return m.markerLen(pos, lineEnd, list) > 0
	}

	childStart, childEnd, hasChildren := m.childBounds(id)
	start := -1
	if hasChildren {
		start = m.markerBefore(childStart, entry, list)
		if start < 0 {
			start = m.scan.seek(entry, childStart, isMarker)
		}
	} else {
		start = m.scan.seek(entry, -1, isMarker)
	}
	if start < 0 {
		start = entry
		if hasChildren {
			start = childStart
		}
	}

	lineEnd := m.scan.lineEnd(min(start, len(m.src)))
	markerLen := m.markerLen(start, lineEnd, list)
	attrs := m.b.Node(id).Item
	attrs.Marker = mdast.Span{Start: start, End: start + markerLen}
	if list.Ordered {
		_, attrs.Number = orderedLen(m.src, start, lineEnd)
	}

	end := start + markerLen
	if hasChildren && childEnd > end {
		end = childEnd
	}
	m.advance(m.setSpan(id, start, end))
}

// markerLen returns the length of the list marker for list at pos, or 0.
func (m *mapper) markerLen(pos, lineEnd int, list *mdast.ListAttrs) int {
	if list.Ordered {
		n, _ := orderedLen(m.src, pos, lineEnd)
		if n > 0 && m.src[pos+n-1] == list.Marker {
			return n
		}
		return 0
	}
	if pos < lineEnd && m.src[pos] == list.Marker {
		return bulletLen(m.src, pos, lineEnd)
	}
	return 0
}

// markerBefore finds a list marker directly before content on the same
// line, or -1.
func (m *mapper) markerBefore(content, floor int, list *mdast.ListAttrs) int {
	lineStart := max(m.scan.lineStart(content), floor)
	pos := content
	for pos > lineStart && isBlank(m.src[pos-1]) {
		pos--
	}
	if pos <= lineStart {
		return -1
	}

	if !list.Ordered {
		if m.src[pos-1] == list.Marker {
			return pos - 1
		}
		return -1
	}

	if m.src[pos-1] != list.Marker {
		return -1
	}
	digits := pos - 1
	for digits > lineStart && m.src[digits-1] >= '0' && m.src[digits-1] <= '9' {
		digits--
	}
	if digits == pos-1 {
		return -1
	}
	return digits
}

func (m *mapper) mapBlockquote(parent mdast.NodeID, quote *ast.Blockquote) {
	entry := m.cursor
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindBlockQuote})

	for child := quote.FirstChild(); child != nil; child = child.NextSibling() {
		m.mapBlock(id, child)
	}

	isQuote := func(pos, lineEnd int) bool {
		return pos < lineEnd && m.src[pos] == '>'
	}

	childStart, childEnd, hasChildren := m.childBounds(id)
	start := -1
	if hasChildren {
		lineStart := max(m.scan.lineStart(childStart), entry)
		pos := childStart
		for pos > lineStart && isBlank(m.src[pos-1]) {
			pos--
		}
		if pos > lineStart && m.src[pos-1] == '>' {
			start = pos - 1
		} else {
			start = m.scan.seek(entry, childStart, isQuote)
		}
	} else {
		start = m.scan.seek(entry, -1, isQuote)
	}
	if start < 0 {
		start = entry
		if hasChildren {
			start = childStart
		}
	}

	end := start + 1
	if hasChildren && childEnd > end {
		end = childEnd
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapFencedCode(parent mdast.NodeID, code *ast.FencedCodeBlock) {
	attrs := &mdast.CodeAttrs{Fenced: true}
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindCodeBlock, Code: attrs})

	lines := code.Lines()
	limit := -1
	if lines.Len() > 0 {
		limit = lines.At(0).Start
	}

	open := m.scan.seek(m.cursor, limit, func(pos, lineEnd int) bool {
		char, _ := fenceAt(m.src, pos, lineEnd)
		return char != 0
	})
	if open < 0 {
		open = min(m.cursor, len(m.src))
	}
	attrs.FenceChar, attrs.FenceLen = fenceAt(m.src, open, m.scan.lineEnd(open))

	if code.Info != nil {
		attrs.Info = string(bytes.TrimSpace(code.Info.Segment.Value(m.src)))
		if fields := bytes.Fields([]byte(attrs.Info)); len(fields) > 0 {
			attrs.Language = string(fields[0])
		}
	}

	end := m.scan.trimmedLineEnd(open)
	lastLine := open
	if lines.Len() > 0 {
		last := lines.At(lines.Len() - 1)
		lastLine = last.Start
		end = max(m.scan.contentEnd(last.Start, last.Stop), end)
	}

	if attrs.FenceChar != 0 {
		closeLine := m.scan.nextLine(lastLine)
		if closeLine < len(m.src) {
			closeEnd := m.scan.lineEnd(closeLine)
			pos := m.scan.seek(closeLine, closeEnd, func(pos, lineEnd int) bool {
				return isClosingFence(m.src, pos, lineEnd, attrs.FenceChar, attrs.FenceLen)
			})
			if pos >= 0 && pos <= closeEnd {
				attrs.Closed = true
				end = m.scan.trimmedLineEnd(pos)
			}
		}
	}

	m.advance(m.setSpan(id, open, end))
}

func (m *mapper) mapIndentedCode(parent mdast.NodeID, code *ast.CodeBlock) {
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindCodeBlock, Code: &mdast.CodeAttrs{}})

	lines := code.Lines()
	start, end := m.cursor, m.cursor
	if lines.Len() > 0 {
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		start = first.Start
		end = max(m.scan.contentEnd(last.Start, last.Stop), start)
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapThematicBreak(parent mdast.NodeID) {
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindThematicBreak})

	start := m.scan.seek(m.cursor, -1, func(pos, lineEnd int) bool {
		return isThematicBreak(m.src, pos, lineEnd)
	})
	if start < 0 {
		start = min(m.cursor, len(m.src))
	}
	m.advance(m.setSpan(id, start, m.scan.trimmedLineEnd(start)))
}

func (m *mapper) mapHTMLBlock(parent mdast.NodeID, block *ast.HTMLBlock) {
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindHTMLBlock})

	lines := block.Lines()
	start, end := m.cursor, m.cursor
	if lines.Len() > 0 {
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		start = skipBlanks(m.src, first.Start, m.scan.lineEnd(first.Start))
		end = max(m.scan.contentEnd(last.Start, last.Stop), start)
	}
	if block.HasClosure() {
		closure := block.ClosureLine
		if lines.Len() == 0 {
			start = skipBlanks(m.src, closure.Start, m.scan.lineEnd(closure.Start))
		}
		end = max(m.scan.contentEnd(closure.Start, closure.Stop), end)
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapTable(parent mdast.NodeID, table *east.Table) {
	entry := m.cursor
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindTable})

	headerLine := m.scan.lineIndex(min(entry, len(m.src)))
	if off := firstOffset(table); off >= 0 {
		headerLine = m.scan.lineIndex(off)
	}

	rowIdx := 0
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		line := headerLine
		if rowIdx > 0 {
			// Skip the delimiter row below the header.
			line = headerLine + rowIdx + 1
		}
		rowIdx++
		if line >= len(m.scan.lines) {
			line = len(m.scan.lines) - 1
		}
		m.mapTableRow(id, row, line)
	}

	start, end, ok := m.childBounds(id)
	if !ok {
		start, end = entry, entry
	}
	m.advance(m.setSpan(id, start, end))
}

func (m *mapper) mapTableRow(table mdast.NodeID, row ast.Node, lineIdx int) {
	id := m.b.Add(table, mdast.Node{Kind: mdast.KindTableRow})

	line := m.scan.lines[lineIdx]
	start := max(skipBlanks(m.src, line.Start, line.End), m.cursor)
	for start < line.End && m.src[start] == '>' {
		start = skipBlanks(m.src, start+1, line.End)
	}
	end := max(m.scan.trimmedLineEnd(line.Start), start)

	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cellID := m.b.Add(id, mdast.Node{Kind: mdast.KindTableCell})
		cellStart := m.inlineFloor(start)
		m.inline = cellStart
		m.mapInlines(cellID, cell)
		if first, last, ok := m.childBounds(cellID); ok {
			m.setSpan(cellID, first, last)
			m.inline = last
		} else {
			m.setSpan(cellID, cellStart, cellStart)
		}
	}

	m.setSpan(id, start, end)
}

// inlineFloor keeps inline positions within the current row.
func (m *mapper) inlineFloor(rowStart int) int {
	if m.inline > rowStart {
		return m.inline
	}
	return rowStart
}

// firstOffset returns the first source offset goldmark recorded for n or
// any descendant, or -1.
func firstOffset(n ast.Node) int {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start
		}
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if off := firstOffset(child); off >= 0 {
			return off
		}
	}
	return -1
}
