package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/downlint/pkg/mdast"
)

func (m *mapper) mapInlines(parent mdast.NodeID, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		m.mapInline(parent, child)
	}
}

func (m *mapper) mapInline(parent mdast.NodeID, n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		seg := node.Segment
		m.b.Add(parent, mdast.Node{
			Kind:      mdast.KindText,
			Span:      mdast.Span{Start: seg.Start, End: seg.Stop},
			SoftBreak: node.SoftLineBreak(),
			HardBreak: node.HardLineBreak(),
		})
		m.inline = max(m.inline, seg.Stop)
	case *ast.String:
		// Synthesized text with no source position.
	case *ast.CodeSpan:
		m.mapCodeSpan(parent, node)
	case *ast.Emphasis:
		kind := mdast.KindEmphasis
		if node.Level >= 2 {
			kind = mdast.KindStrong
		}
		m.mapDelimited(parent, node, kind, node.Level)
	case *east.Strikethrough:
		m.mapDelimited(parent, node, mdast.KindStrikethrough, 0)
	case *ast.Link:
		m.mapLink(parent, node, mdast.KindLink, &mdast.LinkAttrs{
			Destination: string(node.Destination),
			Title:       string(node.Title),
		})
	case *ast.Image:
		m.mapLink(parent, node, mdast.KindImage, &mdast.LinkAttrs{
			Destination: string(node.Destination),
			Title:       string(node.Title),
		})
	case *ast.AutoLink:
		m.mapAutoLink(parent, node)
	case *ast.RawHTML:
		m.mapRawHTML(parent, node)
	case *east.TaskCheckBox:
		if len(m.items) > 0 {
			item := m.b.Node(m.items[len(m.items)-1]).Item
			item.Task = true
			item.Checked = node.IsChecked
		}
	default:
		m.mapInlines(parent, n)
	}
}

func (m *mapper) mapCodeSpan(parent mdast.NodeID, code *ast.CodeSpan) {
	entry := m.inline
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindCodeSpan})

	first, last := -1, -1
	for child := code.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			if first < 0 {
				first = t.Segment.Start
			}
			last = t.Segment.Stop
		}
	}

	var start, end int
	if first < 0 {
		start = indexFrom(m.src, entry, '`')
		if start < 0 {
			start = entry
		}
		run := countRun(m.src, start, '`')
		end = start + run
		if closing := bytes.Index(m.src[end:], m.src[start:start+run]); closing >= 0 {
			end += closing + run
		}
	} else {
		open := first
		if open > entry && (m.src[open-1] == ' ' || m.src[open-1] == '\n') && open-1 > entry && m.src[open-2] == '`' {
			open--
		}
		run := 0
		for open-run > entry && m.src[open-run-1] == '`' {
			run++
		}
		start = open - run

		end = last
		if end < len(m.src) && (m.src[end] == ' ' || m.src[end] == '\n') && end+1 < len(m.src) && m.src[end+1] == '`' {
			end++
		}
		end += min(countRun(m.src, end, '`'), max(run, 1))
	}

	m.setSpan(id, start, end)
	m.inline = max(m.inline, end)
}

// mapDelimited maps emphasis, strong emphasis and strikethrough. width is
// the number of delimiter characters on each side, or 0 to measure it.
func (m *mapper) mapDelimited(parent mdast.NodeID, n ast.Node, kind mdast.Kind, width int) {
	entry := m.inline
	id := m.b.Add(parent, mdast.Node{Kind: kind})
	m.mapInlines(id, n)

	first, last, ok := m.childBounds(id)
	if !ok {
		m.setSpan(id, entry, entry)
		return
	}

	start := first
	if width == 0 {
		for start > entry && m.src[start-1] == '~' {
			start--
		}
		width = first - start
	} else {
		start = max(first-width, entry)
	}
	end := min(last+width, len(m.src))

	if start < len(m.src) {
		m.b.Node(id).Delimiter = m.src[start]
	}
	m.setSpan(id, start, end)
	m.inline = max(m.inline, end)
}

func (m *mapper) mapLink(parent mdast.NodeID, n ast.Node, kind mdast.Kind, attrs *mdast.LinkAttrs) {
	entry := m.inline
	id := m.b.Add(parent, mdast.Node{Kind: kind, Link: attrs})
	m.mapInlines(id, n)

	var open, labelEnd int
	if first, last, ok := m.childBounds(id); ok {
		open = first
		for open > entry && m.src[open-1] != '[' {
			open--
		}
		open = max(open-1, entry)
		labelEnd = indexFrom(m.src, last, ']')
	} else {
		open = indexFrom(m.src, entry, '[')
		if open < 0 {
			m.setSpan(id, entry, entry)
			return
		}
		labelEnd = indexFrom(m.src, open+1, ']')
	}
	if labelEnd < 0 {
		labelEnd = len(m.src) - 1
	}

	start := open
	if kind == mdast.KindImage && start > entry && m.src[start-1] == '!' {
		start--
	}

	end := labelEnd + 1
	if end < len(m.src) {
		switch m.src[end] {
		case '(':
			end = m.closeParen(end)
		case '[':
			if ref := indexFrom(m.src, end+1, ']'); ref >= 0 {
				end = ref + 1
			}
		}
	}

	m.setSpan(id, start, end)
	m.inline = max(m.inline, end)
}

// closeParen returns the offset just past the ')' that ends an inline link
// destination starting at the '(' at open.
func (m *mapper) closeParen(open int) int {
	src := m.src
	pos := skipSpace(src, open+1)

	if pos < len(src) && src[pos] == '<' {
		for pos < len(src) && src[pos] != '>' && src[pos] != '\n' {
			pos++
		}
		pos++
	} else {
		depth := 0
		for pos < len(src) && !isSpace(src[pos]) {
			switch src[pos] {
			case '\\':
				pos++
			case '(':
				depth++
			case ')':
				if depth == 0 {
					return pos + 1
				}
				depth--
			}
			pos++
		}
	}

	pos = skipSpace(src, pos)
	if pos < len(src) {
		closer := byte(0)
		switch src[pos] {
		case '"', '\'':
			closer = src[pos]
		case '(':
			closer = ')'
		}
		if closer != 0 {
			pos++
			for pos < len(src) && src[pos] != closer {
				if src[pos] == '\\' {
					pos++
				}
				pos++
			}
			pos = skipSpace(src, pos+1)
		}
	}

	if pos < len(src) && src[pos] == ')' {
		return pos + 1
	}
	if closing := indexFrom(src, open, ')'); closing >= 0 {
		return closing + 1
	}
	return min(pos, len(src))
}

func (m *mapper) mapAutoLink(parent mdast.NodeID, link *ast.AutoLink) {
	label := link.Label(m.src)
	attrs := &mdast.LinkAttrs{Destination: string(link.URL(m.src))}
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindAutoLink, Link: attrs})

	pos := -1
	if len(label) > 0 {
		if idx := bytes.Index(m.src[m.inline:], label); idx >= 0 {
			pos = m.inline + idx
		}
	}
	if pos < 0 {
		m.setSpan(id, m.inline, m.inline)
		return
	}

	start, end := pos, pos+len(label)
	if start > 0 && m.src[start-1] == '<' && end < len(m.src) && m.src[end] == '>' {
		attrs.Angle = true
		start--
		end++
	}
	m.setSpan(id, start, end)
	m.inline = max(m.inline, end)
}

func (m *mapper) mapRawHTML(parent mdast.NodeID, html *ast.RawHTML) {
	id := m.b.Add(parent, mdast.Node{Kind: mdast.KindRawHTML})

	segs := html.Segments
	if segs == nil || segs.Len() == 0 {
		m.setSpan(id, m.inline, m.inline)
		return
	}
	start := segs.At(0).Start
	end := segs.At(segs.Len() - 1).Stop
	m.setSpan(id, start, end)
	m.inline = max(m.inline, end)
}

func indexFrom(src []byte, from int, c byte) int {
	if from < 0 || from >= len(src) {
		return -1
	}
	if idx := bytes.IndexByte(src[from:], c); idx >= 0 {
		return from + idx
	}
	return -1
}

func countRun(src []byte, pos int, c byte) int {
	n := 0
	for pos+n < len(src) && src[pos+n] == c {
		n++
	}
	return n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func skipSpace(src []byte, pos int) int {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	return pos
}
