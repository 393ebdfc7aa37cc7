package mdast

// Document is the parsed form of one Markdown file. It is immutable once
// built and safe for concurrent readers.
type Document struct {
	Path   string
	Source []byte
	Lines  []Line
	Nodes  []Node

	// FrontMatter is the span of the leading metadata block including its
	// delimiters, or an empty span when the file has none.
	FrontMatter Span
	// Meta holds decoded front matter, nil when absent or undecodable.
	Meta map[string]any
	// BOM records that a UTF-8 byte order mark preceded Source on disk.
	BOM bool
}

// Node returns the node with the given ID, or nil when out of range.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.Nodes) {
		return nil
	}
	return &d.Nodes[id]
}

// Kind returns the kind of the node.
func (d *Document) Kind(id NodeID) Kind {
	return d.Nodes[id].Kind
}

// Parent returns the parent of id, or NoNode for the root.
func (d *Document) Parent(id NodeID) NodeID {
	if n := d.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Children returns the child IDs of id in document order.
func (d *Document) Children(id NodeID) []NodeID {
	if n := d.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Blocks returns the top-level block nodes.
func (d *Document) Blocks() []NodeID {
	return d.Children(Root)
}

// Ancestor returns the closest proper ancestor of id whose kind is one of
// kinds, or NoNode.
func (d *Document) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for cur := d.Parent(id); cur != NoNode; cur = d.Parent(cur) {
		for _, k := range kinds {
			if d.Nodes[cur].Kind == k {
				return cur
			}
		}
	}
	return NoNode
}

// HasAncestor reports whether id is nested inside a node of one of kinds.
func (d *Document) HasAncestor(id NodeID, kinds ...Kind) bool {
	return d.Ancestor(id, kinds...) != NoNode
}

// Depth returns the number of ancestors of kind between id and the root.
func (d *Document) Depth(id NodeID, kind Kind) int {
	depth := 0
	for cur := d.Parent(id); cur != NoNode; cur = d.Parent(cur) {
		if d.Nodes[cur].Kind == kind {
			depth++
		}
	}
	return depth
}

func (d *Document) siblingIndex(id NodeID) (NodeID, int) {
	parent := d.Parent(id)
	if parent == NoNode {
		return NoNode, -1
	}
	for i, child := range d.Nodes[parent].Children {
		if child == id {
			return parent, i
		}
	}
	return parent, -1
}

// PrevSibling returns the sibling before id, or NoNode.
func (d *Document) PrevSibling(id NodeID) NodeID {
	parent, idx := d.siblingIndex(id)
	if idx <= 0 {
		return NoNode
	}
	return d.Nodes[parent].Children[idx-1]
}

// NextSibling returns the sibling after id, or NoNode.
func (d *Document) NextSibling(id NodeID) NodeID {
	parent, idx := d.siblingIndex(id)
	if idx < 0 || idx+1 >= len(d.Nodes[parent].Children) {
		return NoNode
	}
	return d.Nodes[parent].Children[idx+1]
}

// OfKind returns all nodes of the given kinds in document order.
func (d *Document) OfKind(kinds ...Kind) []NodeID {
	var ids []NodeID
	for i := range d.Nodes {
		for _, k := range kinds {
			if d.Nodes[i].Kind == k {
				ids = append(ids, NodeID(i))
				break
			}
		}
	}
	return ids
}

// Text returns the raw source covered by the node.
func (d *Document) Text(id NodeID) []byte {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	return d.Source[n.Span.Start:n.Span.End]
}

// PlainText concatenates the Text and CodeSpan content beneath id.
func (d *Document) PlainText(id NodeID) string {
	var buf []byte
	d.Walk(id, func(cur NodeID, entering bool) WalkStatus {
		if !entering {
			return WalkContinue
		}
		n := &d.Nodes[cur]
		switch n.Kind {
		case KindText, KindRawHTML:
			buf = append(buf, d.Source[n.Span.Start:n.Span.End]...)
			if n.SoftBreak || n.HardBreak {
				buf = append(buf, ' ')
			}
		case KindCodeSpan, KindAutoLink:
			buf = append(buf, d.Source[n.Span.Start:n.Span.End]...)
			return WalkSkipChildren
		}
		return WalkContinue
	})
	return string(buf)
}

// Position converts a byte offset to a Position.
func (d *Document) Position(offset int) Position {
	return positionIn(d.Source, d.Lines, offset)
}

// StartPos returns the position where the node begins.
func (d *Document) StartPos(id NodeID) Position {
	return d.Position(d.Nodes[id].Span.Start)
}

// EndPos returns the position where the node ends (exclusive).
func (d *Document) EndPos(id NodeID) Position {
	return d.Position(d.Nodes[id].Span.End)
}

// LineOf returns the 1-based line the node starts on.
func (d *Document) LineOf(id NodeID) int {
	return lineIndex(d.Lines, d.Nodes[id].Span.Start) + 1
}

// EndLineOf returns the 1-based line holding the node's last byte.
func (d *Document) EndLineOf(id NodeID) int {
	span := d.Nodes[id].Span
	end := span.End
	if end > span.Start {
		end--
	}
	return lineIndex(d.Lines, end) + 1
}

// LineAt returns the 1-based line containing offset.
func (d *Document) LineAt(offset int) int {
	return lineIndex(d.Lines, offset) + 1
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// LineText returns line n (1-based) without its terminator, or nil.
func (d *Document) LineText(n int) []byte {
	if n < 1 || n > len(d.Lines) {
		return nil
	}
	l := d.Lines[n-1]
	return d.Source[l.Start:l.End]
}

// LineSpan returns the span of line n (1-based) without its terminator.
func (d *Document) LineSpan(n int) Span {
	if n < 1 || n > len(d.Lines) {
		return Span{}
	}
	l := d.Lines[n-1]
	return Span{Start: l.Start, End: l.End}
}

// IsBlankLine reports whether line n contains only spaces and tabs.
func (d *Document) IsBlankLine(n int) bool {
	for _, c := range d.LineText(n) {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

// FrontMatterLines returns the inclusive 1-based line range of the front
// matter block, or (0, 0) when absent.
func (d *Document) FrontMatterLines() (int, int) {
	if d.FrontMatter.IsEmpty() {
		return 0, 0
	}
	return d.LineAt(d.FrontMatter.Start), d.LineAt(d.FrontMatter.End - 1)
}
