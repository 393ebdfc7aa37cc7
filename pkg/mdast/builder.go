package mdast

import "fmt"

// Builder assembles a Document. Nodes must be added in document order,
// parents before their children.
type Builder struct {
	doc *Document
}

// NewBuilder starts a document for src with a root node covering it.
func NewBuilder(path string, src []byte) *Builder {
	doc := &Document{
		Path:   path,
		Source: src,
		Lines:  BuildLines(src),
		Nodes:  make([]Node, 1, len(src)/16+1),
	}
	doc.Nodes[Root] = Node{
		Kind:   KindDocument,
		Span:   Span{Start: 0, End: len(src)},
		Parent: NoNode,
	}
	return &Builder{doc: doc}
}

// Source returns the text being built over.
func (b *Builder) Source() []byte {
	return b.doc.Source
}

// Lines returns the line index of the source.
func (b *Builder) Lines() []Line {
	return b.doc.Lines
}

// Add appends n as the last child of parent and returns its ID.
func (b *Builder) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(b.doc.Nodes))
	n.Parent = parent
	n.Children = nil
	b.doc.Nodes = append(b.doc.Nodes, n)
	b.doc.Nodes[parent].Children = append(b.doc.Nodes[parent].Children, id)
	return id
}

// Node returns a mutable pointer to a node under construction. The pointer
// is invalidated by the next Add.
func (b *Builder) Node(id NodeID) *Node {
	return &b.doc.Nodes[id]
}

// SetSpan updates the span of a node under construction.
func (b *Builder) SetSpan(id NodeID, span Span) {
	b.doc.Nodes[id].Span = span
}

// SetFrontMatter records the front matter block and its decoded data.
func (b *Builder) SetFrontMatter(span Span, meta map[string]any) {
	b.doc.FrontMatter = span
	b.doc.Meta = meta
}

// Build finalizes the document. Child spans are clamped so that siblings
// never overlap and every child lies within its parent.
func (b *Builder) Build() *Document {
	doc := b.doc
	b.doc = nil

	nodes := doc.Nodes
	for i := range nodes {
		parent := nodes[i].Span
		prevEnd := parent.Start
		for _, child := range nodes[i].Children {
			span := nodes[child].Span
			if span.Start < prevEnd {
				span.Start = prevEnd
			}
			if span.End > parent.End {
				span.End = parent.End
			}
			if span.Start > parent.End {
				span.Start = parent.End
			}
			if span.End < span.Start {
				span.End = span.Start
			}
			nodes[child].Span = span
			prevEnd = span.End
		}
	}

	return doc
}

// Validate checks the structural invariants of doc: children are ordered,
// non-overlapping, contained in their parent, and stored after it.
func Validate(doc *Document) error {
	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		prevEnd := node.Span.Start
		for _, child := range node.Children {
			if int(child) <= i || int(child) >= len(doc.Nodes) {
				return fmt.Errorf("node %d: child %d out of document order", i, child)
			}
			cn := &doc.Nodes[child]
			if cn.Parent != NodeID(i) {
				return fmt.Errorf("node %d: child %d has parent %d", i, child, cn.Parent)
			}
			if !node.Span.Contains(cn.Span) {
				return fmt.Errorf("node %d %v: child %d %v not contained", i, node.Span, child, cn.Span)
			}
			if cn.Span.Start < prevEnd {
				return fmt.Errorf("node %d: child %d overlaps previous sibling", i, child)
			}
			prevEnd = cn.Span.End
		}
	}
	return nil
}
