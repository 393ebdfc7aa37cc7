package mdast

// WalkStatus controls traversal in Walk.
type WalkStatus int

// Walk statuses.
const (
	// WalkContinue visits the children of the current node.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren skips the children of the current node. Only
	// meaningful when entering.
	WalkSkipChildren
	// WalkStop ends the traversal.
	WalkStop
)

// WalkFunc is called twice per node: once on entry and once on exit.
type WalkFunc func(id NodeID, entering bool) WalkStatus

// Walk performs a depth-first traversal of the subtree rooted at id.
// It returns false if fn stopped the walk.
func (d *Document) Walk(id NodeID, fn WalkFunc) bool {
	if d.Node(id) == nil {
		return true
	}

	switch fn(id, true) {
	case WalkStop:
		return false
	case WalkSkipChildren:
		return fn(id, false) != WalkStop
	case WalkContinue:
	}

	for _, child := range d.Nodes[id].Children {
		if !d.Walk(child, fn) {
			return false
		}
	}

	return fn(id, false) != WalkStop
}

// Inspect calls fn for every node in the subtree rooted at id in document
// order. Returning false skips the node's children.
func (d *Document) Inspect(id NodeID, fn func(id NodeID) bool) {
	d.Walk(id, func(cur NodeID, entering bool) WalkStatus {
		if !entering {
			return WalkContinue
		}
		if !fn(cur) {
			return WalkSkipChildren
		}
		return WalkContinue
	})
}
