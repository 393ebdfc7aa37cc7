package mdast

// NodeID addresses a node in a Document's arena.
type NodeID int32

// NoNode is the parent of the root and the result of failed lookups.
const NoNode NodeID = -1

// Root is the ID of the document node.
const Root NodeID = 0

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// HeadingStyle records how a heading was written.
type HeadingStyle uint8

// Heading styles.
const (
	HeadingATX HeadingStyle = iota
	HeadingATXClosed
	HeadingSetext
)

// String returns the configuration name of the style.
func (s HeadingStyle) String() string {
	switch s {
	case HeadingATXClosed:
		return "atx_closed"
	case HeadingSetext:
		return "setext"
	default:
		return "atx"
	}
}

// HeadingAttrs holds heading attributes.
type HeadingAttrs struct {
	Level int
	Style HeadingStyle
}

// ListAttrs holds list attributes.
type ListAttrs struct {
	Ordered bool
	// Marker is the bullet character for unordered lists and the
	// delimiter ('.' or ')') for ordered lists.
	Marker byte
	Start  int
	Tight  bool
}

// ItemAttrs holds list item attributes.
type ItemAttrs struct {
	// Marker is the span of the bullet or number including its delimiter.
	Marker Span
	// Number is the parsed ordinal of an ordered item.
	Number  int
	Task    bool
	Checked bool
}

// CodeAttrs holds code block attributes.
type CodeAttrs struct {
	Fenced    bool
	FenceChar byte
	FenceLen  int
	Info      string
	// Language is the first word of Info.
	Language string
	// Closed is false for fenced blocks that run to the end of their container.
	Closed bool
}

// LinkAttrs holds link, image and autolink attributes.
type LinkAttrs struct {
	Destination string
	Title       string
	// Angle is true for autolinks written as <url>.
	Angle bool
}

// Node is a single element of the document tree. Parent is a non-owning
// back reference; a node's children are owned by the node.
type Node struct {
	Kind     Kind
	Span     Span
	Parent   NodeID
	Children []NodeID

	Heading *HeadingAttrs
	List    *ListAttrs
	Item    *ItemAttrs
	Code    *CodeAttrs
	Link    *LinkAttrs

	// Delimiter is the emphasis or strikethrough marker character.
	Delimiter byte
	SoftBreak bool
	HardBreak bool
}

// Level returns the heading level, or 0 for non-headings.
func (n *Node) Level() int {
	if n.Heading == nil {
		return 0
	}
	return n.Heading.Level
}
