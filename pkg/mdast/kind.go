// Package mdast provides the immutable document model shared by every rule:
// an arena of nodes addressed by index plus a line index over the source.
package mdast

// Kind identifies the type of a node.
type Kind uint8

// Node kinds.
const (
	KindDocument Kind = iota
	KindFrontMatter
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindBlockQuote
	KindCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell

	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindAutoLink
	KindRawHTML
)

//nolint:gochecknoglobals // Lookup table for String.
var kindNames = [...]string{
	KindDocument:      "Document",
	KindFrontMatter:   "FrontMatter",
	KindHeading:       "Heading",
	KindParagraph:     "Paragraph",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindBlockQuote:    "BlockQuote",
	KindCodeBlock:     "CodeBlock",
	KindHTMLBlock:     "HTMLBlock",
	KindThematicBreak: "ThematicBreak",
	KindTable:         "Table",
	KindTableRow:      "TableRow",
	KindTableCell:     "TableCell",
	KindText:          "Text",
	KindEmphasis:      "Emphasis",
	KindStrong:        "Strong",
	KindStrikethrough: "Strikethrough",
	KindCodeSpan:      "CodeSpan",
	KindLink:          "Link",
	KindImage:         "Image",
	KindAutoLink:      "AutoLink",
	KindRawHTML:       "RawHTML",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsBlock reports whether nodes of this kind occupy whole lines.
func (k Kind) IsBlock() bool {
	return k <= KindTableCell
}

// IsInline reports whether nodes of this kind live inside a block.
func (k Kind) IsInline() bool {
	return k >= KindText
}

// IsContainer reports whether the kind can hold other blocks.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDocument, KindList, KindListItem, KindBlockQuote:
		return true
	default:
		return false
	}
}
