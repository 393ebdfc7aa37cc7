package rules

import (
	"strings"

	"github.com/yaklabco/downlint/pkg/config"
	"github.com/yaklabco/downlint/pkg/lint"
	"github.com/yaklabco/downlint/pkg/mdast"
)

// List style values.
const (
	styleAsterisk = "asterisk"
	stylePlus     = "plus"
	styleDash     = "dash"
	styleSublist  = "sublist"

	styleOne     = "one"
	styleOrdered = "ordered"
	styleZero    = "zero"
)

func bulletName(marker byte) string {
	switch marker {
	case '*':
		return styleAsterisk
	case '+':
		return stylePlus
	default:
		return styleDash
	}
}

func bulletMarker(style string) byte {
	switch style {
	case styleAsterisk:
		return '*'
	case stylePlus:
		return '+'
	case styleDash:
		return '-'
	default:
		return 0
	}
}

// listItems returns the item IDs of a list.
func listItems(doc *mdast.Document, list mdast.NodeID) []mdast.NodeID {
	var items []mdast.NodeID
	for _, child := range doc.Children(list) {
		if doc.Kind(child) == mdast.KindListItem {
			items = append(items, child)
		}
	}
	return items
}

// markerColumn returns the 1-based column of an item's marker.
func markerColumn(doc *mdast.Document, item mdast.NodeID) int {
	return doc.Position(doc.Node(item).Item.Marker.Start).Column
}

// unorderedLists returns the unordered lists of the document.
func unorderedLists(doc *mdast.Document) []mdast.NodeID {
	var lists []mdast.NodeID
	for _, id := range doc.OfKind(mdast.KindList) {
		if !doc.Node(id).List.Ordered {
			lists = append(lists, id)
		}
	}
	return lists
}

// ULStyleRule checks the bullet character of unordered lists.
type ULStyleRule struct {
	lint.BaseRule
}

// NewULStyleRule creates the MD004 rule.
func NewULStyleRule() *ULStyleRule {
	return &ULStyleRule{
		BaseRule: lint.NewBaseRule("MD004", "ul-style", "Unordered list style", "bullet", "ul").
			WithParams(config.StringParam(paramStyle, styleConsistent, "Required bullet style",
				styleConsistent, styleAsterisk, stylePlus, styleDash, styleSublist)).
			Fixable(),
	}
}

// Check reports bullets that differ from the expected character and
// replaces them. consistent follows the first bullet in the document;
// sublist follows the first bullet at each nesting depth and requires it to
// differ from the parent list's bullet.
func (r *ULStyleRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	style := ctx.String(paramStyle)
	fixed := bulletMarker(style)

	var first byte
	byDepth := make(map[int]byte)

	for _, list := range unorderedLists(doc) {
		depth := doc.Depth(list, mdast.KindList)

		want := fixed
		switch style {
		case styleSublist:
			if _, ok := byDepth[depth]; !ok {
				byDepth[depth] = nextBullet(doc, list)
			}
			want = byDepth[depth]
		case styleConsistent:
			if first == 0 {
				first = doc.Node(list).List.Marker
			}
			want = first
		}

		for _, item := range listItems(doc, list) {
			marker := doc.Node(item).Item.Marker
			actual := doc.Source[marker.Start]
			if actual == want {
				continue
			}
			ctx.ReportFix(marker, detail(r.Description(), "Expected: %s; Actual: %s", bulletName(want), bulletName(actual)),
				lint.Fix{Span: mdast.Span{Start: marker.Start, End: marker.Start + 1}, Replacement: string(want)})
		}
	}
	return nil
}

// nextBullet picks the bullet for the first list seen at a depth: its own
// bullet, unless that repeats the enclosing unordered list's bullet.
func nextBullet(doc *mdast.Document, list mdast.NodeID) byte {
	own := doc.Node(list).List.Marker
	parent := doc.Ancestor(list, mdast.KindList)
	if parent == mdast.NoNode || doc.Node(parent).List.Ordered || doc.Node(parent).List.Marker != own {
		return own
	}
	for _, c := range []byte{'-', '*', '+'} {
		if c != own {
			return c
		}
	}
	return own
}

// ListIndentRule checks that items of one list start in the same column.
type ListIndentRule struct {
	lint.BaseRule
}

// NewListIndentRule creates the MD005 rule.
func NewListIndentRule() *ListIndentRule {
	return &ListIndentRule{
		BaseRule: lint.NewBaseRule("MD005", "list-indent",
			"Inconsistent indentation for list items at the same level", "bullet", "ul", "indentation"),
	}
}

// Check reports items whose marker column differs from the first item of
// the same list. Ordered lists may instead align the ends of their markers.
func (r *ListIndentRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, list := range doc.OfKind(mdast.KindList) {
		items := listItems(doc, list)
		if len(items) < 2 {
			continue
		}
		ordered := doc.Node(list).List.Ordered
		wantStart := markerColumn(doc, items[0])
		wantEnd := doc.Position(doc.Node(items[0]).Item.Marker.End).Column

		for _, item := range items[1:] {
			marker := doc.Node(item).Item.Marker
			start := markerColumn(doc, item)
			if start == wantStart {
				continue
			}
			if ordered && doc.Position(marker.End).Column == wantEnd {
				continue
			}
			reportf(ctx, r, marker, "Expected: %d; Actual: %d", wantStart-1, start-1)
		}
	}
	return nil
}

// ULStartLeftRule checks that top-level bulleted lists are not indented.
type ULStartLeftRule struct {
	lint.BaseRule
}

// NewULStartLeftRule creates the MD006 rule.
func NewULStartLeftRule() *ULStartLeftRule {
	return &ULStartLeftRule{
		BaseRule: lint.NewBaseRule("MD006", "ul-start-left",
			"Consider starting bulleted lists at the beginning of the line", "bullet", "ul", "indentation"),
	}
}

// Check reports items of top-level unordered lists whose marker is not in
// the first column.
func (r *ULStartLeftRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, list := range unorderedLists(doc) {
		if doc.Parent(list) != mdast.Root {
			continue
		}
		for _, item := range listItems(doc, list) {
			if markerColumn(doc, item) > 1 {
				ctx.ReportSpan(doc.Node(item).Item.Marker, r.Description())
			}
		}
	}
	return nil
}

// ULIndentRule checks the indentation of nested bulleted lists.
type ULIndentRule struct {
	lint.BaseRule
}

// NewULIndentRule creates the MD007 rule.
func NewULIndentRule() *ULIndentRule {
	return &ULIndentRule{
		BaseRule: lint.NewBaseRule("MD007", "ul-indent", "Unordered list indentation", "bullet", "ul", "indentation").
			WithParams(config.IntParam("indent", 4, "Spaces of indentation per nesting level")),
	}
}

// Check reports nested unordered list items not indented by a whole number
// of indent steps per level. Only lists whose enclosing lists are all
// unordered and outside blockquotes are checked.
func (r *ULIndentRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	indent := ctx.Int("indent")
	if indent <= 0 {
		return nil
	}

	for _, list := range unorderedLists(doc) {
		depth := doc.Depth(list, mdast.KindList)
		if depth == 0 || doc.HasAncestor(list, mdast.KindBlockQuote) || hasOrderedAncestor(doc, list) {
			continue
		}
		want := depth * indent
		for _, item := range listItems(doc, list) {
			actual := markerColumn(doc, item) - 1
			if actual != want {
				reportf(ctx, r, doc.Node(item).Item.Marker, "Expected: %d; Actual: %d", want, actual)
			}
		}
	}
	return nil
}

func hasOrderedAncestor(doc *mdast.Document, id mdast.NodeID) bool {
	for cur := doc.Ancestor(id, mdast.KindList); cur != mdast.NoNode; cur = doc.Ancestor(cur, mdast.KindList) {
		if doc.Node(cur).List.Ordered {
			return true
		}
	}
	return false
}

// OLPrefixRule checks the numbering of ordered lists.
type OLPrefixRule struct {
	lint.BaseRule
}

// NewOLPrefixRule creates the MD029 rule.
func NewOLPrefixRule() *OLPrefixRule {
	return &OLPrefixRule{
		BaseRule: lint.NewBaseRule("MD029", "ol-prefix", "Ordered list item prefix", "ol").
			WithParams(config.StringParam(paramStyle, styleOne, "Required numbering",
				styleOne, styleOrdered, styleZero)),
	}
}

// Check reports ordered items whose number does not follow the style: all
// ones, all zeros, or incrementing by one from the first item.
func (r *OLPrefixRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	style := ctx.String(paramStyle)

	for _, list := range doc.OfKind(mdast.KindList) {
		if !doc.Node(list).List.Ordered {
			continue
		}
		items := listItems(doc, list)
		for i, item := range items {
			attrs := doc.Node(item).Item

			var want int
			switch style {
			case styleZero:
				want = 0
			case styleOrdered:
				want = doc.Node(items[0]).Item.Number + i
			default:
				want = 1
			}
			if attrs.Number != want {
				reportf(ctx, r, attrs.Marker, "Expected: %d; Actual: %d", want, attrs.Number)
			}
		}
	}
	return nil
}

// ListMarkerSpaceRule checks the blanks between a list marker and the item
// text.
type ListMarkerSpaceRule struct {
	lint.BaseRule
}

// NewListMarkerSpaceRule creates the MD030 rule.
func NewListMarkerSpaceRule() *ListMarkerSpaceRule {
	return &ListMarkerSpaceRule{
		BaseRule: lint.NewBaseRule("MD030", "list-marker-space", "Spaces after list markers", "ol", "ul", "whitespace").
			WithParams(
				config.IntParam("ul_single", 1, "Spaces after a bullet in lists of single-line items"),
				config.IntParam("ol_single", 1, "Spaces after a number in lists of single-line items"),
				config.IntParam("ul_multi", 1, "Spaces after a bullet in lists with multi-line items"),
				config.IntParam("ol_multi", 1, "Spaces after a number in lists with multi-line items"),
			).
			Fixable(),
	}
}

// Check reports items whose marker is followed by the wrong number of
// blanks and rewrites them as spaces. A list is "single" when every item
// fits on one line.
func (r *ListMarkerSpaceRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, list := range doc.OfKind(mdast.KindList) {
		items := listItems(doc, list)
		single := true
		for _, item := range items {
			if doc.LineOf(item) != doc.EndLineOf(item) {
				single = false
				break
			}
		}

		prefix := "ul"
		if doc.Node(list).List.Ordered {
			prefix = "ol"
		}
		suffix := "_multi"
		if single {
			suffix = "_single"
		}
		want := ctx.Int(prefix + suffix)

		for _, item := range items {
			marker := doc.Node(item).Item.Marker
			end := lineEndOf(doc, marker.End)
			ws := blankRun(doc.Source, marker.End, end)
			if ws == 0 || marker.End+ws >= end || ws == want {
				continue
			}
			span := mdast.Span{Start: marker.Start, End: marker.End + ws}
			ctx.ReportFix(span, detail(r.Description(), "Expected: %d; Actual: %d", want, ws),
				lint.Fix{Span: mdast.Span{Start: marker.End, End: marker.End + ws}, Replacement: strings.Repeat(" ", want)})
		}
	}
	return nil
}

// BlanksAroundListsRule checks for blank lines around lists.
type BlanksAroundListsRule struct {
	lint.BaseRule
}

// NewBlanksAroundListsRule creates the MD032 rule.
func NewBlanksAroundListsRule() *BlanksAroundListsRule {
	return &BlanksAroundListsRule{
		BaseRule: lint.NewBaseRule("MD032", "blanks-around-lists",
			"Lists should be surrounded by blank lines", "bullet", "ul", "ol", "blank_lines"),
	}
}

// Check reports lists that touch a neighboring block, and top-level lists
// whose last item swallows an unindented line as a lazy continuation.
// Lists nested in items are exempt.
func (r *BlanksAroundListsRule) Check(ctx *lint.Context) error {
	doc := ctx.Doc
	for _, list := range doc.OfKind(mdast.KindList) {
		if doc.HasAncestor(list, mdast.KindListItem) {
			continue
		}
		if prev := prevBlock(doc, list); prev != mdast.NoNode && !blankLinesBetween(doc, prev, list) {
			ctx.ReportLine(doc.LineOf(list), r.Description())
		}
		if next := doc.NextSibling(list); next != mdast.NoNode && !blankLinesBetween(doc, list, next) {
			ctx.ReportLine(doc.EndLineOf(list), r.Description())
			continue
		}
		if doc.Parent(list) == mdast.Root {
			if line := lazyLine(doc, list); line > 0 {
				ctx.ReportLine(line, r.Description())
			}
		}
	}
	return nil
}

// lazyLine returns the first line of the list's last item that starts in
// column one without a marker, or 0.
func lazyLine(doc *mdast.Document, list mdast.NodeID) int {
	items := listItems(doc, list)
	if len(items) == 0 {
		return 0
	}
	last := items[len(items)-1]
	for n := doc.LineOf(last) + 1; n <= doc.EndLineOf(last); n++ {
		text := doc.LineText(n)
		if len(text) > 0 && !isBlank(text[0]) {
			return n
		}
	}
	return 0
}
