package mdast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/mdast"
)

// buildSample builds the tree for:
//
//	# Title
//
//	> - item *em*
func buildSample(t *testing.T) *mdast.Document {
	t.Helper()

	src := []byte("# Title\n\n> - item *em*\n")
	b := mdast.NewBuilder("sample.md", src)

	heading := b.Add(mdast.Root, mdast.Node{
		Kind:    mdast.KindHeading,
		Span:    mdast.Span{Start: 0, End: 7},
		Heading: &mdast.HeadingAttrs{Level: 1},
	})
	b.Add(heading, mdast.Node{Kind: mdast.KindText, Span: mdast.Span{Start: 2, End: 7}})

	quote := b.Add(mdast.Root, mdast.Node{Kind: mdast.KindBlockQuote, Span: mdast.Span{Start: 9, End: 22}})
	list := b.Add(quote, mdast.Node{
		Kind: mdast.KindList,
		Span: mdast.Span{Start: 11, End: 22},
		List: &mdast.ListAttrs{Marker: '-', Tight: true},
	})
	item := b.Add(list, mdast.Node{Kind: mdast.KindListItem, Span: mdast.Span{Start: 11, End: 22}})
	para := b.Add(item, mdast.Node{Kind: mdast.KindParagraph, Span: mdast.Span{Start: 13, End: 22}})
	b.Add(para, mdast.Node{Kind: mdast.KindText, Span: mdast.Span{Start: 13, End: 18}})
	em := b.Add(para, mdast.Node{Kind: mdast.KindEmphasis, Span: mdast.Span{Start: 18, End: 22}, Delimiter: '*'})
	b.Add(em, mdast.Node{Kind: mdast.KindText, Span: mdast.Span{Start: 19, End: 21}})

	doc := b.Build()
	require.NoError(t, mdast.Validate(doc))
	return doc
}

func TestDocumentQueries(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)

	headings := doc.OfKind(mdast.KindHeading)
	require.Len(t, headings, 1)
	assert.Equal(t, 1, doc.Node(headings[0]).Level())
	assert.Equal(t, "# Title", string(doc.Text(headings[0])))

	ems := doc.OfKind(mdast.KindEmphasis)
	require.Len(t, ems, 1)
	em := ems[0]

	assert.Equal(t, "*em*", string(doc.Text(em)))
	assert.Equal(t, mdast.Position{Line: 3, Column: 10}, doc.StartPos(em))
	assert.Equal(t, 3, doc.LineOf(em))

	item := doc.Ancestor(em, mdast.KindListItem)
	require.NotEqual(t, mdast.NoNode, item)
	assert.Equal(t, mdast.KindListItem, doc.Kind(item))

	quote := doc.Ancestor(em, mdast.KindBlockQuote)
	assert.Equal(t, mdast.KindBlockQuote, doc.Kind(quote))
	assert.True(t, doc.HasAncestor(em, mdast.KindList))
	assert.False(t, doc.HasAncestor(em, mdast.KindHeading))
	assert.Equal(t, 1, doc.Depth(em, mdast.KindList))

	assert.Equal(t, mdast.NoNode, doc.Parent(mdast.Root))
	assert.Equal(t, mdast.NoNode, doc.Ancestor(mdast.Root, mdast.KindDocument))
}

func TestDocumentSiblings(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)
	blocks := doc.Blocks()
	require.Len(t, blocks, 2)

	assert.Equal(t, blocks[1], doc.NextSibling(blocks[0]))
	assert.Equal(t, blocks[0], doc.PrevSibling(blocks[1]))
	assert.Equal(t, mdast.NoNode, doc.PrevSibling(blocks[0]))
	assert.Equal(t, mdast.NoNode, doc.NextSibling(blocks[1]))
	assert.Equal(t, mdast.NoNode, doc.NextSibling(mdast.Root))
}

func TestDocumentPlainText(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)
	paras := doc.OfKind(mdast.KindParagraph)
	require.Len(t, paras, 1)

	assert.Equal(t, "item em", doc.PlainText(paras[0]))
}

func TestBuildClampsSpans(t *testing.T) {
	t.Parallel()

	b := mdast.NewBuilder("t.md", []byte("abcdef"))
	para := b.Add(mdast.Root, mdast.Node{Kind: mdast.KindParagraph, Span: mdast.Span{Start: 1, End: 4}})
	b.Add(para, mdast.Node{Kind: mdast.KindText, Span: mdast.Span{Start: 0, End: 3}})
	b.Add(para, mdast.Node{Kind: mdast.KindText, Span: mdast.Span{Start: 2, End: 9}})

	doc := b.Build()
	require.NoError(t, mdast.Validate(doc))

	children := doc.Children(para)
	assert.Equal(t, mdast.Span{Start: 1, End: 3}, doc.Node(children[0]).Span)
	assert.Equal(t, mdast.Span{Start: 3, End: 4}, doc.Node(children[1]).Span)
}

func TestValidateRejectsEscapingChild(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)
	doc.Nodes[2].Span = mdast.Span{Start: 5, End: 12}

	assert.Error(t, mdast.Validate(doc))
}

func TestWalk(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)

	var entered []mdast.Kind
	var exited int
	doc.Walk(mdast.Root, func(id mdast.NodeID, entering bool) mdast.WalkStatus {
		if entering {
			entered = append(entered, doc.Kind(id))
		} else {
			exited++
		}
		return mdast.WalkContinue
	})

	assert.Equal(t, []mdast.Kind{
		mdast.KindDocument,
		mdast.KindHeading, mdast.KindText,
		mdast.KindBlockQuote, mdast.KindList, mdast.KindListItem, mdast.KindParagraph,
		mdast.KindText, mdast.KindEmphasis, mdast.KindText,
	}, entered)
	assert.Equal(t, len(entered), exited)
}

func TestWalkSkipAndStop(t *testing.T) {
	t.Parallel()

	doc := buildSample(t)

	var visited []mdast.Kind
	doc.Inspect(mdast.Root, func(id mdast.NodeID) bool {
		visited = append(visited, doc.Kind(id))
		return doc.Kind(id) != mdast.KindBlockQuote
	})
	assert.Equal(t, []mdast.Kind{
		mdast.KindDocument, mdast.KindHeading, mdast.KindText, mdast.KindBlockQuote,
	}, visited)

	count := 0
	completed := doc.Walk(mdast.Root, func(id mdast.NodeID, entering bool) mdast.WalkStatus {
		count++
		if doc.Kind(id) == mdast.KindHeading {
			return mdast.WalkStop
		}
		return mdast.WalkContinue
	})
	assert.False(t, completed)
	assert.Equal(t, 2, count)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Heading", mdast.KindHeading.String())
	assert.Equal(t, "RawHTML", mdast.KindRawHTML.String())
	assert.Equal(t, "Unknown", mdast.Kind(200).String())
	assert.True(t, mdast.KindTable.IsBlock())
	assert.True(t, mdast.KindLink.IsInline())
	assert.True(t, mdast.KindBlockQuote.IsContainer())
	assert.False(t, mdast.KindParagraph.IsContainer())
}
