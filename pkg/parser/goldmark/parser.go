// Package goldmark builds mdast Documents using the goldmark CommonMark parser.
package goldmark

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/yaklabco/downlint/pkg/mdast"
)

// Supported Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

//nolint:gochecknoglobals // Immutable byte order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns Markdown text into an mdast.Document. It is safe for
// concurrent use.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a parser for flavor. Unknown flavors fall back to GFM.
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse builds a Document from content. The only failure besides context
// cancellation is a *mdast.ParseError for text that is not valid UTF-8.
// Identical input always produces a structurally identical Document.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*mdast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	src := content
	bom := bytes.HasPrefix(src, utf8BOM)
	if bom {
		src = src[len(utf8BOM):]
	}
	src = bytes.Clone(src)

	if !utf8.Valid(src) {
		offset := invalidOffset(src)
		return nil, &mdast.ParseError{
			Path:   path,
			Offset: offset,
			Line:   bytes.Count(src[:offset], []byte{'\n'}) + 1,
			Err:    mdast.ErrInvalidEncoding,
		}
	}

	pctx := parser.NewContext()
	gmDoc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	builder := mdast.NewBuilder(path, src)
	fm := frontMatterSpan(src)
	if !fm.IsEmpty() {
		builder.SetFrontMatter(fm, decodeFrontMatter(pctx))
	}

	m := newMapper(builder, fm)
	m.mapDocument(gmDoc)

	doc := builder.Build()
	doc.BOM = bom
	return doc, nil
}

func invalidOffset(src []byte) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(src)
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	exts := []goldmark.Extender{&frontmatter.Extender{}}
	if flavor == FlavorGFM {
		exts = append(exts, extension.GFM)
	}
	return goldmark.New(goldmark.WithExtensions(exts...))
}
