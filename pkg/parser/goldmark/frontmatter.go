package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/yaklabco/downlint/pkg/mdast"
)

// frontMatterSpan locates a metadata block opened by "---" or "+++" on the
// first line and closed by the same delimiter (or "..." for YAML). The
// returned span ends after the closing delimiter line's content.
func frontMatterSpan(src []byte) mdast.Span {
	lines := mdast.BuildLines(src)
	if len(lines) < 2 {
		return mdast.Span{}
	}

	first := bytes.TrimRight(src[lines[0].Start:lines[0].End], " \t")
	var closers [][]byte
	switch string(first) {
	case "---":
		closers = [][]byte{[]byte("---"), []byte("...")}
	case "+++":
		closers = [][]byte{[]byte("+++")}
	default:
		return mdast.Span{}
	}

	for _, line := range lines[1:] {
		text := bytes.TrimRight(src[line.Start:line.End], " \t")
		for _, closer := range closers {
			if bytes.Equal(text, closer) {
				return mdast.Span{Start: 0, End: line.End}
			}
		}
	}

	return mdast.Span{}
}

// decodeFrontMatter returns the metadata goldmark extracted, or nil when the
// block could not be decoded.
func decodeFrontMatter(pctx parser.Context) map[string]any {
	data := frontmatter.Get(pctx)
	if data == nil {
		return nil
	}

	var meta map[string]any
	if err := data.Decode(&meta); err != nil {
		return nil
	}
	return meta
}
