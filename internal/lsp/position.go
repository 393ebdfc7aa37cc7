package lsp

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// positionAt converts a byte offset in content to an LSP position, which
// counts UTF-16 code units within the line. Offsets past the end clamp to
// the end of the content.
func positionAt(content []byte, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}
	if offset < 0 {
		offset = 0
	}

	line := 0
	lineStart := 0
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	character := 0
	for i := lineStart; i < offset; {
		r, size := utf8.DecodeRune(content[i:])
		if i+size > offset {
			break
		}
		character += utf16.RuneLen(r)
		i += size
	}

	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}

// rangeOf converts a half-open byte range to an LSP range.
func rangeOf(content []byte, start, end int) protocol.Range {
	return protocol.Range{
		Start: positionAt(content, start),
		End:   positionAt(content, end),
	}
}

// rangesOverlap reports whether two ranges share a position. Touching
// ranges count, so a cursor at the end of a violation still matches it.
func rangesOverlap(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// offsetAt converts an LSP position to a byte offset in content. Positions
// past the end of a line clamp to the line end.
func offsetAt(content []byte, pos protocol.Position) int {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		next := bytes.IndexByte(content[offset:], '\n')
		if next < 0 {
			return len(content)
		}
		offset += next + 1
	}

	units := protocol.UInteger(0)
	for offset < len(content) && content[offset] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRune(content[offset:])
		units += protocol.UInteger(utf16.RuneLen(r))
		offset += size
	}
	return offset
}
