package mdast

import (
	"sort"
	"unicode/utf8"
)

// Line describes one source line. End excludes the line terminator and
// Next is the offset where the following line begins.
type Line struct {
	Start int
	End   int
	Next  int
}

// Position is a 1-based line and column. Columns count runes.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether both components are positive.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// Before reports whether p sorts before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// BuildLines indexes the lines of src. LF and CRLF terminators are
// recognized. A trailing terminator does not start an extra line.
func BuildLines(src []byte) []Line {
	lines := make([]Line, 0, len(src)/40+1)
	start := 0

	for idx, char := range src {
		if char != '\n' {
			continue
		}
		end := idx
		if idx > start && src[idx-1] == '\r' {
			end = idx - 1
		}
		lines = append(lines, Line{Start: start, End: end, Next: idx + 1})
		start = idx + 1
	}

	if start < len(src) || len(src) == 0 {
		lines = append(lines, Line{Start: start, End: len(src), Next: len(src)})
	}

	return lines
}

// lineIndex returns the 0-based index of the line containing offset.
func lineIndex(lines []Line, offset int) int {
	idx := sort.Search(len(lines), func(i int) bool {
		return lines[i].Next > offset
	})
	if idx >= len(lines) {
		idx = len(lines) - 1
	}
	return idx
}

// positionIn converts a byte offset into a Position using lines.
func positionIn(src []byte, lines []Line, offset int) Position {
	if len(lines) == 0 {
		return Position{Line: 1, Column: 1}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}

	idx := lineIndex(lines, offset)
	line := lines[idx]
	if offset > line.End {
		// Inside the terminator; report the column just past the content.
		offset = line.End
	}

	return Position{
		Line:   idx + 1,
		Column: utf8.RuneCount(src[line.Start:offset]) + 1,
	}
}
