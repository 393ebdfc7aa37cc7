package goldmark

import (
	"sort"

	"github.com/yaklabco/downlint/pkg/mdast"
)

// scanner answers line-level questions about the source while spans are
// being recovered.
type scanner struct {
	src   []byte
	lines []mdast.Line
}

func (s *scanner) lineIndex(offset int) int {
	idx := sort.Search(len(s.lines), func(i int) bool {
		return s.lines[i].Next > offset
	})
	if idx >= len(s.lines) {
		idx = len(s.lines) - 1
	}
	return idx
}

func (s *scanner) lineStart(offset int) int {
	return s.lines[s.lineIndex(offset)].Start
}

// lineEnd returns the end of the content of the line holding offset.
func (s *scanner) lineEnd(offset int) int {
	return s.lines[s.lineIndex(offset)].End
}

// trimmedLineEnd is lineEnd without trailing spaces and tabs, but never
// before offset.
func (s *scanner) trimmedLineEnd(offset int) int {
	end := s.lineEnd(offset)
	for end > offset && isBlank(s.src[end-1]) {
		end--
	}
	return end
}

// nextLine returns the start of the line after the one holding offset, or
// len(src) on the last line.
func (s *scanner) nextLine(offset int) int {
	idx := s.lineIndex(offset)
	if idx+1 >= len(s.lines) {
		return len(s.src)
	}
	return s.lines[idx+1].Start
}

// lastContentByte maps an exclusive segment stop to the offset of its last
// content byte, stepping over a trailing line terminator.
func (s *scanner) lastContentByte(start, stop int) int {
	for stop > start && (s.src[stop-1] == '\n' || s.src[stop-1] == '\r') {
		stop--
	}
	if stop > start {
		return stop - 1
	}
	return start
}

// contentEnd trims terminators and trailing blanks from a segment stop.
func (s *scanner) contentEnd(start, stop int) int {
	for stop > start && (s.src[stop-1] == '\n' || s.src[stop-1] == '\r' || isBlank(s.src[stop-1])) {
		stop--
	}
	return stop
}

// matcher reports whether a construct starts at pos on a line ending at end.
type matcher func(pos, end int) bool

// seek looks for the first line at or after from where match succeeds at a
// container prefix boundary. Boundaries are the first non-blank byte and the
// positions after each block quote marker or list marker in the prefix.
// Returns -1 when nothing matches before limit.
func (s *scanner) seek(from, limit int, match matcher) int {
	if from < 0 {
		from = 0
	}
	if limit < 0 || limit > len(s.src) {
		limit = len(s.src)
	}

	for idx := s.lineIndex(from); idx < len(s.lines); idx++ {
		line := s.lines[idx]
		if line.Start > limit {
			break
		}
		pos := max(line.Start, from)
		end := line.End

		for pos <= end {
			pos = skipBlanks(s.src, pos, end)
			if pos > limit {
				break
			}
			if match(pos, end) {
				return pos
			}
			next := skipPrefixMarker(s.src, pos, end)
			if next == pos {
				break
			}
			pos = next
		}
	}

	return -1
}

// skipPrefixMarker steps over one block quote or list marker at pos.
func skipPrefixMarker(src []byte, pos, end int) int {
	if pos >= end {
		return pos
	}
	if src[pos] == '>' {
		return pos + 1
	}
	if n := bulletLen(src, pos, end); n > 0 {
		return pos + n
	}
	if n, _ := orderedLen(src, pos, end); n > 0 {
		return pos + n
	}
	return pos
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func skipBlanks(src []byte, pos, end int) int {
	for pos < end && isBlank(src[pos]) {
		pos++
	}
	return pos
}

// bulletLen returns the length of a bullet marker at pos, or 0.
func bulletLen(src []byte, pos, end int) int {
	if pos >= end {
		return 0
	}
	switch src[pos] {
	case '-', '*', '+':
	default:
		return 0
	}
	if pos+1 == end || isBlank(src[pos+1]) {
		return 1
	}
	return 0
}

// orderedLen returns the length of an ordered list marker at pos and its
// numeric value, or 0.
func orderedLen(src []byte, pos, end int) (int, int) {
	idx := pos
	value := 0
	for idx < end && idx-pos < 9 && src[idx] >= '0' && src[idx] <= '9' {
		value = value*10 + int(src[idx]-'0')
		idx++
	}
	if idx == pos || idx >= end {
		return 0, 0
	}
	if src[idx] != '.' && src[idx] != ')' {
		return 0, 0
	}
	idx++
	if idx == end || isBlank(src[idx]) {
		return idx - pos, value
	}
	return 0, 0
}

// fenceAt returns the fence character and run length at pos, or 0.
func fenceAt(src []byte, pos, end int) (byte, int) {
	if pos >= end || (src[pos] != '`' && src[pos] != '~') {
		return 0, 0
	}
	char := src[pos]
	n := 0
	for pos+n < end && src[pos+n] == char {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	return char, n
}

// isClosingFence reports whether the text at pos closes a fence of char
// with at least length runs.
func isClosingFence(src []byte, pos, end int, char byte, length int) bool {
	c, n := fenceAt(src, pos, end)
	if c != char || n < length {
		return false
	}
	return skipBlanks(src, pos+n, end) == end
}

// isThematicBreak reports whether src[pos:end] is a thematic break.
func isThematicBreak(src []byte, pos, end int) bool {
	var char byte
	count := 0
	for i := pos; i < end; i++ {
		c := src[i]
		switch {
		case isBlank(c):
			continue
		case c == '-' || c == '*' || c == '_':
			if char == 0 {
				char = c
			} else if c != char {
				return false
			}
			count++
		default:
			return false
		}
	}
	return count >= 3
}

// isATXStart reports whether an ATX heading opener starts at pos.
func isATXStart(src []byte, pos, end int) bool {
	n := 0
	for pos+n < end && src[pos+n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	return pos+n == end || isBlank(src[pos+n])
}

// isSetextUnderline reports whether src[pos:end] underlines a heading.
func isSetextUnderline(src []byte, pos, end int) bool {
	if pos >= end || (src[pos] != '=' && src[pos] != '-') {
		return false
	}
	char := src[pos]
	idx := pos
	for idx < end && src[idx] == char {
		idx++
	}
	return skipBlanks(src, idx, end) == end
}
