package mdast

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding is wrapped by ParseError when the input is not UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

// ParseError reports input that cannot be turned into a Document. Malformed
// Markdown never produces one; only undecodable text does.
type ParseError struct {
	Path string
	// Offset is the byte offset of the first undecodable byte.
	Offset int
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: parse failed at byte %d: %v", e.Path, e.Line, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: parse failed: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
