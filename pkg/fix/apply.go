// Package fix applies suggested replacements to source text and renders
// the result as a unified diff.
package fix

import (
	"bytes"
	"fmt"
	"sort"
)

// Edit replaces the bytes [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// IsInsert reports whether the edit replaces nothing.
func (e Edit) IsInsert() bool {
	return e.End == e.Start
}

// RangeError reports an edit that does not fit the content.
type RangeError struct {
	Edit Edit
	Len  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("edit [%d:%d] out of range for %d bytes", e.Edit.Start, e.Edit.End, e.Len)
}

// Result is the outcome of Apply.
type Result struct {
	Content []byte
	// Applied are the edits written to Content, in offset order.
	Applied []Edit
	// Skipped are edits that overlapped an applied edit.
	Skipped []Edit
}

// Changed reports whether Content differs from the input.
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

// Apply writes non-overlapping edits into a copy of content. Edits are taken
// in offset order; an edit that overlaps one already taken is skipped, never
// combined with it. Two insertions at the same offset also count as
// overlapping. Content is not modified.
func Apply(content []byte, edits []Edit) (Result, error) {
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return Result{}, &RangeError{Edit: e, Len: len(content)}
		}
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var res Result
	for _, e := range sorted {
		if n := len(res.Applied); n > 0 && overlaps(res.Applied[n-1], e) {
			res.Skipped = append(res.Skipped, e)
			continue
		}
		res.Applied = append(res.Applied, e)
	}

	if len(res.Applied) == 0 {
		res.Content = bytes.Clone(content)
		return res, nil
	}

	grow := 0
	for _, e := range res.Applied {
		grow += len(e.Text) - (e.End - e.Start)
	}
	var out bytes.Buffer
	out.Grow(len(content) + grow)

	cursor := 0
	for _, e := range res.Applied {
		out.Write(content[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.Write(content[cursor:])

	res.Content = out.Bytes()
	return res, nil
}

// overlaps reports whether next, which starts at or after prev, collides
// with prev. Sorting guarantees next.Start >= prev.Start.
func overlaps(prev, next Edit) bool {
	if next.Start < prev.End {
		return true
	}
	return prev.IsInsert() && next.IsInsert() && next.Start == prev.Start
}
