package fix

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// OpKind classifies one line of a diff.
type OpKind int

const (
	// OpEqual is an unchanged line.
	OpEqual OpKind = iota
	// OpDelete is a line only in the original.
	OpDelete
	// OpInsert is a line only in the modified text.
	OpInsert
)

// Op is one line of a diff. Text keeps the line terminator when the line
// had one, so a missing final newline shows up as a change.
type Op struct {
	Kind OpKind
	Text string
}

// Hunk is a group of nearby changes with surrounding context.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Ops                []Op
}

// Hunks computes the line-level hunks that turn before into after. It
// returns nil when the texts are equal.
func Hunks(before, after []byte) []Hunk {
	if bytes.Equal(before, after) {
		return nil
	}
	return group(lineOps(splitLines(before), splitLines(after)))
}

// Diff renders a unified diff of before and after labelled with path. It
// returns "" when the texts are equal.
func Diff(path string, before, after []byte) string {
	hunks := Hunks(before, after)
	if len(hunks) == 0 {
		return ""
	}

	name := strings.TrimPrefix(path, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", name, name)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", hunkRange(h.OldStart, h.OldLines), hunkRange(h.NewStart, h.NewLines))
		for _, op := range h.Ops {
			switch op.Kind {
			case OpDelete:
				b.WriteByte('-')
			case OpInsert:
				b.WriteByte('+')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(op.Text)
			if !strings.HasSuffix(op.Text, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// Stat counts inserted and deleted lines.
func Stat(hunks []Hunk) (int, int) {
	var ins, del int
	for _, h := range hunks {
		for _, op := range h.Ops {
			switch op.Kind {
			case OpInsert:
				ins++
			case OpDelete:
				del++
			}
		}
	}
	return ins, del
}

func hunkRange(start, n int) string {
	if n == 1 {
		return fmt.Sprint(start)
	}
	if n == 0 {
		// An empty range names the line before it.
		start--
	}
	return fmt.Sprintf("%d,%d", start, n)
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lineOps aligns a and b on their longest common subsequence. Common
// prefix and suffix are trimmed first so typical fixes, which touch a few
// lines, keep the table small.
func lineOps(a, b []string) []Op {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	ops := make([]Op, 0, len(a)+len(b))
	for _, line := range a[:prefix] {
		ops = append(ops, Op{Kind: OpEqual, Text: line})
	}

	midA, midB := a[prefix:len(a)-suffix], b[prefix:len(b)-suffix]
	// table[i][j] is the LCS length of midA[i:] and midB[j:].
	table := make([][]int, len(midA)+1)
	for i := range table {
		table[i] = make([]int, len(midB)+1)
	}
	for i := len(midA) - 1; i >= 0; i-- {
		for j := len(midB) - 1; j >= 0; j-- {
			if midA[i] == midB[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(midA) || j < len(midB) {
		switch {
		case i < len(midA) && j < len(midB) && midA[i] == midB[j]:
			ops = append(ops, Op{Kind: OpEqual, Text: midA[i]})
			i++
			j++
		case j == len(midB) || (i < len(midA) && table[i+1][j] >= table[i][j+1]):
			ops = append(ops, Op{Kind: OpDelete, Text: midA[i]})
			i++
		default:
			ops = append(ops, Op{Kind: OpInsert, Text: midB[j]})
			j++
		}
	}

	for _, line := range a[len(a)-suffix:] {
		ops = append(ops, Op{Kind: OpEqual, Text: line})
	}
	return ops
}

// group cuts ops into hunks, merging changes separated by no more than
// twice the context width.
func group(ops []Op) []Hunk {
	// oldAt[i] and newAt[i] are the line numbers ops[i] occupies.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	oldLine, newLine := 1, 1
	for i, op := range ops {
		oldAt[i], newAt[i] = oldLine, newLine
		if op.Kind != OpInsert {
			oldLine++
		}
		if op.Kind != OpDelete {
			newLine++
		}
	}
	oldAt[len(ops)], newAt[len(ops)] = oldLine, newLine

	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].Kind == OpEqual {
			i++
			continue
		}

		end := i + 1
		for j := end; j < len(ops); j++ {
			if ops[j].Kind == OpEqual {
				continue
			}
			if j-end > 2*contextLines {
				break
			}
			end = j + 1
		}

		from := max(i-contextLines, 0)
		to := min(end+contextLines, len(ops))
		h := Hunk{
			OldStart: oldAt[from],
			NewStart: newAt[from],
			Ops:      slices.Clone(ops[from:to]),
		}
		for _, op := range h.Ops {
			if op.Kind != OpInsert {
				h.OldLines++
			}
			if op.Kind != OpDelete {
				h.NewLines++
			}
		}
		hunks = append(hunks, h)
		i = to
	}
	return hunks
}
