package fix_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/fix"
)

func TestDiff_Equal(t *testing.T) {
	t.Parallel()

	assert.Empty(t, fix.Diff("a.md", []byte("x\n"), []byte("x\n")))
	assert.Empty(t, fix.Diff("a.md", nil, nil))
	assert.Nil(t, fix.Hunks([]byte("x"), []byte("x")))
}

func TestDiff_SingleChange(t *testing.T) {
	t.Parallel()

	before := "one\ntwo  \nthree\n"
	after := "one\ntwo\nthree\n"

	want := "--- a/doc.md\n+++ b/doc.md\n" +
		"@@ -1,3 +1,3 @@\n" +
		" one\n" +
		"-two  \n" +
		"+two\n" +
		" three\n"
	assert.Equal(t, want, fix.Diff("doc.md", []byte(before), []byte(after)))
}

func TestDiff_MissingFinalNewline(t *testing.T) {
	t.Parallel()

	got := fix.Diff("doc.md", []byte("a\nb"), []byte("a\nb\n"))
	want := "--- a/doc.md\n+++ b/doc.md\n" +
		"@@ -1,2 +1,2 @@\n" +
		" a\n" +
		"-b\n\\ No newline at end of file\n" +
		"+b\n"
	assert.Equal(t, want, got)
}

func TestDiff_InsertIntoEmpty(t *testing.T) {
	t.Parallel()

	got := fix.Diff("new.md", nil, []byte("hello\n"))
	assert.Contains(t, got, "@@ -0,0 +1 @@\n+hello\n")
}

func TestHunks_SplitsDistantChanges(t *testing.T) {
	t.Parallel()

	var before, after []string
	for i := range 30 {
		line := strings.Repeat("x", i+1) + "\n"
		before = append(before, line)
		switch i {
		case 2, 25:
			after = append(after, "changed\n")
		default:
			after = append(after, line)
		}
	}

	hunks := fix.Hunks([]byte(strings.Join(before, "")), []byte(strings.Join(after, "")))
	require.Len(t, hunks, 2)

	assert.Equal(t, 1, hunks[0].OldStart)
	assert.Equal(t, 6, hunks[0].OldLines)
	assert.Equal(t, 23, hunks[1].OldStart)
	assert.Equal(t, 7, hunks[1].OldLines)

	ins, del := fix.Stat(hunks)
	assert.Equal(t, 2, ins)
	assert.Equal(t, 2, del)
}

func TestHunks_MergesNearbyChanges(t *testing.T) {
	t.Parallel()

	before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"
	after := "1\nX\n3\n4\n5\n6\n7\nY\n9\n10\n"

	hunks := fix.Hunks([]byte(before), []byte(after))
	require.Len(t, hunks, 1)
	assert.Equal(t, 1, hunks[0].NewStart)
	assert.Equal(t, 10, hunks[0].NewLines)
}

func FuzzHunks(f *testing.F) {
	f.Add([]byte(""), []byte(""))
	f.Add([]byte("a\nb\nc\n"), []byte("a\nx\nc\n"))
	f.Add([]byte("line1\nline2"), []byte("line1\nline2\n"))
	f.Add([]byte("a\n\n\nb\n"), []byte("a\n\nb\n"))

	f.Fuzz(func(t *testing.T, before, after []byte) {
		hunks := fix.Hunks(before, after)

		// Replaying the hunks' new side over the untouched lines must
		// rebuild after.
		oldLines := strings.SplitAfter(string(before), "\n")
		if len(oldLines) > 0 && oldLines[len(oldLines)-1] == "" {
			oldLines = oldLines[:len(oldLines)-1]
		}

		var rebuilt strings.Builder
		next := 1
		for _, h := range hunks {
			start := h.OldStart
			for ; next < start && next <= len(oldLines); next++ {
				rebuilt.WriteString(oldLines[next-1])
			}
			for _, op := range h.Ops {
				if op.Kind != fix.OpDelete {
					rebuilt.WriteString(op.Text)
				}
			}
			next = start + h.OldLines
		}
		for ; next <= len(oldLines); next++ {
			rebuilt.WriteString(oldLines[next-1])
		}

		if rebuilt.String() != string(after) {
			t.Fatalf("rebuilt %q, want %q", rebuilt.String(), after)
		}
	})
}
