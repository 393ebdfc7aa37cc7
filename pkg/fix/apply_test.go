package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/fix"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.Edit
		want    string
		applied int
		skipped int
	}{
		{
			name:    "no edits",
			content: "hello",
			want:    "hello",
		},
		{
			name:    "single replacement",
			content: "hello world",
			edits:   []fix.Edit{{Start: 6, End: 11, Text: "there"}},
			want:    "hello there",
			applied: 1,
		},
		{
			name:    "unsorted input",
			content: "a  b  c",
			edits: []fix.Edit{
				{Start: 5, End: 6, Text: ""},
				{Start: 2, End: 3, Text: ""},
			},
			want:    "a b c",
			applied: 2,
		},
		{
			name:    "insert and delete",
			content: "abc",
			edits: []fix.Edit{
				{Start: 3, End: 3, Text: "\n"},
				{Start: 0, End: 1, Text: ""},
			},
			want:    "bc\n",
			applied: 2,
		},
		{
			name:    "adjacent edits both apply",
			content: "abcd",
			edits: []fix.Edit{
				{Start: 0, End: 2, Text: "X"},
				{Start: 2, End: 4, Text: "Y"},
			},
			want:    "XY",
			applied: 2,
		},
		{
			name:    "overlap keeps the earlier edit",
			content: "abcdef",
			edits: []fix.Edit{
				{Start: 2, End: 5, Text: "2"},
				{Start: 1, End: 3, Text: "1"},
			},
			want:    "a1def",
			applied: 1,
			skipped: 1,
		},
		{
			name:    "overlapping deletions are not merged",
			content: "abcdef",
			edits: []fix.Edit{
				{Start: 1, End: 3, Text: ""},
				{Start: 2, End: 4, Text: ""},
			},
			want:    "adef",
			applied: 1,
			skipped: 1,
		},
		{
			name:    "two inserts at one offset",
			content: "ab",
			edits: []fix.Edit{
				{Start: 1, End: 1, Text: "X"},
				{Start: 1, End: 1, Text: "Y"},
			},
			want:    "aXb",
			applied: 1,
			skipped: 1,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			content := []byte(testCase.content)
			res, err := fix.Apply(content, testCase.edits)
			require.NoError(t, err)

			assert.Equal(t, testCase.want, string(res.Content))
			assert.Len(t, res.Applied, testCase.applied)
			assert.Len(t, res.Skipped, testCase.skipped)
			assert.Equal(t, testCase.applied > 0, res.Changed())
			assert.Equal(t, testCase.content, string(content), "input must not change")
		})
	}
}

func TestApply_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, edit := range []fix.Edit{
		{Start: -1, End: 0},
		{Start: 3, End: 2},
		{Start: 0, End: 10},
	} {
		_, err := fix.Apply([]byte("abc"), []fix.Edit{edit})

		var rangeErr *fix.RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, edit, rangeErr.Edit)
	}
}
