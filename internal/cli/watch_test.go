package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"docs/guide", ".git/objects", "notes"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "a.md"), []byte("# A\n"), 0o644))

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "default walks the working directory",
			paths: nil,
			want: []string{
				root,
				filepath.Join(root, "docs"),
				filepath.Join(root, "docs", "guide"),
				filepath.Join(root, "notes"),
			},
		},
		{
			name:  "file watches its parent",
			paths: []string{"notes/a.md"},
			want:  []string{filepath.Join(root, "notes")},
		},
		{
			name:  "glob watches its static prefix",
			paths: []string{"docs/**/*.md"},
			want:  []string{filepath.Join(root, "docs"), filepath.Join(root, "docs", "guide")},
		},
		{
			name:  "duplicates collapse",
			paths: []string{"notes", "notes/a.md"},
			want:  []string{filepath.Join(root, "notes")},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := watchDirs(testCase.paths, root)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestWatchDirs_Missing(t *testing.T) {
	t.Parallel()

	_, err := watchDirs([]string{"missing"}, t.TempDir())
	require.Error(t, err)
}

func TestIsMarkdownEvent(t *testing.T) {
	t.Parallel()

	assert.True(t, isMarkdownEvent(fsnotify.Event{Name: "a.md", Op: fsnotify.Write}))
	assert.True(t, isMarkdownEvent(fsnotify.Event{Name: "b.MARKDOWN", Op: fsnotify.Create}))
	assert.True(t, isMarkdownEvent(fsnotify.Event{Name: "c.md", Op: fsnotify.Remove}))
	assert.False(t, isMarkdownEvent(fsnotify.Event{Name: "d.go", Op: fsnotify.Write}))
	assert.False(t, isMarkdownEvent(fsnotify.Event{Name: "e.md", Op: fsnotify.Chmod}))
}
