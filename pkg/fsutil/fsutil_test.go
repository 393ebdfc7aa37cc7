package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/fsutil"
)

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "# Title\n", 0o600)

	content, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(content))
	assert.Equal(t, path, snap.Path)
	assert.Equal(t, int64(8), snap.Size)

	changed, err := snap.Changed()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(dir, "missing.md"))
	require.ErrorIs(t, err, fsutil.ErrNotFound)

	_, _, err = fsutil.ReadFile(context.Background(), dir)
	require.ErrorIs(t, err, fsutil.ErrIsDirectory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = fsutil.ReadFile(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_Changed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "one\n", 0o644)

	_, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)

	// Same size, different content, mtime forced back.
	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0o644))
	require.NoError(t, os.Chtimes(path, snap.ModTime, snap.ModTime))

	changed, err := snap.Changed()
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, os.Remove(path))
	changed, err = snap.Changed()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "old\n", 0o600)

	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), path, []byte("new\n"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	if runtime.GOOS != "windows" {
		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileAtomic_KeepsSymlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	dir := t.TempDir()
	target := writeFile(t, dir, "target.md", "old\n", 0o644)
	link := filepath.Join(dir, "link.md")
	require.NoError(t, os.Symlink(target, link))

	require.NoError(t, fsutil.WriteFileAtomic(context.Background(), link, []byte("new\n"), 0))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link is still a symlink")

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	err := fsutil.WriteFileAtomic(context.Background(),
		filepath.Join(t.TempDir(), "nope", "a.md"), []byte("x"), 0)
	require.Error(t, err)
}

func TestWriteIfUnchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "old\n", 0o644)

	_, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, fsutil.WriteIfUnchanged(context.Background(), snap, []byte("fixed\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fixed\n", string(got))

	// The old snapshot is now stale.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	err = fsutil.WriteIfUnchanged(context.Background(), snap, []byte("again\n"))
	require.ErrorIs(t, err, fsutil.ErrModified)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fixed\n", string(got))
}

func TestBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "original\n", 0o644)

	content, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)

	written, err := fsutil.Backup(context.Background(), snap, content)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = fsutil.Backup(context.Background(), snap, []byte("newer\n"))
	require.NoError(t, err)
	assert.False(t, written, "existing backup is kept")

	got, err := os.ReadFile(fsutil.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(got))
}
