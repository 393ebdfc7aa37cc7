package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is used when no mode is known for a new file.
const DefaultFileMode os.FileMode = 0o644

// WriteFileAtomic replaces path with content. The content goes to a
// temporary file in the target's directory which is then renamed over the
// target, so readers see either the old or the new bytes. When path is a
// symlink the file it points to is replaced and the link is kept. A zero
// mode means DefaultFileMode.
func WriteFileAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}
	if resolved, evalErr := filepath.EvalSymlinks(path); evalErr == nil {
		path = resolved
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Chmod(mode.Perm()); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteIfUnchanged writes content over the snapshotted file, keeping its
// mode. If the file changed on disk since the snapshot it returns
// ErrModified and writes nothing.
func WriteIfUnchanged(ctx context.Context, snap *Snapshot, content []byte) error {
	changed, err := snap.Changed()
	if err != nil {
		return err
	}
	if changed {
		return fmt.Errorf("%w: %s", ErrModified, snap.Path)
	}
	return WriteFileAtomic(ctx, snap.Path, content, snap.Mode)
}
