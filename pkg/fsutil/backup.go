package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupSuffix names a backup: "README.md" is saved as
// "README.md.downlint.bak".
const BackupSuffix = ".downlint.bak"

// BackupPath returns where the backup of path is stored.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup saves content, the file's content before fixing, next to the
// snapshotted file. A backup that already exists is never replaced, so the
// oldest content survives repeated fix runs. It reports whether a backup
// was created.
func Backup(ctx context.Context, snap *Snapshot, content []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("backup %s: %w", snap.Path, err)
	}

	mode := snap.Mode.Perm()
	if mode == 0 {
		mode = DefaultFileMode
	}
	dst := BackupPath(snap.Path)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create backup: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return false, fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return false, fmt.Errorf("close backup: %w", err)
	}
	return true, nil
}
