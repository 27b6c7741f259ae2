package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupSuffix is appended to a file's path to name its sidecar backup.
const BackupSuffix = ".spanedit.bak"

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup stores the snapshot's content next to the file. An existing
// backup is kept, so repeated runs preserve the oldest content. It returns
// true if a backup was written.
func Backup(ctx context.Context, snap *Snapshot) (bool, error) {
	backupPath := BackupPath(snap.Path)

	_, err := os.Stat(backupPath)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat backup %s: %w", backupPath, err)
	}

	if err := WriteAtomic(ctx, backupPath, snap.Content, snap.Mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// Restore copies a file's backup over it and removes the backup. It
// returns false if there is no backup.
func Restore(ctx context.Context, path string) (bool, error) {
	backup, err := Read(ctx, BackupPath(path))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := WriteAtomic(ctx, path, backup.Content, backup.Mode); err != nil {
		return false, fmt.Errorf("restore %s: %w", path, err)
	}
	if err := os.Remove(backup.Path); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}
