package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"crate-sync/internal/logging"
)

// WriteFileAtomic writes the output of write to path without ever exposing a
// partially written file. Data goes to a temporary file in the destination
// directory, which is synced, closed and renamed over path. On any failure
// the temporary file is removed and the previous contents of path are left
// untouched.
func WriteFileAtomic(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	start := time.Now()
	volume := defaultResolver.Resolve(path)
	defer func() {
		observe().ObserveOperation(volume, "write", time.Since(start).Seconds(), err)
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if committed {
			return
		}
		if closeErr := tmp.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			logging.Debug("failed to close temp file %s: %v", tmpName, closeErr)
		}
		if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
			logging.Warn("failed to remove temp file %s: %v", tmpName, removeErr)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	renameStart := time.Now()
	err = os.Rename(tmpName, path)
	observe().ObserveOperation(volume, "rename", time.Since(renameStart).Seconds(), err)
	if err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry so the rename survives a crash.
// Not every platform supports fsync on directories; failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		logging.Debug("directory sync not supported for %s: %v", dir, err)
	}
}
