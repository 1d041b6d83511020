package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"context"
)

// implements atomic file writes: content lands in a temp file in the
// destination directory and is renamed into place. The temp file lives in
// the same directory so the rename never crosses a filesystem boundary.

func writeAtomicWithRetry(ctx context.Context, path string, content []byte) error {
	return retry(ctx, "write", func() error {
		return writeAtomicOnce(path, content)
	})
}

func writeAtomicOnce(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing write: %w", err)
	}
	return nil
}
