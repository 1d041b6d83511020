// Package fs defines the filesystem abstraction used by snapvault.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"time"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	IsDir bool
}

type DirEntry struct {
	Name  string
	IsDir bool
}

type FS interface {
	Stat(path string) (FileInfo, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFileAtomic writes content to a temp file in the target's
	// directory and renames it into place, so readers never observe a
	// partially written file.
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	Remove(ctx context.Context, path string) error
	ReadDir(path string) ([]DirEntry, error)
}
