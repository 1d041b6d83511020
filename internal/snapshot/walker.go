package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/egdesk/snapvault/internal/fs"
)

// ErrScanTimeout is returned when a whole-project scan exhausts its
// wall-clock budget. Callers must be able to tell "search timed out" apart
// from "found nothing".
var ErrScanTimeout = errors.New("snapshot scan timed out")

// DefaultSkipDirs are directory names that never contain user content and
// are expensive to traverse. The walker never descends into them.
var DefaultSkipDirs = []string{
	"node_modules",
	".git",
	".svn",
	".hg",
	"vendor",
	"dist",
	"build",
	"out",
	".next",
	".cache",
	"cache",
	".idea",
	".vscode",
	"__pycache__",
	"tmp",
	"temp",
	"logs",
}

// WalkOptions parameterize the bounded walk: the depth limit, the name-based
// skip predicate and the wall-clock budget are all enforced in one place.
type WalkOptions struct {
	MaxDepth int
	SkipDir  func(name string) bool
	Budget   time.Duration
}

// Walk visits every regular file under root, calling visit with the file's
// full path. Files in a directory are visited before subdirectories are
// entered, so partial results from a cancelled walk are still useful.
//
// A directory that vanishes mid-walk is treated as empty: the tree is
// expected to change underneath a scan that runs alongside live edits.
func Walk(ctx context.Context, filesystem fs.FS, root string, opts WalkOptions, visit func(path string)) error {
	if opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Budget)
		defer cancel()
	}

	err := walkDir(ctx, filesystem, root, 0, opts, visit)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrScanTimeout
	}
	return err
}

func walkDir(ctx context.Context, filesystem fs.FS, dir string, depth int, opts WalkOptions, visit func(path string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return nil
	}

	entries, err := filesystem.ReadDir(dir)
	if err != nil {
		// vanished or unreadable directory: nothing to report here
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir {
			if opts.SkipDir == nil || !opts.SkipDir(e.Name) {
				subdirs = append(subdirs, e.Name)
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(filepath.Join(dir, e.Name))
	}

	for _, name := range subdirs {
		if err := walkDir(ctx, filesystem, filepath.Join(dir, name), depth+1, opts, visit); err != nil {
			return err
		}
	}
	return nil
}
