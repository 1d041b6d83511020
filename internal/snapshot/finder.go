package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/snapname"
)

// Finder locates snapshots on disk. Discovery never mutates the filesystem.
type Finder struct {
	fs   fs.FS
	log  logging.Logger
	opts WalkOptions
}

// NewFinder builds a finder whose whole-project scans are bounded by
// maxDepth and budget and skip the default deny-list plus extraSkipDirs.
func NewFinder(filesystem fs.FS, log logging.Logger, maxDepth int, budget time.Duration, extraSkipDirs []string) *Finder {
	if filesystem == nil {
		filesystem = fs.New()
	}

	skip := make(map[string]struct{}, len(DefaultSkipDirs)+len(extraSkipDirs))
	for _, d := range DefaultSkipDirs {
		skip[d] = struct{}{}
	}
	for _, d := range extraSkipDirs {
		skip[d] = struct{}{}
	}

	return &Finder{
		fs:  filesystem,
		log: log,
		opts: WalkOptions{
			MaxDepth: maxDepth,
			Budget:   budget,
			SkipDir: func(name string) bool {
				_, ok := skip[name]
				return ok
			},
		},
	}
}

// FindForFile lists every snapshot protecting originalPath, newest first.
// A missing parent directory yields an empty result; any other listing
// failure is surfaced so "no snapshots" is never reported for a directory
// that could not be read.
func (f *Finder) FindForFile(ctx context.Context, originalPath string) (Group, error) {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)

	entries, err := f.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		f.log.Warn("snapshot: cannot list %s: %v", dir, err)
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var group Group
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if !strings.HasPrefix(e.Name, base) || !snapname.IsSnapshotName(e.Name) {
			continue
		}
		full := filepath.Join(dir, e.Name)
		parsed, ok := snapname.Parse(full)
		if !ok || parsed.OriginalPath != originalPath {
			continue
		}
		group = append(group, f.record(ctx, full, parsed))
	}

	group.Sort()
	return group, nil
}

// FindAll walks the project tree and groups every snapshot by the original
// path parsed out of its name. The walk is depth-, deny-list- and
// budget-bounded; exceeding the budget returns ErrScanTimeout rather than a
// partial map masquerading as a complete one.
func (f *Finder) FindAll(ctx context.Context, projectRoot string) (map[string]Group, error) {
	groups := make(map[string]Group)

	err := Walk(ctx, f.fs, projectRoot, f.opts, func(path string) {
		if !snapname.IsSnapshotName(filepath.Base(path)) {
			return
		}
		parsed, ok := snapname.Parse(path)
		if !ok {
			return
		}
		groups[parsed.OriginalPath] = append(groups[parsed.OriginalPath], f.record(ctx, path, parsed))
	})
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		g.Sort()
	}
	return groups, nil
}

// record builds a Record for one artifact, including the read-back
// integrity check. Unreadable snapshots are reported with Valid=false, never
// dropped.
func (f *Finder) record(ctx context.Context, snapshotPath string, parsed snapname.Parsed) Record {
	r := Record{
		OriginalPath:   parsed.OriginalPath,
		SnapshotPath:   snapshotPath,
		Timestamp:      parsed.Timestamp,
		TimestampValid: parsed.TimestampValid,
		CreatedBy:      parsed.Kind.String(),
	}
	if !parsed.TimestampValid {
		f.log.Warn("snapshot: %s has an unparsable timestamp, treating as oldest", snapshotPath)
	}

	if st, err := f.fs.Stat(snapshotPath); err == nil {
		r.SizeBytes = st.Size
	}
	if _, err := f.fs.ReadFile(ctx, snapshotPath); err == nil {
		r.Valid = true
	} else {
		f.log.Warn("snapshot: %s is unreadable: %v", snapshotPath, err)
	}
	return r
}
