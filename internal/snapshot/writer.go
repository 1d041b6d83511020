package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/snapname"
)

// RetentionEnforcer caps a single file's snapshot group after a new snapshot
// lands. Implemented by the retention engine; injected to keep the writer
// free of policy.
type RetentionEnforcer interface {
	EnforceGroup(ctx context.Context, originalPath string)
}

// Writer takes pre-overwrite snapshots. A failed snapshot never blocks the
// caller's primary write: the error is returned so the hook can log it, and
// nothing else happens.
type Writer struct {
	fs        fs.FS
	log       logging.Logger
	retention RetentionEnforcer
	now       func() time.Time
}

func NewWriter(filesystem fs.FS, log logging.Logger, retention RetentionEnforcer) *Writer {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Writer{
		fs:        filesystem,
		log:       log,
		retention: retention,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Snapshot copies path's current content to a timestamped sibling and
// returns the new snapshot path. A file that does not exist yet yields
// ("", nil): first-time creation has nothing to protect.
func (w *Writer) Snapshot(ctx context.Context, path string) (string, error) {
	return w.write(ctx, path, snapname.KindSnapshot)
}

// SnapshotPreRevert is the revert path's safety copy: same mechanics, but
// the artifact carries the pre-revert marker so discovery never mistakes it
// for an agent-created snapshot.
func (w *Writer) SnapshotPreRevert(ctx context.Context, path string) (string, error) {
	return w.write(ctx, path, snapname.KindPreRevert)
}

func (w *Writer) write(ctx context.Context, path string, kind snapname.Kind) (string, error) {
	if _, err := w.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.log.Debug("snapshot: %s does not exist, nothing to protect", path)
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	content, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	snapPath := w.unusedName(path, kind)
	if err := w.fs.WriteFileAtomic(ctx, snapPath, content); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", snapPath, err)
	}
	w.log.Info("snapshot: %s -> %s (%d bytes)", path, snapPath, len(content))

	// Pre-revert copies never trigger enforcement: the enforcement pass
	// ranks the whole group and could delete the snapshot an in-flight
	// revert is about to read.
	if w.retention != nil && kind == snapname.KindSnapshot {
		w.retention.EnforceGroup(ctx, path)
	}
	return snapPath, nil
}

// unusedName picks a snapshot name that does not collide with an existing
// artifact. Two snapshots inside one millisecond would otherwise silently
// overwrite each other, breaking snapshot immutability.
func (w *Writer) unusedName(path string, kind snapname.Kind) string {
	t := w.now()
	name := ""
	for i := 0; i < 1000; i++ {
		name = snapname.Make(path, t)
		if kind == snapname.KindPreRevert {
			name = snapname.MakePreRevert(path, t)
		}
		if _, err := w.fs.Stat(name); errors.Is(err, os.ErrNotExist) {
			return name
		}
		t = t.Add(time.Millisecond)
	}
	return name
}
