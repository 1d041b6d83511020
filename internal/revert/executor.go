package revert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/snapshot"
)

// Executor restores files from snapshots. One executor serializes its own
// operations: no two reverts run concurrently within a single instance.
// Cross-process serialization is out of scope; a concurrent external write
// to the same file is a last-writer-wins race at the filesystem level.
//
// Restoration is best-effort atomic: content is written through the atomic
// temp-then-rename path, so readers never see a torn file, but there is no
// cross-file transaction in a batch.
type Executor struct {
	mu     sync.Mutex
	fs     fs.FS
	log    logging.Logger
	writer *snapshot.Writer
}

func NewExecutor(filesystem fs.FS, log logging.Logger, writer *snapshot.Writer) *Executor {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Executor{fs: filesystem, log: log, writer: writer}
}

// Revert restores a single file.
func (e *Executor) Revert(ctx context.Context, op Operation) Result {
	return e.RevertBatch(ctx, []Operation{op})
}

// RevertBatch applies each operation independently, in caller order, and
// aggregates. The batch fails only if at least one operation failed;
// partial success is preserved in RestoredPaths and Errors so the caller
// decides whether it is acceptable.
func (e *Executor) RevertBatch(ctx context.Context, ops []Operation) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{
		BatchID: uuid.NewString(),
		Success: true,
	}

	for _, op := range ops {
		if err := e.revertOne(ctx, res.BatchID, op, &res); err != nil {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", op.OriginalPath, err))
			e.log.Error("revert[%s]: %s failed: %v", res.BatchID, op.OriginalPath, err)
		}
	}

	res.Summary = summarize(len(ops), len(res.RestoredPaths), len(ops)-len(res.RestoredPaths))
	res.FinishedAt = time.Now()
	return res
}

// revertOne runs the per-file state machine: validate, pre-revert backup,
// restore, optional cleanup. Only a failed restore fails the operation.
func (e *Executor) revertOne(ctx context.Context, batchID string, op Operation, res *Result) error {
	if op.OriginalPath == "" || op.SnapshotPath == "" {
		return fmt.Errorf("operation requires both original and snapshot paths")
	}

	if op.ValidateBeforeRevert {
		if _, err := e.fs.ReadFile(ctx, op.SnapshotPath); err != nil {
			return fmt.Errorf("invalid snapshot: %w", err)
		}
	}

	if op.BackupCurrentFirst {
		// The current content is about to be discarded; keep a safety
		// copy. Failure is a warning, not a reason to block the revert
		// the user explicitly asked for.
		if _, err := e.writer.SnapshotPreRevert(ctx, op.OriginalPath); err != nil {
			e.log.Warn("revert[%s]: pre-revert backup of %s failed: %v", batchID, op.OriginalPath, err)
		}
	}

	content, err := e.fs.ReadFile(ctx, op.SnapshotPath)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if err := e.fs.WriteFileAtomic(ctx, op.OriginalPath, content); err != nil {
		return fmt.Errorf("restoring content: %w", err)
	}

	res.RestoredPaths = append(res.RestoredPaths, op.OriginalPath)
	e.log.Info("revert[%s]: restored %s from %s", batchID, op.OriginalPath, op.SnapshotPath)

	if op.DeleteSnapshotAfter {
		// Cleanup failure does not undo a successful restore.
		if err := e.fs.Remove(ctx, op.SnapshotPath); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: snapshot cleanup failed: %v", op.SnapshotPath, err))
			e.log.Warn("revert[%s]: could not delete %s: %v", batchID, op.SnapshotPath, err)
		}
	}
	return nil
}
