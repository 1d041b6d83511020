// Package revert restores files from snapshots.
package revert

import (
	"fmt"
	"time"
)

// Operation is one (original, snapshot) restore request. Construct with
// NewOperation to get the default safety options; a zero Operation reverts
// with every guard disabled.
type Operation struct {
	OriginalPath string
	SnapshotPath string
	// BackupCurrentFirst snapshots the file's current content before it is
	// discarded. Default true.
	BackupCurrentFirst bool
	// DeleteSnapshotAfter removes the snapshot once the restore succeeds.
	DeleteSnapshotAfter bool
	// ValidateBeforeRevert reads the snapshot up front and refuses to touch
	// the original if it is unreadable. Default true.
	ValidateBeforeRevert bool
}

// NewOperation returns an Operation with the default options.
func NewOperation(originalPath, snapshotPath string) Operation {
	return Operation{
		OriginalPath:         originalPath,
		SnapshotPath:         snapshotPath,
		BackupCurrentFirst:   true,
		ValidateBeforeRevert: true,
	}
}

// Result reports the outcome of a revert call, single or batch. It is
// complete when returned and never mutated afterwards.
type Result struct {
	// BatchID correlates this result with the executor's log lines.
	BatchID       string
	Success       bool
	RestoredPaths []string
	Errors        []string
	Summary       string
	FinishedAt    time.Time
}

func summarize(requested, restored, failed int) string {
	switch {
	case failed == 0 && restored == requested:
		if restored == 1 {
			return "restored 1 file"
		}
		return fmt.Sprintf("restored %d files", restored)
	case restored == 0:
		return fmt.Sprintf("failed to restore %d of %d files", failed, requested)
	default:
		return fmt.Sprintf("restored %d of %d files (%d failed)", restored, requested, failed)
	}
}
