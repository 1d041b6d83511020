// Package preview reads a file and one of its snapshots side by side and
// computes coarse line statistics. This is a sanity check for a human about
// to revert, not a merge tool: counts come from line positions, not from a
// sequence alignment.
package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/egdesk/snapvault/internal/fs"
)

// DiffStats are position-based line counts between the current content and
// the snapshot content.
type DiffStats struct {
	// Added is how many more lines the current file has than the snapshot.
	Added int
	// Removed is how many more lines the snapshot has than the current file.
	Removed int
	// Modified counts line positions whose content differs within the
	// overlapping range.
	Modified int
}

// Preview carries both full texts plus the stats.
type Preview struct {
	CurrentContent  string
	SnapshotContent string
	Stats           DiffStats
}

type Previewer struct {
	fs fs.FS
}

func NewPreviewer(filesystem fs.FS) *Previewer {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Previewer{fs: filesystem}
}

// Preview reads both sides. A missing original file is previewed as empty
// (the revert would recreate it); an unreadable snapshot is an error, since
// there is nothing meaningful to show.
func (p *Previewer) Preview(ctx context.Context, originalPath, snapshotPath string) (Preview, error) {
	snapContent, err := p.fs.ReadFile(ctx, snapshotPath)
	if err != nil {
		return Preview{}, fmt.Errorf("reading snapshot %s: %w", snapshotPath, err)
	}

	current, err := p.fs.ReadFile(ctx, originalPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Preview{}, fmt.Errorf("reading %s: %w", originalPath, err)
	}

	pv := Preview{
		CurrentContent:  string(current),
		SnapshotContent: string(snapContent),
	}
	pv.Stats = Compute(pv.CurrentContent, pv.SnapshotContent)
	return pv, nil
}

// Compute derives DiffStats from the two texts.
func Compute(current, snapshot string) DiffStats {
	curLines := strings.Split(current, "\n")
	snapLines := strings.Split(snapshot, "\n")

	var s DiffStats
	if len(curLines) > len(snapLines) {
		s.Added = len(curLines) - len(snapLines)
	} else {
		s.Removed = len(snapLines) - len(curLines)
	}

	overlap := len(curLines)
	if len(snapLines) < overlap {
		overlap = len(snapLines)
	}
	for i := 0; i < overlap; i++ {
		if curLines[i] != snapLines[i] {
			s.Modified++
		}
	}
	return s
}
