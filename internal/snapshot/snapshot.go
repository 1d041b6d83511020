// Package snapshot creates and discovers timestamped file snapshots.
//
// The filesystem is the sole source of truth: every record here is derived
// from a live directory listing plus the snapname grammar, never from a
// persisted index.
package snapshot

import (
	"sort"
	"time"
)

// Record describes one snapshot found on disk.
type Record struct {
	OriginalPath string
	SnapshotPath string
	Timestamp    time.Time
	SizeBytes    int64
	// Valid reports whether the snapshot content could be read back.
	// Invalid snapshots are still listed so the user can see they exist,
	// but automatic restore paths refuse them.
	Valid bool
	// TimestampValid is false when the name's timestamp segment did not
	// parse and Timestamp is the epoch fallback. Such records stay
	// listable and prunable but carry no usable point in time.
	TimestampValid bool
	// CreatedBy is the provenance tag: "agent" for pre-overwrite
	// snapshots, "pre-revert" for safety copies taken by the revert path.
	CreatedBy string
}

// Group is every record sharing one original path, newest first.
type Group []Record

// Sort orders the group newest-first; equal timestamps fall back to lexical
// order of the snapshot path.
func (g Group) Sort() {
	sort.Slice(g, func(i, j int) bool {
		if !g[i].Timestamp.Equal(g[j].Timestamp) {
			return g[i].Timestamp.After(g[j].Timestamp)
		}
		return g[i].SnapshotPath < g[j].SnapshotPath
	})
}

// GroupStats are per-group totals for display purposes.
type GroupStats struct {
	Count      int
	TotalBytes int64
}

func (g Group) Stats() GroupStats {
	s := GroupStats{Count: len(g)}
	for _, r := range g {
		s.TotalBytes += r.SizeBytes
	}
	return s
}
