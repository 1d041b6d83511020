package retention

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/egdesk/snapvault/internal/snapname"
)

// TimeRevertSelection is one file's chosen snapshot for a point-in-time
// rollback: the closest snapshot at-or-before the target instant.
type TimeRevertSelection struct {
	OriginalPath string
	SnapshotPath string
	Timestamp    time.Time
}

// SkippedFile is a file that could not be included in a time-based revert,
// with a human-readable reason. Skips are reported, never silently dropped,
// and never counted as errors.
type SkippedFile struct {
	Path   string
	Reason string
}

// TimeRevertPlan is the full selection for reverting a project to Target.
type TimeRevertPlan struct {
	Target     time.Time
	Selections []TimeRevertSelection
	Skipped    []SkippedFile
}

// AvailableTimestamps returns the distinct agent-snapshot timestamps across
// the whole project, newest first. Pre-revert safety copies are excluded:
// they mark reverts, not states the user chose to leave.
func (e *Engine) AvailableTimestamps(ctx context.Context, projectRoot string) ([]time.Time, error) {
	groups, err := e.finder.FindAll(ctx, projectRoot)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]time.Time)
	for _, group := range groups {
		for _, rec := range group {
			if rec.CreatedBy != snapname.KindSnapshot.String() {
				continue
			}
			// An epoch fallback is not a point in time anyone chose.
			if !rec.TimestampValid {
				continue
			}
			seen[rec.Timestamp.UnixMilli()] = rec.Timestamp
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

// PlanTimeRevert selects, for every file with at least one agent snapshot,
// the newest snapshot at-or-before target. A snapshot after the target is
// never chosen: reverting must not apply a change the user has not asked
// for. Files with nothing at-or-before the target land in Skipped, as do
// files whose only candidate is unreadable.
func (e *Engine) PlanTimeRevert(ctx context.Context, projectRoot string, target time.Time) (TimeRevertPlan, error) {
	plan := TimeRevertPlan{Target: target}

	groups, err := e.finder.FindAll(ctx, projectRoot)
	if err != nil {
		return plan, err
	}

	// Deterministic plan order regardless of map iteration.
	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		var chosen *TimeRevertSelection
		invalidOnly := false

		// Groups are sorted newest-first; the first at-or-before match
		// is the closest one.
		for _, rec := range groups[path] {
			if rec.CreatedBy != snapname.KindSnapshot.String() {
				continue
			}
			// A record with an unparsable timestamp has unknown age and
			// cannot qualify as "at or before" anything.
			if !rec.TimestampValid {
				continue
			}
			if rec.Timestamp.After(target) {
				continue
			}
			if !rec.Valid {
				invalidOnly = true
				continue
			}
			chosen = &TimeRevertSelection{
				OriginalPath: path,
				SnapshotPath: rec.SnapshotPath,
				Timestamp:    rec.Timestamp,
			}
			break
		}

		switch {
		case chosen != nil:
			plan.Selections = append(plan.Selections, *chosen)
		case invalidOnly:
			plan.Skipped = append(plan.Skipped, SkippedFile{
				Path:   path,
				Reason: "snapshots at or before target are unreadable",
			})
		default:
			plan.Skipped = append(plan.Skipped, SkippedFile{
				Path:   path,
				Reason: fmt.Sprintf("no snapshot at or before %s", snapname.FormatTimestamp(target)),
			})
		}
	}

	return plan, nil
}
