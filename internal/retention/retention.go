// Package retention bounds snapshot growth and derives the project-wide
// time index used for point-in-time rollback.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/snapshot"
)

// Policy decides which snapshots are eligible for deletion. The criteria
// are a union: a snapshot goes when it is older than MaxAgeDays OR ranked
// beyond MaxCountPerFile by recency. A zero value disables that criterion.
type Policy struct {
	MaxAgeDays      int
	MaxCountPerFile int
}

// PruneResult reports what a prune deleted (or, for a dry run, would
// delete) and every per-file failure encountered along the way.
type PruneResult struct {
	Deleted []string
	Errors  []string
	DryRun  bool
}

type Engine struct {
	fs     fs.FS
	log    logging.Logger
	finder *snapshot.Finder
	policy Policy
	now    func() time.Time
}

func New(filesystem fs.FS, log logging.Logger, finder *snapshot.Finder, policy Policy) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{
		fs:     filesystem,
		log:    log,
		finder: finder,
		policy: policy,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Prune applies policy to every snapshot group under projectRoot. With
// dryRun the deletion set is computed and reported but nothing is removed.
// Individual deletion failures are collected and never abort the prune.
func (e *Engine) Prune(ctx context.Context, projectRoot string, policy Policy, dryRun bool) (PruneResult, error) {
	res := PruneResult{DryRun: dryRun}

	groups, err := e.finder.FindAll(ctx, projectRoot)
	if err != nil {
		return res, fmt.Errorf("discovering snapshots: %w", err)
	}

	for _, group := range groups {
		for _, rec := range selectForDeletion(group, policy, e.now()) {
			if dryRun {
				res.Deleted = append(res.Deleted, rec.SnapshotPath)
				continue
			}
			if err := e.fs.Remove(ctx, rec.SnapshotPath); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", rec.SnapshotPath, err))
				continue
			}
			res.Deleted = append(res.Deleted, rec.SnapshotPath)
		}
	}

	e.log.Info("prune: %d snapshots selected, %d errors (dryRun=%v)", len(res.Deleted), len(res.Errors), dryRun)
	return res, nil
}

// EnforceGroup caps one file's group using the engine's configured policy.
// Invoked by the snapshot writer after each successful snapshot; failures
// are logged and swallowed so a retention hiccup never surfaces as a
// snapshot failure.
func (e *Engine) EnforceGroup(ctx context.Context, originalPath string) {
	group, err := e.finder.FindForFile(ctx, originalPath)
	if err != nil || len(group) == 0 {
		return
	}
	for _, rec := range selectForDeletion(group, e.policy, e.now()) {
		if err := e.fs.Remove(ctx, rec.SnapshotPath); err != nil {
			e.log.Warn("retention: could not delete %s: %v", rec.SnapshotPath, err)
		} else {
			e.log.Debug("retention: deleted %s", rec.SnapshotPath)
		}
	}
}

// selectForDeletion computes the union of the age and count criteria for
// one group. The group must already be sorted newest-first, which is the
// finder's ordering guarantee.
func selectForDeletion(group snapshot.Group, policy Policy, now time.Time) []snapshot.Record {
	var out []snapshot.Record
	cutoff := now.AddDate(0, 0, -policy.MaxAgeDays)

	for i, rec := range group {
		tooOld := policy.MaxAgeDays > 0 && rec.Timestamp.Before(cutoff)
		overCount := policy.MaxCountPerFile > 0 && i >= policy.MaxCountPerFile
		if tooOld || overCount {
			out = append(out, rec)
		}
	}
	return out
}
