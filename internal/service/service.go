// Package service wires the backup subsystem together and exposes the
// operations the editor UI and the agent write path call. One Service is
// constructed at startup from injected configuration; there is no process
// global.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/egdesk/snapvault/internal/config"
	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/preview"
	"github.com/egdesk/snapvault/internal/retention"
	"github.com/egdesk/snapvault/internal/revert"
	"github.com/egdesk/snapvault/internal/snapshot"
)

type Service struct {
	cfg    *config.Config
	log    logging.Logger
	writer *snapshot.Writer
	finder *snapshot.Finder
	exec   *revert.Executor
	ret    *retention.Engine
	prev   *preview.Previewer
}

// New builds a fully wired Service. Passing a nil filesystem uses the OS
// filesystem; tests inject their own.
func New(cfg *config.Config, log logging.Logger, filesystem fs.FS) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if filesystem == nil {
		filesystem = fs.New()
	}

	finder := snapshot.NewFinder(filesystem, log, cfg.Scan.MaxDepth, cfg.Scan.Timeout, cfg.Scan.ExtraSkipDirs)
	policy := retention.Policy{
		MaxAgeDays:      cfg.Retention.MaxAgeDays,
		MaxCountPerFile: cfg.Retention.MaxCountPerFile,
	}
	ret := retention.New(filesystem, log, finder, policy)
	writer := snapshot.NewWriter(filesystem, log, ret)

	return &Service{
		cfg:    cfg,
		log:    log,
		writer: writer,
		finder: finder,
		exec:   revert.NewExecutor(filesystem, log, writer),
		ret:    ret,
		prev:   preview.NewPreviewer(filesystem),
	}
}

// BeforeOverwrite is the synchronous hook the agent's write path calls with
// the absolute path it is about to overwrite. A failed snapshot is logged
// at warning level and swallowed: the safety net must never block the
// primary write. Returns the snapshot path, or "" when none was taken.
func (s *Service) BeforeOverwrite(ctx context.Context, path string) string {
	snapPath, err := s.writer.Snapshot(ctx, path)
	if err != nil {
		s.log.Warn("proceeding without a safety snapshot of %s: %v", path, err)
		return ""
	}
	return snapPath
}

// Snapshot takes a snapshot of path, returning "" when the file does not
// exist yet.
func (s *Service) Snapshot(ctx context.Context, path string) (string, error) {
	return s.writer.Snapshot(ctx, path)
}

// FindForFile lists path's snapshots, newest first.
func (s *Service) FindForFile(ctx context.Context, path string) (snapshot.Group, error) {
	return s.finder.FindForFile(ctx, path)
}

// FindAll discovers every snapshot under root, grouped by original path.
// Cancellable via ctx; bounded by the configured scan timeout.
func (s *Service) FindAll(ctx context.Context, root string) (map[string]snapshot.Group, error) {
	return s.finder.FindAll(ctx, root)
}

// Preview reads both sides of a prospective revert.
func (s *Service) Preview(ctx context.Context, originalPath, snapshotPath string) (preview.Preview, error) {
	return s.prev.Preview(ctx, originalPath, snapshotPath)
}

// Revert restores one file from one snapshot.
func (s *Service) Revert(ctx context.Context, op revert.Operation) revert.Result {
	return s.exec.Revert(ctx, op)
}

// RevertBatch restores a set of files, aggregating per-item outcomes.
func (s *Service) RevertBatch(ctx context.Context, ops []revert.Operation) revert.Result {
	return s.exec.RevertBatch(ctx, ops)
}

// AvailableTimestamps lists the distinct snapshot instants across root,
// newest first.
func (s *Service) AvailableTimestamps(ctx context.Context, root string) ([]time.Time, error) {
	return s.ret.AvailableTimestamps(ctx, root)
}

// TimeBasedRevertResult is the outcome of a point-in-time rollback. Revert
// is nil for a dry run.
type TimeBasedRevertResult struct {
	Plan   retention.TimeRevertPlan
	DryRun bool
	Revert *revert.Result
}

// RevertToTimestamp rolls every file with a usable snapshot back to the
// closest state at-or-before target. Each selected file goes through the
// revert executor with the default safety options, so current states are
// themselves snapshotted before being replaced.
func (s *Service) RevertToTimestamp(ctx context.Context, root string, target time.Time, dryRun bool) (TimeBasedRevertResult, error) {
	plan, err := s.ret.PlanTimeRevert(ctx, root, target)
	if err != nil {
		return TimeBasedRevertResult{}, fmt.Errorf("planning time-based revert: %w", err)
	}

	res := TimeBasedRevertResult{Plan: plan, DryRun: dryRun}
	if dryRun {
		return res, nil
	}

	ops := make([]revert.Operation, 0, len(plan.Selections))
	for _, sel := range plan.Selections {
		ops = append(ops, revert.NewOperation(sel.OriginalPath, sel.SnapshotPath))
	}
	r := s.exec.RevertBatch(ctx, ops)
	res.Revert = &r
	return res, nil
}

// Prune applies the configured retention policy under root.
func (s *Service) Prune(ctx context.Context, root string, dryRun bool) (retention.PruneResult, error) {
	return s.PruneWithPolicy(ctx, root, s.policy(), dryRun)
}

// PruneWithPolicy applies an explicit policy, for callers that override the
// configured one (the CLI's --max-age/--max-count flags).
func (s *Service) PruneWithPolicy(ctx context.Context, root string, policy retention.Policy, dryRun bool) (retention.PruneResult, error) {
	return s.ret.Prune(ctx, root, policy, dryRun)
}

func (s *Service) policy() retention.Policy {
	return retention.Policy{
		MaxAgeDays:      s.cfg.Retention.MaxAgeDays,
		MaxCountPerFile: s.cfg.Retention.MaxCountPerFile,
	}
}

// StartAutoPrune runs a cron-scheduled prune of root using the configured
// policy until ctx is cancelled. A missing cron expression disables the
// scheduler. The returned error reports an invalid expression.
func (s *Service) StartAutoPrune(ctx context.Context, root string) error {
	spec := s.cfg.Retention.AutoPruneCron
	if spec == "" {
		s.log.Debug("auto-prune disabled, no cron expression configured")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		res, err := s.Prune(context.Background(), root, false)
		if err != nil {
			s.log.Error("auto-prune failed: %v", err)
			return
		}
		s.log.Info("auto-prune: deleted %d snapshots, %d errors", len(res.Deleted), len(res.Errors))
	})
	if err != nil {
		return fmt.Errorf("invalid auto-prune cron expression %q: %w", spec, err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	s.log.Info("auto-prune scheduled (%s) for %s", spec, root)
	return nil
}
