package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egdesk/snapvault/internal/fs"
	"github.com/egdesk/snapvault/internal/logging"
	"github.com/egdesk/snapvault/internal/snapname"
	"github.com/egdesk/snapvault/internal/snapshot"
)

var now = time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)

func newTestEngine(filesystem fs.FS, policy Policy) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	finder := snapshot.NewFinder(filesystem, logging.Nop{}, 12, time.Minute, nil)
	return New(filesystem, logging.Nop{}, finder, policy).WithClock(func() time.Time { return now })
}

func snapshotAged(t *testing.T, originalPath string, age time.Duration) string {
	t.Helper()
	path := snapname.Make(originalPath, now.Add(-age))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestPrune_UnionOfAgeAndCount(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.php")

	fresh := snapshotAged(t, path, days(1))
	aged := snapshotAged(t, path, days(40))
	ancient := snapshotAged(t, path, days(400))

	policy := Policy{MaxAgeDays: 30, MaxCountPerFile: 1}
	res, err := newTestEngine(nil, policy).Prune(context.Background(), root, policy, true)
	require.NoError(t, err)

	// age OR count: the 40d one is over age, the 400d one is over both
	assert.ElementsMatch(t, []string{aged, ancient}, res.Deleted)
	assert.NotContains(t, res.Deleted, fresh, "the newest snapshot survives")
}

func TestPrune_DryRunDeletesNothing(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.php")
	aged := snapshotAged(t, path, days(40))

	policy := Policy{MaxAgeDays: 30}
	res, err := newTestEngine(nil, policy).Prune(context.Background(), root, policy, true)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, []string{aged}, res.Deleted)
	_, statErr := os.Stat(aged)
	assert.NoError(t, statErr, "dry run must not touch the filesystem")
}

func TestPrune_Deletes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.php")
	keep := snapshotAged(t, path, days(1))
	aged := snapshotAged(t, path, days(40))

	policy := Policy{MaxAgeDays: 30}
	res, err := newTestEngine(nil, policy).Prune(context.Background(), root, policy, false)
	require.NoError(t, err)

	assert.Equal(t, []string{aged}, res.Deleted)
	_, err = os.Stat(aged)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}

func TestPrune_CountAppliesPerFile(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.php")
	b := filepath.Join(root, "b.php")
	snapshotAged(t, a, days(1))
	snapshotAged(t, b, days(2))

	policy := Policy{MaxCountPerFile: 1}
	res, err := newTestEngine(nil, policy).Prune(context.Background(), root, policy, true)
	require.NoError(t, err)
	assert.Empty(t, res.Deleted, "the cap is per group, not global")
}

func TestPrune_ZeroPolicyKeepsEverything(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.php")
	snapshotAged(t, path, days(4000))

	res, err := newTestEngine(nil, Policy{}).Prune(context.Background(), root, Policy{}, true)
	require.NoError(t, err)
	assert.Empty(t, res.Deleted)
}

// removeFailFS fails every Remove call.
type removeFailFS struct {
	fs.FS
}

func (r *removeFailFS) Remove(ctx context.Context, path string) error {
	return fmt.Errorf("remove %s: operation not permitted", path)
}

func TestPrune_CollectsDeletionFailures(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.php")
	b := filepath.Join(root, "b.php")
	snapshotAged(t, a, days(40))
	snapshotAged(t, b, days(40))

	policy := Policy{MaxAgeDays: 30}
	res, err := newTestEngine(&removeFailFS{FS: fs.New()}, policy).Prune(context.Background(), root, policy, false)
	require.NoError(t, err, "individual failures never abort the prune")
	assert.Empty(t, res.Deleted)
	assert.Len(t, res.Errors, 2)
}

func TestEnforceGroup_CapsCount(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.php")
	newest := snapshotAged(t, path, days(1))
	middle := snapshotAged(t, path, days(2))
	oldest := snapshotAged(t, path, days(3))

	eng := newTestEngine(nil, Policy{MaxCountPerFile: 2})
	eng.EnforceGroup(context.Background(), path)

	_, err := os.Stat(newest)
	assert.NoError(t, err)
	_, err = os.Stat(middle)
	assert.NoError(t, err)
	_, err = os.Stat(oldest)
	assert.True(t, os.IsNotExist(err), "the group is capped to the newest two")
}

func TestSelectForDeletion_EpochFallbackRanksOldest(t *testing.T) {
	group := snapshot.Group{
		{SnapshotPath: "/p/a.snapshot.2025-09-06T10-00-00-000Z", Timestamp: now.Add(-time.Hour)},
		{SnapshotPath: "/p/a.snapshot.garbage", Timestamp: snapname.Epoch},
	}
	group.Sort()

	out := selectForDeletion(group, Policy{MaxAgeDays: 30}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "/p/a.snapshot.garbage", out[0].SnapshotPath,
		"a corrupted name sorts as infinitely old and ages out first")
}
