package revert

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

func newTestExecutor(filesystem fs.FS) *Executor {
	writer := snapshot.NewWriter(filesystem, logging.Nop{}, nil)
	return NewExecutor(filesystem, logging.Nop{}, writer)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRevert_RestoresContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "broken by the agent")
	writeFile(t, snap, "known good")

	res := newTestExecutor(nil).Revert(context.Background(), NewOperation(path, snap))

	assert.True(t, res.Success)
	assert.Equal(t, []string{path}, res.RestoredPaths)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "restored 1 file", res.Summary)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, "known good", readFile(t, path))
}

func TestRevert_PreRevertSafetyBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "state before revert")
	writeFile(t, snap, "older state")

	res := newTestExecutor(nil).Revert(context.Background(), NewOperation(path, snap))
	require.True(t, res.Success)

	// the discarded current state must itself have been snapshotted
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var preRevert string
	for _, e := range entries {
		if parsed, ok := snapname.Parse(filepath.Join(dir, e.Name())); ok && parsed.Kind == snapname.KindPreRevert {
			preRevert = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, preRevert, "expected a pre-revert safety copy")
	assert.Equal(t, "state before revert", readFile(t, preRevert))
}

func TestRevert_NoBackupWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "current")
	writeFile(t, snap, "older")

	op := NewOperation(path, snap)
	op.BackupCurrentFirst = false
	res := newTestExecutor(nil).Revert(context.Background(), op)
	require.True(t, res.Success)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the original and the snapshot remain")
}

func TestRevert_RecreatesDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deleted.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, snap, "resurrect me")

	res := newTestExecutor(nil).Revert(context.Background(), NewOperation(path, snap))
	assert.True(t, res.Success, "reverting a deleted file recreates it: %v", res.Errors)
	assert.Equal(t, "resurrect me", readFile(t, path))
}

func TestRevert_InvalidSnapshotFailsFast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	writeFile(t, path, "untouched")

	res := newTestExecutor(nil).Revert(context.Background(),
		NewOperation(path, filepath.Join(dir, "missing.snapshot.x")))

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "invalid snapshot")
	assert.Equal(t, "untouched", readFile(t, path), "the original must not be touched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no pre-revert copy either: validation comes first")
}

func TestRevert_DeleteSnapshotAfter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "current")
	writeFile(t, snap, "older")

	op := NewOperation(path, snap)
	op.BackupCurrentFirst = false
	op.DeleteSnapshotAfter = true
	res := newTestExecutor(nil).Revert(context.Background(), op)

	assert.True(t, res.Success)
	_, err := os.Stat(snap)
	assert.True(t, os.IsNotExist(err))
}

// removeFailFS lets everything through except Remove.
type removeFailFS struct {
	fs.FS
}

func (r *removeFailFS) Remove(ctx context.Context, path string) error {
	return fmt.Errorf("remove %s: operation not permitted", path)
}

func TestRevert_CleanupFailureIsSoft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "current")
	writeFile(t, snap, "older")

	op := NewOperation(path, snap)
	op.BackupCurrentFirst = false
	op.DeleteSnapshotAfter = true

	res := newTestExecutor(&removeFailFS{FS: fs.New()}).Revert(context.Background(), op)

	assert.True(t, res.Success, "a failed cleanup does not undo a successful restore")
	assert.Equal(t, []string{path}, res.RestoredPaths)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "cleanup failed")
}

func TestRevert_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	snap := snapname.Make(path, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, path, "current")
	writeFile(t, snap, "target state")

	exec := newTestExecutor(nil)

	res := exec.Revert(context.Background(), NewOperation(path, snap))
	require.True(t, res.Success)
	first := readFile(t, path)

	res = exec.Revert(context.Background(), NewOperation(path, snap))
	require.True(t, res.Success)

	assert.Equal(t, first, readFile(t, path))
	assert.Equal(t, "target state", first)
}

func TestRevertBatch_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.php")
	goodSnap := snapname.Make(good, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, good, "current")
	writeFile(t, goodSnap, "restored")

	bad := filepath.Join(dir, "bad.php")
	badSnap := filepath.Join(dir, "bad.php.snapshot.missing")

	ops := []Operation{
		NewOperation(good, goodSnap),
		NewOperation(bad, badSnap),
	}
	res := newTestExecutor(nil).RevertBatch(context.Background(), ops)

	assert.False(t, res.Success, "one failed operation fails the batch")
	assert.Equal(t, []string{good}, res.RestoredPaths, "partial success is preserved")
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], bad)
	assert.Equal(t, "restored 1 of 2 files (1 failed)", res.Summary)
	assert.Equal(t, "restored", readFile(t, good))
}

func TestRevertBatch_EmptyOperation(t *testing.T) {
	res := newTestExecutor(nil).RevertBatch(context.Background(), []Operation{{}})
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
}
