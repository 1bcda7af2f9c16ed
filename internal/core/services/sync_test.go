package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/storage/memory"
	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

func newTestSyncEngine(t *testing.T) (*SyncService, *memory.FileSyncStore, string) {
	t.Helper()
	dir := t.TempDir()
	ledgerStore := memory.NewLedgerStore()
	fileStore := memory.NewFileSyncStore()
	ledger := NewLedger(ledgerStore, ledgerStore)
	ingestor := NewIngestService(ledger, memory.NewDefinitionStore())
	engine := NewSyncService(dir, nil, fileStore, ledger, ingestor)
	return engine, fileStore, dir
}

func TestSyncService_ScanForChanges(t *testing.T) {
	engine, store, dir := newTestSyncEngine(t)
	ctx := context.Background()

	pathA := writeNote(t, dir, "a.md", definitionNote)
	pathB := writeNote(t, dir, "b.md", journalNote)
	writeNote(t, dir, "ignored.txt", "not tracked")

	t.Run("untracked files are new", func(t *testing.T) {
		scan, err := engine.ScanForChanges(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, scan.TotalScanned)
		assert.Equal(t, 2, scan.NewFiles)
		assert.Empty(t, scan.Errors)
		require.Len(t, scan.Changes, 2)
		assert.Equal(t, domain.SyncNew, scan.Changes[0].Status)
		assert.NotEmpty(t, scan.Changes[0].NewFingerprint)
	})

	t.Run("synced files are quiet", func(t *testing.T) {
		report, err := engine.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Synced)

		scan, err := engine.ScanForChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, scan.SyncedFiles)
		assert.Empty(t, scan.Changes)
	})

	t.Run("changed content is modified", func(t *testing.T) {
		require.NoError(t, os.WriteFile(pathA, []byte(definitionNote+"\nExtra line.\n"), 0o644))

		scan, err := engine.ScanForChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, scan.ModifiedFiles)
		require.Len(t, scan.Changes, 1)

		change := scan.Changes[0]
		assert.Equal(t, domain.SyncModified, change.Status)
		assert.Equal(t, pathA, change.Path)
		assert.NotEqual(t, change.OldFingerprint, change.NewFingerprint)
	})

	t.Run("vanished path is deleted", func(t *testing.T) {
		_, err := engine.SyncAll(ctx)
		require.NoError(t, err)
		require.NoError(t, os.Remove(pathB))

		scan, err := engine.ScanForChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, scan.DeletedFiles)

		_, err = engine.SyncAll(ctx)
		require.NoError(t, err)

		// The row survives with status deleted.
		rec, err := store.Get(ctx, pathB)
		require.NoError(t, err)
		assert.Equal(t, domain.SyncDeleted, rec.Status)
	})

	t.Run("reappearing path is new again", func(t *testing.T) {
		writeNote(t, dir, "b.md", journalNote)

		scan, err := engine.ScanForChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, scan.NewFiles)
		require.Len(t, scan.Changes, 1)
		assert.Equal(t, domain.SyncNew, scan.Changes[0].Status)
	})
}

func TestSyncService_SyncChange(t *testing.T) {
	engine, store, dir := newTestSyncEngine(t)
	ctx := context.Background()

	path := writeNote(t, dir, "a.md", definitionNote)

	scan, err := engine.ScanForChanges(ctx)
	require.NoError(t, err)
	require.Len(t, scan.Changes, 1)

	require.NoError(t, engine.SyncChange(ctx, scan.Changes[0]))

	rec, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, rec.Status)
	assert.Equal(t, scan.Changes[0].NewFingerprint, rec.Fingerprint)
	assert.Positive(t, rec.Size)
	assert.False(t, rec.LastSynced.IsZero())
}

func TestSyncService_SyncAllRejectsOverlappingRun(t *testing.T) {
	engine, _, dir := newTestSyncEngine(t)
	ctx := context.Background()

	writeNote(t, dir, "a.md", definitionNote)

	// Hold the engine's sync lock as a running SyncAll would.
	engine.syncMu.Lock()
	_, err := engine.SyncAll(ctx)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	engine.syncMu.Unlock()

	report, err := engine.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
}

func TestSyncService_DeletionsLeaveNoSessions(t *testing.T) {
	dir := t.TempDir()
	ledgerStore := memory.NewLedgerStore()
	fileStore := memory.NewFileSyncStore()
	ledger := NewLedger(ledgerStore, ledgerStore)
	ingestor := NewIngestService(ledger, memory.NewDefinitionStore())
	engine := NewSyncService(dir, nil, fileStore, ledger, ingestor)
	ctx := context.Background()

	pathA := writeNote(t, dir, "a.md", journalNote)
	pathB := writeNote(t, dir, "b.md", journalNote)

	_, err := engine.SyncAll(ctx)
	require.NoError(t, err)

	// One change applied directly, one through a deletes-only batch.
	require.NoError(t, os.Remove(pathA))
	scan, err := engine.ScanForChanges(ctx)
	require.NoError(t, err)
	require.Len(t, scan.Changes, 1)
	require.NoError(t, engine.SyncChange(ctx, scan.Changes[0]))

	require.NoError(t, os.Remove(pathB))
	report, err := engine.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)

	for _, path := range []string{pathA, pathB} {
		rec, err := fileStore.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, domain.SyncDeleted, rec.Status)
	}

	// Only the initial ingest opened a session; the status flips left
	// no empty audit entries behind.
	sessions, err := ledgerStore.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSyncService_SyncAllReingests(t *testing.T) {
	dir := t.TempDir()
	ledgerStore := memory.NewLedgerStore()
	fileStore := memory.NewFileSyncStore()
	defStore := memory.NewDefinitionStore()
	ledger := NewLedger(ledgerStore, ledgerStore)
	ingestor := NewIngestService(ledger, defStore)
	engine := NewSyncService(dir, nil, fileStore, ledger, ingestor)
	ctx := context.Background()

	writeNote(t, dir, "coherence.md", definitionNote)

	report, err := engine.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Ingested.Created)

	defs, err := defStore.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Coherence", defs[0].Name)
}

func TestSyncService_Stats(t *testing.T) {
	engine, _, dir := newTestSyncEngine(t)
	ctx := context.Background()

	pathA := writeNote(t, dir, "a.md", definitionNote)
	writeNote(t, dir, "b.md", journalNote)

	_, err := engine.SyncAll(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(pathA))
	_, err = engine.SyncAll(ctx)
	require.NoError(t, err)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[domain.SyncSynced])
	assert.Equal(t, 1, stats[domain.SyncDeleted])
}

func TestSyncService_ScanCollectsPerFileErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	engine, _, dir := newTestSyncEngine(t)
	ctx := context.Background()

	writeNote(t, dir, "good.md", journalNote)
	unreadable := filepath.Join(dir, "locked.md")
	require.NoError(t, os.WriteFile(unreadable, []byte("x"), 0o000))
	t.Cleanup(func() { os.Chmod(unreadable, 0o644) }) //nolint:errcheck

	scan, err := engine.ScanForChanges(ctx)
	require.NoError(t, err)

	// The unreadable file lands in the error list, the scan continues.
	assert.Equal(t, 2, scan.TotalScanned)
	assert.Equal(t, 1, scan.NewFiles)
	require.Len(t, scan.Errors, 1)
	assert.Contains(t, scan.Errors[0], "locked.md")
}
