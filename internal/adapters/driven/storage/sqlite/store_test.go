package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "termbase-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestSession creates a session to satisfy foreign key constraints.
func createTestSession(t *testing.T, store *Store, sessionID string) {
	t.Helper()
	ctx := context.Background()
	session := &domain.IngestSession{
		ID:         sessionID,
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		SourceKind: domain.SourceMarkdown,
		SourcePath: "/notes",
		SourceName: "notes",
	}
	require.NoError(t, store.SessionStore().SaveSession(ctx, session))
}

// ==================== Store Creation Tests ====================

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "termbase-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "termbase.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")

	tables := []string{
		"ingest_sessions",
		"ingest_records",
		"definitions",
		"file_sync",
		"scheduled_tasks",
		"task_results",
	}

	for _, table := range tables {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_MigrationIdempotency(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "termbase-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)

	var count1 int
	err = store1.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count1)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count2 int
	err = store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count2)
	require.NoError(t, err)
	assert.Equal(t, count1, count2)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.SessionStore())
	assert.NotNil(t, store.RecordStore())
	assert.NotNil(t, store.DefinitionStore())
	assert.NotNil(t, store.FileSyncStore())
	assert.NotNil(t, store.SchedulerStore())
}

// ==================== SessionStore Tests ====================

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sessions := store.SessionStore()

	now := time.Now().UTC().Truncate(time.Second)
	session := &domain.IngestSession{
		ID:         "session-1",
		StartedAt:  now,
		SourceKind: domain.SourceMarkdown,
		SourcePath: "/notes/vault",
		SourceName: "vault",
		Processed:  5,
		Created:    3,
		Updated:    1,
		Failed:     1,
		ErrorLog:   []string{"bad.md: missing name"},
		Metadata:   map[string]any{"pattern": "**/*.md"},
	}

	require.NoError(t, sessions.SaveSession(ctx, session))

	retrieved, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, session.ID, retrieved.ID)
	assert.True(t, session.StartedAt.Equal(retrieved.StartedAt))
	assert.True(t, retrieved.CompletedAt.IsZero())
	assert.Equal(t, domain.SourceMarkdown, retrieved.SourceKind)
	assert.Equal(t, session.SourcePath, retrieved.SourcePath)
	assert.Equal(t, 5, retrieved.Processed)
	assert.Equal(t, 3, retrieved.Created)
	assert.Equal(t, 1, retrieved.Updated)
	assert.Equal(t, 1, retrieved.Failed)
	assert.Equal(t, session.ErrorLog, retrieved.ErrorLog)
	assert.Equal(t, session.Metadata, retrieved.Metadata)
}

func TestSessionStore_SaveUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sessions := store.SessionStore()

	now := time.Now().UTC().Truncate(time.Second)
	session := &domain.IngestSession{
		ID:         "session-1",
		StartedAt:  now,
		SourceKind: domain.SourceMarkdown,
	}
	require.NoError(t, sessions.SaveSession(ctx, session))

	session.CompletedAt = now.Add(time.Minute)
	session.Processed = 10
	session.Created = 10
	require.NoError(t, sessions.SaveSession(ctx, session))

	retrieved, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, session.CompletedAt.Equal(retrieved.CompletedAt))
	assert.Equal(t, 10, retrieved.Processed)
	assert.Equal(t, 10, retrieved.Created)
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	retrieved, err := store.SessionStore().GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, retrieved)
}

func TestSessionStore_List(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sessions := store.SessionStore()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		session := &domain.IngestSession{
			ID:         string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			SourceKind: domain.SourceMarkdown,
		}
		require.NoError(t, sessions.SaveSession(ctx, session))
	}

	all, err := sessions.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	limited, err := sessions.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSessionStore_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	assert.ErrorIs(t, store.SessionStore().SaveSession(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SessionStore().SaveSession(ctx, &domain.IngestSession{}), domain.ErrInvalidInput)
}

// ==================== RecordStore Tests ====================

func TestRecordStore_SaveAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	records := store.RecordStore()
	createTestSession(t, store, "session-1")

	now := time.Now().UTC().Truncate(time.Second)
	record := &domain.IngestRecord{
		ID:                "record-1",
		SessionID:         "session-1",
		CreatedAt:         now,
		SourceKind:        domain.SourceMarkdown,
		SourceFile:        "/notes/coherence.md",
		RawContent:        "# Coherence",
		NormalisedContent: "# Coherence",
		Fingerprint:       "abc123",
		Confidence:        domain.ConfidenceUnverified,
		NeedsReview:       true,
		ReviewNotes:       "unverified source",
		TargetTable:       "definitions",
		TargetID:          "def-1",
	}
	require.NoError(t, records.SaveRecord(ctx, record))

	listed, err := records.ListRecords(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, record.ID, got.ID)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, record.SourceFile, got.SourceFile)
	assert.Equal(t, record.Fingerprint, got.Fingerprint)
	assert.Equal(t, domain.ConfidenceUnverified, got.Confidence)
	assert.True(t, got.NeedsReview)
	assert.Equal(t, record.TargetID, got.TargetID)
}

func TestRecordStore_SpreadsheetCoordinates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	records := store.RecordStore()
	createTestSession(t, store, "session-1")

	record := &domain.IngestRecord{
		ID:          "record-1",
		SessionID:   "session-1",
		CreatedAt:   time.Now().UTC(),
		SourceKind:  domain.SourceSpreadsheet,
		SourceFile:  "terms.csv",
		SourceSheet: "Sheet1",
		TableIndex:  0,
		SourceRow:   2,
		SourceCell:  "A2",
		Fingerprint: "fp-row",
		Confidence:  domain.ConfidenceHigh,
	}
	require.NoError(t, records.SaveRecord(ctx, record))

	listed, err := records.ListRecords(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Sheet1", listed[0].SourceSheet)
	assert.Equal(t, 2, listed[0].SourceRow)
	assert.Equal(t, "A2", listed[0].SourceCell)
}

func TestRecordStore_CountByFingerprint(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	records := store.RecordStore()
	createTestSession(t, store, "session-1")

	for i, fp := range []string{"fp-same", "fp-same", "fp-other"} {
		record := &domain.IngestRecord{
			ID:          string(rune('a' + i)),
			SessionID:   "session-1",
			CreatedAt:   time.Now().UTC(),
			SourceKind:  domain.SourceMarkdown,
			Fingerprint: fp,
		}
		require.NoError(t, records.SaveRecord(ctx, record))
	}

	count, err := records.CountByFingerprint(ctx, "fp-same")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = records.CountByFingerprint(ctx, "fp-none")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRecordStore_ForeignKeyEnforced(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	record := &domain.IngestRecord{
		ID:          "record-1",
		SessionID:   "no-such-session",
		CreatedAt:   time.Now().UTC(),
		SourceKind:  domain.SourceMarkdown,
		Fingerprint: "fp",
	}
	err := store.RecordStore().SaveRecord(ctx, record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY constraint failed")
}

// ==================== DefinitionStore Tests ====================

func testDefinition(id string) *domain.Definition {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Definition{
		ID:                  id,
		DefinitionID:        "def-" + id,
		Symbol:              "C",
		Name:                "Coherence",
		Aliases:             []string{"internal alignment"},
		CanonicalDefinition: "The degree to which parts of a system reinforce each other.",
		OntologicalCategory: "state variable",
		DomainType:          "systems",
		Layer:               "core",
		Axioms:              []string{"First law.", "Second law."},
		MathematicalPrimary: "C = f(x)",
		DomainInterpretations: map[string]string{
			"Physics": "Phase alignment.",
		},
		IntegrationMap: map[string]any{
			"raw":   "Appears in [[Entropy]].",
			"links": []any{"Entropy"},
		},
		RelatedTerms: []string{"Entropy"},
		Tags:         []string{"core"},
		SourceKind:   domain.SourceMarkdown,
		SourceFile:   "/notes/coherence.md",
		Status:       domain.StatusDraft,
		Confidence:   domain.ConfidenceUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestDefinitionStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	def := testDefinition("d1")
	require.NoError(t, defs.SaveDefinition(ctx, def))

	retrieved, err := defs.GetDefinition(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, def.DefinitionID, retrieved.DefinitionID)
	assert.Equal(t, def.Symbol, retrieved.Symbol)
	assert.Equal(t, def.Name, retrieved.Name)
	assert.Equal(t, def.Aliases, retrieved.Aliases)
	assert.Equal(t, def.CanonicalDefinition, retrieved.CanonicalDefinition)
	assert.Equal(t, def.Axioms, retrieved.Axioms)
	assert.Equal(t, def.DomainInterpretations, retrieved.DomainInterpretations)
	assert.Equal(t, def.IntegrationMap, retrieved.IntegrationMap)
	assert.Equal(t, def.RelatedTerms, retrieved.RelatedTerms)
	assert.Equal(t, def.Tags, retrieved.Tags)
	assert.Equal(t, domain.StatusDraft, retrieved.Status)
	assert.Equal(t, domain.ConfidenceUnverified, retrieved.Confidence)
	assert.True(t, def.CreatedAt.Equal(retrieved.CreatedAt))
}

func TestDefinitionStore_GetByDefinitionID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	require.NoError(t, defs.SaveDefinition(ctx, testDefinition("d1")))

	retrieved, err := defs.GetByDefinitionID(ctx, "def-d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", retrieved.ID)

	_, err = defs.GetByDefinitionID(ctx, "def-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDefinitionStore_SaveUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	def := testDefinition("d1")
	require.NoError(t, defs.SaveDefinition(ctx, def))

	def.CanonicalDefinition = "Revised statement."
	def.Status = domain.StatusCanonical
	def.UpdatedAt = def.UpdatedAt.Add(time.Hour)
	require.NoError(t, defs.SaveDefinition(ctx, def))

	retrieved, err := defs.GetDefinition(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Revised statement.", retrieved.CanonicalDefinition)
	assert.Equal(t, domain.StatusCanonical, retrieved.Status)

	all, err := defs.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not create a second row")
}

func TestDefinitionStore_UniqueDefinitionID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	require.NoError(t, defs.SaveDefinition(ctx, testDefinition("d1")))

	dup := testDefinition("d2")
	dup.DefinitionID = "def-d1"
	err := defs.SaveDefinition(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestDefinitionStore_EmptyDefinitionIDNotUnique(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	for _, id := range []string{"d1", "d2"} {
		def := testDefinition(id)
		def.DefinitionID = ""
		require.NoError(t, defs.SaveDefinition(ctx, def))
	}

	all, err := defs.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDefinitionStore_List(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"d1", "d2", "d3"} {
		def := testDefinition(id)
		def.DefinitionID = "def-" + id
		def.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, defs.SaveDefinition(ctx, def))
	}

	all, err := defs.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d3", all[0].ID, "newest first")
}

func TestDefinitionStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	require.NoError(t, defs.SaveDefinition(ctx, testDefinition("d1")))
	require.NoError(t, defs.DeleteDefinition(ctx, "d1"))

	_, err := defs.GetDefinition(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = defs.DeleteDefinition(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDefinitionStore_NilCollections(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	defs := store.DefinitionStore()

	def := &domain.Definition{
		ID:         "d1",
		Name:       "Bare",
		SourceKind: domain.SourceMarkdown,
		Status:     domain.StatusDraft,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, defs.SaveDefinition(ctx, def))

	retrieved, err := defs.GetDefinition(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, retrieved.Aliases)
	assert.Nil(t, retrieved.Axioms)
	assert.Nil(t, retrieved.DomainInterpretations)
	assert.Nil(t, retrieved.IntegrationMap)
}

// ==================== FileSyncStore Tests ====================

func TestFileSyncStore_UpsertAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	files := store.FileSyncStore()

	now := time.Now().UTC().Truncate(time.Second)
	record := &domain.FileSyncRecord{
		Path:        "/notes/coherence.md",
		Fingerprint: "fp-1",
		Size:        1024,
		ModTime:     now,
		LastSynced:  now,
		Status:      domain.SyncSynced,
	}
	require.NoError(t, files.Upsert(ctx, record))

	retrieved, err := files.Get(ctx, record.Path)
	require.NoError(t, err)
	assert.Equal(t, record.Fingerprint, retrieved.Fingerprint)
	assert.Equal(t, int64(1024), retrieved.Size)
	assert.True(t, now.Equal(retrieved.ModTime))
	assert.Equal(t, domain.SyncSynced, retrieved.Status)
	assert.False(t, retrieved.NeedsResync)

	record.Fingerprint = "fp-2"
	record.NeedsResync = true
	require.NoError(t, files.Upsert(ctx, record))

	retrieved, err = files.Get(ctx, record.Path)
	require.NoError(t, err)
	assert.Equal(t, "fp-2", retrieved.Fingerprint)
	assert.True(t, retrieved.NeedsResync)
}

func TestFileSyncStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.FileSyncStore().Get(context.Background(), "/missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileSyncStore_MarkDeleted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	files := store.FileSyncStore()

	record := &domain.FileSyncRecord{
		Path:        "/notes/gone.md",
		Fingerprint: "fp",
		Status:      domain.SyncSynced,
	}
	require.NoError(t, files.Upsert(ctx, record))
	require.NoError(t, files.MarkDeleted(ctx, record.Path))

	// The row survives with a flipped status.
	retrieved, err := files.Get(ctx, record.Path)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncDeleted, retrieved.Status)
	assert.Equal(t, "fp", retrieved.Fingerprint)

	assert.ErrorIs(t, files.MarkDeleted(ctx, "/missing.md"), domain.ErrNotFound)
}

func TestFileSyncStore_ListAndNeedingResync(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	files := store.FileSyncStore()

	records := []*domain.FileSyncRecord{
		{Path: "/notes/b.md", Fingerprint: "fp-b", Status: domain.SyncSynced},
		{Path: "/notes/a.md", Fingerprint: "fp-a", Status: domain.SyncSynced, NeedsResync: true},
	}
	for _, r := range records {
		require.NoError(t, files.Upsert(ctx, r))
	}

	all, err := files.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/notes/a.md", all[0].Path, "ordered by path")

	resync, err := files.ListNeedingResync(ctx)
	require.NoError(t, err)
	require.Len(t, resync, 1)
	assert.Equal(t, "/notes/a.md", resync[0].Path)
}

// ==================== SchedulerStore Tests ====================

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sched := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:       domain.TaskIDFileSync,
		Name:     "File Sync",
		Interval: 5 * time.Minute,
		NextRun:  now.Add(5 * time.Minute),
		Enabled:  true,
	}
	require.NoError(t, sched.SaveTask(ctx, task))

	retrieved, err := sched.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, 5*time.Minute, retrieved.Interval)
	assert.True(t, task.NextRun.Equal(retrieved.NextRun))
	assert.True(t, retrieved.Enabled)
	assert.True(t, retrieved.LastRun.IsZero())
}

func TestSchedulerStore_GetTask_Missing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	task, err := store.SchedulerStore().GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_ListAndDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sched := store.SchedulerStore()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDFileSync,
		Name:     "File Sync",
		Interval: time.Minute,
		Enabled:  true,
	}
	require.NoError(t, sched.SaveTask(ctx, task))

	tasks, err := sched.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, sched.DeleteTask(ctx, task.ID))

	tasks, err = sched.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSchedulerStore_History(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sched := store.SchedulerStore()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		result := &domain.TaskResult{
			TaskID:         domain.TaskIDFileSync,
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			EndedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:        i != 1,
			ItemsProcessed: i,
		}
		if i == 1 {
			result.Error = "sync failed: disk on fire"
		}
		require.NoError(t, sched.RecordResult(ctx, result))
	}

	history, err := sched.GetTaskHistory(ctx, domain.TaskIDFileSync, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 2, history[0].ItemsProcessed, "most recent first")
	assert.False(t, history[1].Success)
	assert.Equal(t, "sync failed: disk on fire", history[1].Error)

	limited, err := sched.GetTaskHistory(ctx, domain.TaskIDFileSync, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	sched := store.SchedulerStore()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 10; i++ {
		result := &domain.TaskResult{
			TaskID:         domain.TaskIDFileSync,
			StartedAt:      base.Add(time.Duration(i) * time.Second),
			Success:        true,
			ItemsProcessed: i,
		}
		require.NoError(t, sched.RecordResult(ctx, result))
	}

	require.NoError(t, sched.PruneHistory(ctx, 3))

	history, err := sched.GetTaskHistory(ctx, domain.TaskIDFileSync, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 9, history[0].ItemsProcessed, "newest results survive pruning")
}
