package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// fileSyncStore implements driven.FileSyncStore.
type fileSyncStore struct {
	store *Store
}

var _ driven.FileSyncStore = (*fileSyncStore)(nil)

// Upsert creates or updates the sync record for its path.
func (s *fileSyncStore) Upsert(ctx context.Context, record *domain.FileSyncRecord) error {
	if record == nil || record.Path == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO file_sync
			(path, fingerprint, size, mod_time, last_synced, status, needs_resync)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			size = excluded.size,
			mod_time = excluded.mod_time,
			last_synced = excluded.last_synced,
			status = excluded.status,
			needs_resync = excluded.needs_resync
	`, record.Path, record.Fingerprint, record.Size,
		formatNullableTime(record.ModTime), formatNullableTime(record.LastSynced),
		string(record.Status), boolToInt(record.NeedsResync))

	if err != nil {
		return fmt.Errorf("upserting file sync record: %w", err)
	}
	return nil
}

// Get retrieves the sync record for a path.
func (s *fileSyncStore) Get(ctx context.Context, path string) (*domain.FileSyncRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT path, fingerprint, size, mod_time, last_synced, status, needs_resync
		FROM file_sync WHERE path = ?
	`, path)
	return scanFileSyncRecord(row.Scan)
}

// List returns all tracked records ordered by path.
func (s *fileSyncStore) List(ctx context.Context) ([]domain.FileSyncRecord, error) {
	return s.queryRecords(ctx, `
		SELECT path, fingerprint, size, mod_time, last_synced, status, needs_resync
		FROM file_sync ORDER BY path
	`)
}

// MarkDeleted flips a path's status to deleted, keeping the row.
func (s *fileSyncStore) MarkDeleted(ctx context.Context, path string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE file_sync SET status = ? WHERE path = ?",
		string(domain.SyncDeleted), path)
	if err != nil {
		return fmt.Errorf("marking file deleted: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListNeedingResync returns records flagged for re-ingestion.
func (s *fileSyncStore) ListNeedingResync(ctx context.Context) ([]domain.FileSyncRecord, error) {
	return s.queryRecords(ctx, `
		SELECT path, fingerprint, size, mod_time, last_synced, status, needs_resync
		FROM file_sync WHERE needs_resync = 1 ORDER BY path
	`)
}

func (s *fileSyncStore) queryRecords(ctx context.Context, query string) ([]domain.FileSyncRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying file sync records: %w", err)
	}
	defer rows.Close()

	var records []domain.FileSyncRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanFileSyncRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file sync records: %w", err)
	}

	return records, nil
}

// scanFileSyncRecord scans one row via the given scan function.
func scanFileSyncRecord(scan func(...any) error) (*domain.FileSyncRecord, error) {
	var record domain.FileSyncRecord
	var status string
	var modTime, lastSynced sql.NullString
	var needsResync int

	if err := scan(&record.Path, &record.Fingerprint, &record.Size,
		&modTime, &lastSynced, &status, &needsResync); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file sync record: %w", err)
	}

	record.ModTime = parseNullableTime(modTime)
	record.LastSynced = parseNullableTime(lastSynced)
	record.Status = domain.SyncStatus(status)
	record.NeedsResync = needsResync == 1

	return &record, nil
}
