package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveSession stores or updates a session.
func (s *sessionStore) SaveSession(ctx context.Context, session *domain.IngestSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	errorLogJSON, err := json.Marshal(session.ErrorLog)
	if err != nil {
		return fmt.Errorf("marshalling error log: %w", err)
	}
	metadataJSON, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_sessions
			(id, started_at, completed_at, source_kind, source_path, source_name,
			 processed, created, updated, failed, error_log, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed_at = excluded.completed_at,
			processed = excluded.processed,
			created = excluded.created,
			updated = excluded.updated,
			failed = excluded.failed,
			error_log = excluded.error_log,
			metadata = excluded.metadata
	`, session.ID, session.StartedAt.Format(time.RFC3339Nano),
		formatNullableTime(session.CompletedAt), string(session.SourceKind),
		session.SourcePath, session.SourceName,
		session.Processed, session.Created, session.Updated, session.Failed,
		string(errorLogJSON), string(metadataJSON))

	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.IngestSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, completed_at, source_kind, source_path, source_name,
		       processed, created, updated, failed, error_log, metadata
		FROM ingest_sessions WHERE id = ?
	`, id)

	session, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return session, err
}

// ListSessions returns sessions ordered by start time descending.
func (s *sessionStore) ListSessions(ctx context.Context, limit int) ([]domain.IngestSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, source_kind, source_path, source_name,
		       processed, created, updated, failed, error_log, metadata
		FROM ingest_sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.IngestSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// scanSession scans one session row via the given scan function.
func scanSession(scan func(...any) error) (*domain.IngestSession, error) {
	var session domain.IngestSession
	var kind, startedAt string
	var completedAt, errorLogJSON, metadataJSON sql.NullString

	if err := scan(&session.ID, &startedAt, &completedAt, &kind,
		&session.SourcePath, &session.SourceName,
		&session.Processed, &session.Created, &session.Updated, &session.Failed,
		&errorLogJSON, &metadataJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	session.SourceKind = domain.SourceKind(kind)
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		session.StartedAt = t
	}
	session.CompletedAt = parseNullableTime(completedAt)

	if errorLogJSON.Valid && errorLogJSON.String != "" {
		if err := json.Unmarshal([]byte(errorLogJSON.String), &session.ErrorLog); err != nil {
			return nil, fmt.Errorf("unmarshalling error log: %w", err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &session.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}

	return &session, nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// SaveRecord stores an ingest record.
func (s *recordStore) SaveRecord(ctx context.Context, record *domain.IngestRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_records
			(id, session_id, created_at, source_kind, source_file, source_sheet,
			 table_idx, source_row, source_cell, source_url, raw_content,
			 normalised_content, fingerprint, confidence, needs_review,
			 review_notes, target_table, target_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.SessionID, record.CreatedAt.Format(time.RFC3339Nano),
		string(record.SourceKind), record.SourceFile, record.SourceSheet,
		record.TableIndex, record.SourceRow, record.SourceCell, record.SourceURL,
		record.RawContent, record.NormalisedContent, record.Fingerprint,
		string(record.Confidence), boolToInt(record.NeedsReview),
		record.ReviewNotes, record.TargetTable, record.TargetID)

	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// ListRecords returns the records belonging to a session.
func (s *recordStore) ListRecords(ctx context.Context, sessionID string) ([]domain.IngestRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, created_at, source_kind, source_file, source_sheet,
		       table_idx, source_row, source_cell, source_url, raw_content,
		       normalised_content, fingerprint, confidence, needs_review,
		       review_notes, target_table, target_id
		FROM ingest_records
		WHERE session_id = ?
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.IngestRecord
		var kind, confidence, createdAt string
		var needsReview int

		if err := rows.Scan(&record.ID, &record.SessionID, &createdAt, &kind,
			&record.SourceFile, &record.SourceSheet, &record.TableIndex,
			&record.SourceRow, &record.SourceCell, &record.SourceURL,
			&record.RawContent, &record.NormalisedContent, &record.Fingerprint,
			&confidence, &needsReview, &record.ReviewNotes,
			&record.TargetTable, &record.TargetID); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		record.SourceKind = domain.SourceKind(kind)
		record.Confidence = domain.Confidence(confidence)
		record.NeedsReview = needsReview == 1
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			record.CreatedAt = t
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// CountByFingerprint returns how many records share a fingerprint.
func (s *recordStore) CountByFingerprint(ctx context.Context, fp string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ingest_records WHERE fingerprint = ?", fp).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting by fingerprint: %w", err)
	}
	return count, nil
}
