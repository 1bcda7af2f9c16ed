package driven

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// SessionStore persists ingest sessions.
type SessionStore interface {
	// SaveSession stores or updates a session.
	SaveSession(ctx context.Context, session *domain.IngestSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.IngestSession, error)

	// ListSessions returns sessions ordered by start time descending.
	ListSessions(ctx context.Context, limit int) ([]domain.IngestSession, error)
}

// RecordStore persists ingest records.
type RecordStore interface {
	// SaveRecord stores an ingest record.
	SaveRecord(ctx context.Context, record *domain.IngestRecord) error

	// ListRecords returns the records belonging to a session.
	ListRecords(ctx context.Context, sessionID string) ([]domain.IngestRecord, error)

	// CountByFingerprint returns how many records share a fingerprint.
	// Used for duplicate detection; duplicates are flagged, not merged.
	CountByFingerprint(ctx context.Context, fingerprint string) (int, error)
}
