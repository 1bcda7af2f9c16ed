package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.SessionStore = (*LedgerStore)(nil)
	_ driven.RecordStore  = (*LedgerStore)(nil)
)

// LedgerStore is an in-memory implementation of the session and record
// stores.
type LedgerStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.IngestSession
	records  map[string]domain.IngestRecord
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		sessions: make(map[string]domain.IngestSession),
		records:  make(map[string]domain.IngestRecord),
	}
}

// SaveSession stores or updates a session.
func (s *LedgerStore) SaveSession(_ context.Context, session *domain.IngestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession retrieves a session by ID.
func (s *LedgerStore) GetSession(_ context.Context, id string) (*domain.IngestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// ListSessions returns sessions ordered by start time descending.
func (s *LedgerStore) ListSessions(_ context.Context, limit int) ([]domain.IngestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.IngestSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// SaveRecord stores an ingest record.
func (s *LedgerStore) SaveRecord(_ context.Context, record *domain.IngestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = *record
	return nil
}

// ListRecords returns the records belonging to a session.
func (s *LedgerStore) ListRecords(_ context.Context, sessionID string) ([]domain.IngestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.IngestRecord
	for _, record := range s.records {
		if record.SessionID == sessionID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// CountByFingerprint returns how many records share a fingerprint.
func (s *LedgerStore) CountByFingerprint(_ context.Context, fp string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.Fingerprint == fp {
			count++
		}
	}
	return count, nil
}
