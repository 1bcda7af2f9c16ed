package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// Ensure FileSyncStore implements the interface.
var _ driven.FileSyncStore = (*FileSyncStore)(nil)

// FileSyncStore is an in-memory implementation of driven.FileSyncStore.
type FileSyncStore struct {
	mu    sync.RWMutex
	files map[string]domain.FileSyncRecord
}

// NewFileSyncStore creates a new in-memory file sync store.
func NewFileSyncStore() *FileSyncStore {
	return &FileSyncStore{
		files: make(map[string]domain.FileSyncRecord),
	}
}

// Upsert creates or updates the record for its path.
func (s *FileSyncStore) Upsert(_ context.Context, record *domain.FileSyncRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[record.Path] = *record
	return nil
}

// Get retrieves the record for a path.
func (s *FileSyncStore) Get(_ context.Context, path string) (*domain.FileSyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// List returns all tracked records sorted by path.
func (s *FileSyncStore) List(_ context.Context) ([]domain.FileSyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.FileSyncRecord, 0, len(s.files))
	for _, record := range s.files {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}

// MarkDeleted flips a path's status to deleted, keeping the row.
func (s *FileSyncStore) MarkDeleted(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.files[path]
	if !ok {
		return domain.ErrNotFound
	}
	record.Status = domain.SyncDeleted
	s.files[path] = record
	return nil
}

// ListNeedingResync returns records flagged for re-ingestion.
func (s *FileSyncStore) ListNeedingResync(_ context.Context) ([]domain.FileSyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.FileSyncRecord
	for _, record := range s.files {
		if record.NeedsResync {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}
