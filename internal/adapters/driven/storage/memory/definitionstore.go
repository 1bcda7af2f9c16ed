package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

// Ensure DefinitionStore implements the interface.
var _ driven.DefinitionStore = (*DefinitionStore)(nil)

// DefinitionStore is an in-memory implementation of
// driven.DefinitionStore.
type DefinitionStore struct {
	mu   sync.RWMutex
	defs map[string]domain.Definition
}

// NewDefinitionStore creates a new in-memory definition store.
func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{
		defs: make(map[string]domain.Definition),
	}
}

// SaveDefinition stores or updates a definition.
func (s *DefinitionStore) SaveDefinition(_ context.Context, def *domain.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.ID] = *def
	return nil
}

// GetDefinition retrieves a definition by row ID.
func (s *DefinitionStore) GetDefinition(_ context.Context, id string) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &def, nil
}

// GetByDefinitionID retrieves a definition by its stable identifier.
func (s *DefinitionStore) GetByDefinitionID(_ context.Context, definitionID string) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, def := range s.defs {
		if def.DefinitionID == definitionID {
			return &def, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDefinitions returns all definitions, newest first.
func (s *DefinitionStore) ListDefinitions(_ context.Context) ([]domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]domain.Definition, 0, len(s.defs))
	for _, def := range s.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].CreatedAt.After(defs[j].CreatedAt)
	})
	return defs, nil
}

// DeleteDefinition removes a definition by row ID.
func (s *DefinitionStore) DeleteDefinition(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.defs, id)
	return nil
}
