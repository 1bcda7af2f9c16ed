package driven

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// DefinitionStore persists extracted definitions.
type DefinitionStore interface {
	// SaveDefinition stores or updates a definition.
	SaveDefinition(ctx context.Context, def *domain.Definition) error

	// GetDefinition retrieves a definition by row ID.
	GetDefinition(ctx context.Context, id string) (*domain.Definition, error)

	// GetByDefinitionID retrieves a definition by its stable
	// human-assigned identifier.
	GetByDefinitionID(ctx context.Context, definitionID string) (*domain.Definition, error)

	// ListDefinitions returns all definitions, newest first.
	ListDefinitions(ctx context.Context) ([]domain.Definition, error)

	// DeleteDefinition removes a definition by row ID.
	DeleteDefinition(ctx context.Context, id string) error
}
