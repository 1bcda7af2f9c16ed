package driven

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// FileSyncStore persists per-file sync state. Rows are keyed by path
// and are never physically removed; deletions flip the status.
type FileSyncStore interface {
	// Upsert creates or updates the record for its path.
	Upsert(ctx context.Context, record *domain.FileSyncRecord) error

	// Get retrieves the record for a path.
	Get(ctx context.Context, path string) (*domain.FileSyncRecord, error)

	// List returns all tracked records.
	List(ctx context.Context) ([]domain.FileSyncRecord, error)

	// MarkDeleted flips a path's status to deleted, keeping the row.
	MarkDeleted(ctx context.Context, path string) error

	// ListNeedingResync returns records flagged for re-ingestion.
	ListNeedingResync(ctx context.Context) ([]domain.FileSyncRecord, error)
}
