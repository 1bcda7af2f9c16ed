package driving

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// SyncEngine keeps the watched tree and the file-state ledger aligned.
type SyncEngine interface {
	// ScanForChanges diffs the tree against the ledger from a single
	// snapshot of present paths.
	ScanForChanges(ctx context.Context) (*domain.ScanResult, error)

	// SyncChange applies one detected change: upsert plus re-ingest
	// for new/modified, status flip for deleted.
	SyncChange(ctx context.Context, change domain.FileChange) error

	// SyncAll scans and applies every detected change. Per-file
	// failures do not roll back other files. At most one SyncAll runs
	// per engine; an overlapping call fails with ErrSyncInProgress.
	SyncAll(ctx context.Context) (*domain.SyncReport, error)

	// Stats summarises the current ledger contents by status.
	Stats(ctx context.Context) (map[domain.SyncStatus]int, error)
}
