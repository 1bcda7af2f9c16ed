package driving

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// Ingestor drives the ingestion pipeline: normalise, extract, record.
// Batch operations return an aggregate result; per-item failures are
// collected inside it and never escape as errors.
type Ingestor interface {
	// IngestFile ingests a single markdown file inside the session.
	IngestFile(ctx context.Context, session *domain.IngestSession, path string) (domain.BatchResult, error)

	// IngestDir opens a session, ingests every tracked file under
	// root, and closes the session exactly once.
	IngestDir(ctx context.Context, kind domain.SourceKind, root string) (domain.BatchResult, error)

	// IngestTables ingests extracted table rows inside the session.
	IngestTables(ctx context.Context, session *domain.IngestSession, tables []domain.Table) (domain.BatchResult, error)
}
