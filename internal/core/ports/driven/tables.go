package driven

import (
	"context"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// TableExtractor yields ordered header-keyed rows with source
// coordinates from a spreadsheet or HTML document. Cell-level parsing
// lives behind this boundary.
type TableExtractor interface {
	// Kind returns the source kind the extractor produces.
	Kind() domain.SourceKind

	// Extract reads all tables from the given locator.
	Extract(ctx context.Context, locator string) ([]domain.Table, error)
}
