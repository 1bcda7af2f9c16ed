package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driving"
	"github.com/termbase-labs/termbase-cli/internal/extract"
	"github.com/termbase-labs/termbase-cli/internal/fingerprint"
	"github.com/termbase-labs/termbase-cli/internal/logger"
	"github.com/termbase-labs/termbase-cli/internal/normalise"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// notePattern matches the files IngestDir considers.
const notePattern = "**/*.md"

// IngestService drives the ingestion pipeline: read, normalise,
// extract, validate, persist, record. All operations are synchronous
// on the caller's goroutine.
type IngestService struct {
	ledger      *Ledger
	definitions driven.DefinitionStore
}

// NewIngestService creates the ingestion pipeline service.
func NewIngestService(ledger *Ledger, definitions driven.DefinitionStore) *IngestService {
	return &IngestService{
		ledger:      ledger,
		definitions: definitions,
	}
}

// IngestFile ingests a single markdown file inside an open session.
// Unreadable files and malformed front-matter are document-level
// failures collected into the result; a note that simply is not a
// definition is skipped without counting as a failure.
func (s *IngestService) IngestFile(ctx context.Context, session *domain.IngestSession, path string) (domain.BatchResult, error) {
	res := domain.BatchResult{Attempted: 1}

	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(res, session, path, fmt.Errorf("read file: %w", err)), nil
	}

	var modTime time.Time
	if info, statErr := os.Stat(path); statErr == nil {
		modTime = info.ModTime()
	}

	note, err := extract.ParseNote(path, data, modTime)
	if err != nil {
		return s.fail(res, session, path, err), nil
	}

	signal := extract.Classify(note)
	if signal == domain.SignalNo {
		logger.Debug("Skipping %s: not a definition", path)
		return res, nil
	}

	def, err := extract.ExtractDefinition(note)
	if err != nil {
		return s.fail(res, session, path, err), nil
	}

	if v := normalise.ValidateDefinition(def); !v.Valid {
		return s.fail(res, session, path, fmt.Errorf("invalid definition: %s", strings.Join(v.Errors, "; "))), nil
	}

	created, err := s.upsertDefinition(ctx, def)
	if err != nil {
		return s.fail(res, session, path, fmt.Errorf("save definition: %w", err)), nil
	}

	record := &domain.IngestRecord{
		SourceKind:        domain.SourceMarkdown,
		SourceFile:        path,
		RawContent:        string(data),
		NormalisedContent: note.Content,
		Fingerprint:       note.Fingerprint,
		Confidence:        domain.ConfidenceUnverified,
		NeedsReview:       domain.DefaultNeedsReview(domain.SourceMarkdown),
		TargetTable:       "definitions",
		TargetID:          def.ID,
	}
	if signal == domain.SignalAmbiguous {
		record.ReviewNotes = "classified by body headings only"
	}

	outcome := OutcomeUpdated
	if created {
		outcome = OutcomeCreated
	}
	if err := s.ledger.RecordItem(ctx, session, record, outcome); err != nil {
		return res, err
	}

	if created {
		res.Created = 1
	} else {
		res.Updated = 1
	}
	logger.Debug("Ingested %s -> definition %s", path, def.ID)
	return res, nil
}

// IngestDir opens a session, ingests every markdown file under root
// and closes the session exactly once. Per-file failures land in the
// aggregate result; only session-level failures propagate.
func (s *IngestService) IngestDir(ctx context.Context, kind domain.SourceKind, root string) (domain.BatchResult, error) {
	var res domain.BatchResult

	matches, err := doublestar.Glob(os.DirFS(root), notePattern)
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(matches)

	session, err := s.ledger.OpenSession(ctx, kind, root)
	if err != nil {
		return res, err
	}
	defer func() {
		if closeErr := s.ledger.CloseSession(ctx, session); closeErr != nil {
			logger.Warn("Closing session %s: %v", session.ID, closeErr)
		}
	}()

	for _, match := range matches {
		fileRes, err := s.IngestFile(ctx, session, filepath.Join(root, match))
		if err != nil {
			return res, err
		}
		res.Merge(fileRes)

		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}

	return res, nil
}

// IngestTables ingests extracted table rows inside an open session.
// Each row becomes one record carrying its full source coordinates.
// Rows from structured sources are trusted: confidence high, no review.
func (s *IngestService) IngestTables(ctx context.Context, session *domain.IngestSession, tables []domain.Table) (domain.BatchResult, error) {
	var res domain.BatchResult

	for _, table := range tables {
		for _, row := range table.Rows {
			res.Attempted++

			cells, _ := normalise.CleanRow(row.Cells)
			record := &domain.IngestRecord{
				SourceKind:        table.SourceKind,
				SourceFile:        table.SourceFile,
				SourceSheet:       table.SheetName,
				TableIndex:        table.Index,
				SourceRow:         row.Number,
				SourceCell:        firstCellRef(row),
				SourceURL:         table.SourceURL,
				RawContent:        renderRawRow(table.Headers, row),
				NormalisedContent: renderCleanRow(cells),
				Confidence:        domain.ConfidenceHigh,
				NeedsReview:       domain.DefaultNeedsReview(table.SourceKind),
			}
			record.Fingerprint = fingerprint.SumString(record.NormalisedContent)

			if err := s.ledger.RecordItem(ctx, session, record, OutcomeCreated); err != nil {
				return res, err
			}
			res.Created++
		}
	}

	return res, nil
}

// upsertDefinition saves the definition, updating in place when a row
// with the same stable identifier already exists. Returns true when a
// new row was created.
func (s *IngestService) upsertDefinition(ctx context.Context, def *domain.Definition) (bool, error) {
	now := time.Now()

	if def.DefinitionID != "" {
		existing, err := s.definitions.GetByDefinitionID(ctx, def.DefinitionID)
		switch {
		case err == nil:
			def.ID = existing.ID
			def.CreatedAt = existing.CreatedAt
			def.UpdatedAt = now
			return false, s.definitions.SaveDefinition(ctx, def)
		case !errors.Is(err, domain.ErrNotFound):
			return false, err
		}
	}

	def.ID = uuid.NewString()
	def.CreatedAt = now
	def.UpdatedAt = now
	return true, s.definitions.SaveDefinition(ctx, def)
}

// fail accounts a document-level failure in both the batch result and
// the session.
func (s *IngestService) fail(res domain.BatchResult, session *domain.IngestSession, path string, err error) domain.BatchResult {
	res.Failed++
	res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", path, err))
	s.ledger.RecordFailure(session, path, err)
	logger.Debug("Failed to ingest %s: %v", path, err)
	return res
}

// firstCellRef returns the reference of the row's first cell in header
// order, when the extractor supplied references.
func firstCellRef(row domain.TableRow) string {
	if len(row.CellRefs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(row.CellRefs))
	for k := range row.CellRefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return row.CellRefs[keys[0]]
}

// renderRawRow renders the original row values in header order.
func renderRawRow(headers []string, row domain.TableRow) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %v", h, row.Cells[h])
	}
	return b.String()
}

// renderCleanRow renders cleaned cells sorted by key so the fingerprint
// is stable across extractors.
func renderCleanRow(cells map[string]normalise.Cell) string {
	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", k, cells[k].String())
	}
	return b.String()
}
