package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driving"
	"github.com/termbase-labs/termbase-cli/internal/fingerprint"
	"github.com/termbase-labs/termbase-cli/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncEngine = (*SyncService)(nil)

// SyncService keeps a watched directory tree aligned with the
// file-state ledger. Scans classify each tracked path against a single
// snapshot of currently present files; applying a change upserts the
// file's row and re-runs ingestion on it.
type SyncService struct {
	root     string
	patterns []string
	store    driven.FileSyncStore
	ledger   *Ledger
	ingestor driving.Ingestor

	// syncMu serialises SyncAll: the file-state ledger has a single
	// writer per engine.
	syncMu sync.Mutex
}

// NewSyncService creates a sync engine over the given root. Patterns
// are doublestar globs relative to root; when empty, markdown files
// are tracked.
func NewSyncService(
	root string,
	patterns []string,
	store driven.FileSyncStore,
	ledger *Ledger,
	ingestor driving.Ingestor,
) *SyncService {
	if len(patterns) == 0 {
		patterns = []string{notePattern}
	}
	return &SyncService{
		root:     root,
		patterns: patterns,
		store:    store,
		ledger:   ledger,
		ingestor: ingestor,
	}
}

// ScanForChanges diffs the tree against the ledger. Classification is
// computed from one snapshot of present paths: a file deleted mid-scan
// after being listed is still processed as whatever state it had when
// enumerated. Per-file hash errors are collected, never fatal.
func (s *SyncService) ScanForChanges(ctx context.Context) (*domain.ScanResult, error) {
	result := &domain.ScanResult{}

	present, err := s.snapshot()
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", s.root, err)
	}

	tracked, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	byPath := make(map[string]domain.FileSyncRecord, len(tracked))
	for _, rec := range tracked {
		byPath[rec.Path] = rec
	}

	for _, path := range present {
		result.TotalScanned++

		hash, info, err := hashFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		prev, known := byPath[path]
		switch {
		case !known || prev.Status == domain.SyncDeleted:
			// A reappearing deleted path is new again.
			result.NewFiles++
			result.Changes = append(result.Changes, domain.FileChange{
				Path:           path,
				Status:         domain.SyncNew,
				NewFingerprint: hash,
				ModTime:        info.ModTime(),
			})

		case prev.Fingerprint != hash:
			result.ModifiedFiles++
			result.Changes = append(result.Changes, domain.FileChange{
				Path:           path,
				Status:         domain.SyncModified,
				OldFingerprint: prev.Fingerprint,
				NewFingerprint: hash,
				ModTime:        info.ModTime(),
			})

		default:
			result.SyncedFiles++
		}
	}

	presentSet := make(map[string]struct{}, len(present))
	for _, p := range present {
		presentSet[p] = struct{}{}
	}
	for _, rec := range tracked {
		if _, ok := presentSet[rec.Path]; ok || rec.Status == domain.SyncDeleted {
			continue
		}
		result.DeletedFiles++
		result.Changes = append(result.Changes, domain.FileChange{
			Path:           rec.Path,
			Status:         domain.SyncDeleted,
			OldFingerprint: rec.Fingerprint,
		})
	}

	logger.Debug("Scan: %d files, %d new, %d modified, %d deleted, %d errors",
		result.TotalScanned, result.NewFiles, result.ModifiedFiles,
		result.DeletedFiles, len(result.Errors))
	return result, nil
}

// SyncChange applies one detected change. New and modified changes run
// inside their own ingest session; a deletion only flips the row and
// leaves no session behind.
func (s *SyncService) SyncChange(ctx context.Context, change domain.FileChange) error {
	if change.Status == domain.SyncDeleted {
		_, err := s.applyChange(ctx, nil, change)
		return err
	}

	session, err := s.ledger.OpenSession(ctx, domain.SourceMarkdown, change.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.ledger.CloseSession(ctx, session); closeErr != nil {
			logger.Warn("Closing session %s: %v", session.ID, closeErr)
		}
	}()

	_, err = s.applyChange(ctx, session, change)
	return err
}

// SyncAll scans and applies every detected change inside one session.
// Per-file failures do not roll back other files. At most one SyncAll
// runs per engine; an overlapping call returns ErrSyncInProgress.
func (s *SyncService) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	if !s.syncMu.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	scan, err := s.ScanForChanges(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{Errors: scan.Errors}
	if len(scan.Changes) == 0 {
		return report, nil
	}

	// A batch of nothing but deletions needs no ingest session.
	var session *domain.IngestSession
	for _, change := range scan.Changes {
		if change.Status == domain.SyncDeleted {
			continue
		}
		session, err = s.ledger.OpenSession(ctx, domain.SourceMarkdown, s.root)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := s.ledger.CloseSession(ctx, session); closeErr != nil {
				logger.Warn("Closing session %s: %v", session.ID, closeErr)
			}
		}()
		break
	}

	for _, change := range scan.Changes {
		ingested, err := s.applyChange(ctx, session, change)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", change.Path, err))
			continue
		}
		report.Synced++
		report.Ingested.Merge(ingested)
	}

	return report, nil
}

// Stats summarises the ledger contents by status.
func (s *SyncService) Stats(ctx context.Context) (map[domain.SyncStatus]int, error) {
	tracked, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}

	stats := make(map[domain.SyncStatus]int)
	for _, rec := range tracked {
		stats[rec.Status]++
	}
	return stats, nil
}

// applyChange upserts the file's row and re-ingests it, or flips the
// row to deleted. Rows are never physically removed.
func (s *SyncService) applyChange(ctx context.Context, session *domain.IngestSession, change domain.FileChange) (domain.BatchResult, error) {
	var ingested domain.BatchResult

	if change.Status == domain.SyncDeleted {
		if err := s.store.MarkDeleted(ctx, change.Path); err != nil {
			return ingested, fmt.Errorf("mark deleted: %w", err)
		}
		logger.Debug("Marked deleted: %s", change.Path)
		return ingested, nil
	}

	info, err := os.Stat(change.Path)
	if err != nil {
		return ingested, fmt.Errorf("stat: %w", err)
	}

	record := &domain.FileSyncRecord{
		Path:        change.Path,
		Fingerprint: change.NewFingerprint,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		LastSynced:  time.Now(),
		Status:      domain.SyncSynced,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return ingested, fmt.Errorf("upsert sync record: %w", err)
	}

	ingested, err = s.ingestor.IngestFile(ctx, session, change.Path)
	if err != nil {
		return ingested, fmt.Errorf("ingest: %w", err)
	}
	return ingested, nil
}

// snapshot enumerates the currently present tracked files, sorted.
func (s *SyncService) snapshot() ([]string, error) {
	var paths []string
	fsys := os.DirFS(s.root)

	for _, pattern := range s.patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			paths = append(paths, filepath.Join(s.root, m))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// hashFile computes the streamed content hash and stat info of a file.
func hashFile(path string) (string, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	hash, err := fingerprint.SumFile(path)
	if err != nil {
		return "", nil, err
	}
	return hash, info, nil
}
