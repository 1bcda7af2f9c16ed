package domain

import "time"

// IngestSession is the audit unit for one ingestion run. Every record
// written during the run references its session, so any persisted fact
// can be traced back to when and where it was ingested.
type IngestSession struct {
	// ID is the unique identifier for the session.
	ID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// CompletedAt is when the run was closed. Zero while the session
	// is still open.
	CompletedAt time.Time

	// SourceKind marks the origin of the run's data.
	SourceKind SourceKind

	// SourcePath is the file path or URL the run ingested from.
	SourcePath string

	// SourceName is a friendly name, usually the path's base name.
	SourceName string

	// Processed, Created, Updated and Failed are the running counts.
	// At close time Processed == Created + Updated + Failed.
	Processed int
	Created   int
	Updated   int
	Failed    int

	// ErrorLog collects human-readable per-item error strings.
	ErrorLog []string

	// Metadata contains run-specific key-value pairs.
	Metadata map[string]any
}

// Closed reports whether the session has been closed.
func (s *IngestSession) Closed() bool {
	return !s.CompletedAt.IsZero()
}

// IngestRecord is one row or unit ingested within a session. It carries
// full source attribution down to the cell level where applicable.
type IngestRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// SessionID links to the owning IngestSession.
	SessionID string

	// CreatedAt is when the record was written.
	CreatedAt time.Time

	// SourceKind marks the origin of this record's data.
	SourceKind SourceKind

	// SourceFile is the file path for file-based sources.
	SourceFile string

	// SourceSheet is the sheet name for spreadsheet sources.
	SourceSheet string

	// TableIndex is the table's ordinal on the page for HTML sources.
	TableIndex int

	// SourceRow is the 1-based row number within the sheet or table.
	SourceRow int

	// SourceCell is the cell reference (e.g. "A1") where applicable.
	SourceCell string

	// SourceURL is the original URL for web sources.
	SourceURL string

	// RawContent is the content as read from the source.
	RawContent string

	// NormalisedContent is the content after cleaning.
	NormalisedContent string

	// Fingerprint is the content hash of NormalisedContent, used for
	// deduplication. Duplicates are flagged for review, never merged.
	Fingerprint string

	// Confidence expresses how much we trust this record.
	Confidence Confidence

	// NeedsReview flags the record for the human review workflow.
	NeedsReview bool

	// ReviewNotes explains why the record needs review.
	ReviewNotes string

	// TargetTable and TargetID link to the entity this record
	// produced (e.g. "definitions" + row id).
	TargetTable string
	TargetID    string
}

// BatchResult is the aggregate outcome of a batch operation. Per-item
// failures are collected here; they never abort the batch.
type BatchResult struct {
	// Attempted is the number of items the batch tried to process.
	Attempted int

	// Created is the number of new entities written.
	Created int

	// Updated is the number of existing entities updated.
	Updated int

	// Failed is the number of items that could not be processed.
	Failed int

	// Errors holds one human-readable string per failure.
	Errors []string
}

// Merge folds another result into this one.
func (r *BatchResult) Merge(other BatchResult) {
	r.Attempted += other.Attempted
	r.Created += other.Created
	r.Updated += other.Updated
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}
