package domain

import "time"

// FileSyncRecord is one row per tracked file in the watched tree.
// The sync engine is the sole mutator. Rows are never physically
// removed: a vanished file keeps its row with status deleted.
type FileSyncRecord struct {
	// Path is the tracked file path. Unique key.
	Path string

	// Fingerprint is the last-known content hash of the file's bytes.
	Fingerprint string

	// Size is the file size in bytes at last sync.
	Size int64

	// ModTime is the filesystem modification time at last sync.
	ModTime time.Time

	// LastSynced is when the file was last successfully synchronised.
	LastSynced time.Time

	// Status is the current sync state of the path.
	Status SyncStatus

	// NeedsResync flags the file for re-ingestion.
	NeedsResync bool
}

// FileChange is a detected difference between the filesystem and the
// persisted file-state ledger.
type FileChange struct {
	// Path is the affected file path.
	Path string

	// Status classifies the change: new, modified or deleted.
	Status SyncStatus

	// OldFingerprint is the stored hash, empty for new files.
	OldFingerprint string

	// NewFingerprint is the current on-disk hash, empty for deletions.
	NewFingerprint string

	// ModTime is the file's current modification time.
	ModTime time.Time
}

// ScanResult is the outcome of one change-detection scan. The
// classification is computed from a single snapshot of present paths.
type ScanResult struct {
	// TotalScanned is the number of files enumerated.
	TotalScanned int

	// NewFiles, ModifiedFiles, DeletedFiles and SyncedFiles count the
	// classification buckets.
	NewFiles      int
	ModifiedFiles int
	DeletedFiles  int
	SyncedFiles   int

	// Changes lists every detected change in scan order.
	Changes []FileChange

	// Errors collects per-file read/hash failures. They do not abort
	// the scan.
	Errors []string
}

// SyncReport is the aggregate outcome of syncing a set of changes.
type SyncReport struct {
	// Synced is the number of changes applied successfully.
	Synced int

	// Failed is the number of changes that could not be applied.
	Failed int

	// Ingested summarises the re-ingestion triggered by the sync.
	Ingested BatchResult

	// Errors holds one human-readable string per failure.
	Errors []string
}
