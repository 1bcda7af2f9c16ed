package domain

// SourceKind marks where a piece of data came from.
// It is recorded on every session, record and definition.
type SourceKind string

const (
	// SourceSpreadsheet is data imported from a spreadsheet or CSV file.
	SourceSpreadsheet SourceKind = "spreadsheet"

	// SourceHTMLTable is data parsed from an HTML table.
	SourceHTMLTable SourceKind = "html-table"

	// SourceMarkdown is data parsed from markdown notes.
	SourceMarkdown SourceKind = "markdown"

	// SourceWeb is data fetched from the internet.
	SourceWeb SourceKind = "web"

	// SourceUser is data a human created or edited directly.
	SourceUser SourceKind = "user"

	// SourceGenerated is data produced by tooling.
	SourceGenerated SourceKind = "generated"

	// SourcePlugin is data produced by an editor plugin or similar.
	SourcePlugin SourceKind = "plugin"

	// SourceUnknown is data of unknown origin.
	SourceUnknown SourceKind = "unknown"
)

// ParseSourceKind maps a string to a SourceKind.
// Unrecognised values map to SourceUnknown with ok=false.
func ParseSourceKind(s string) (SourceKind, bool) {
	switch SourceKind(s) {
	case SourceSpreadsheet, SourceHTMLTable, SourceMarkdown, SourceWeb,
		SourceUser, SourceGenerated, SourcePlugin, SourceUnknown:
		return SourceKind(s), true
	}
	return SourceUnknown, false
}

// DefaultNeedsReview returns the review default for a source kind.
// Structured sources (spreadsheets, HTML tables) are trusted and skip
// review by default; free-text and unknown sources do not.
func DefaultNeedsReview(kind SourceKind) bool {
	switch kind {
	case SourceSpreadsheet, SourceHTMLTable:
		return false
	default:
		return true
	}
}

// Confidence expresses how certain we are about a piece of data.
type Confidence string

const (
	ConfidenceVerified   Confidence = "verified"
	ConfidenceHigh       Confidence = "high"
	ConfidenceMedium     Confidence = "medium"
	ConfidenceLow        Confidence = "low"
	ConfidenceUnverified Confidence = "unverified"
)

// ParseConfidence maps a string to a Confidence.
// Unrecognised values map to ConfidenceUnverified with ok=false.
func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(s) {
	case ConfidenceVerified, ConfidenceHigh, ConfidenceMedium,
		ConfidenceLow, ConfidenceUnverified:
		return Confidence(s), true
	}
	return ConfidenceUnverified, false
}

// DefinitionStatus is the lifecycle status of a definition.
// It is stored as the raw string found in front-matter: unknown values
// are preserved (and flagged by validation), never silently coerced.
type DefinitionStatus string

const (
	StatusCanonical  DefinitionStatus = "canonical"
	StatusDraft      DefinitionStatus = "draft"
	StatusReview     DefinitionStatus = "review"
	StatusDeprecated DefinitionStatus = "deprecated"
	StatusConflicted DefinitionStatus = "conflicted"
)

// Known reports whether the status is one of the recognised values.
func (s DefinitionStatus) Known() bool {
	switch s {
	case StatusCanonical, StatusDraft, StatusReview, StatusDeprecated, StatusConflicted:
		return true
	}
	return false
}

// SyncStatus is the synchronisation state of a tracked file.
type SyncStatus string

const (
	SyncSynced   SyncStatus = "synced"
	SyncPending  SyncStatus = "pending"
	SyncModified SyncStatus = "modified"
	SyncNew      SyncStatus = "new"
	SyncDeleted  SyncStatus = "deleted"
	SyncError    SyncStatus = "error"
	SyncConflict SyncStatus = "conflict"
)
