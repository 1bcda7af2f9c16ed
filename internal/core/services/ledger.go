package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
	"github.com/termbase-labs/termbase-cli/internal/fingerprint"
	"github.com/termbase-labs/termbase-cli/internal/logger"
)

// RecordOutcome classifies what an ingested item did to its target.
type RecordOutcome int

const (
	// OutcomeCreated means the item produced a new entity.
	OutcomeCreated RecordOutcome = iota

	// OutcomeUpdated means the item updated an existing entity.
	OutcomeUpdated
)

// Ledger is the source-attribution service. Every ingestion run opens a
// session, records each item against it, and closes it. Sessions and
// records are append-only audit data.
type Ledger struct {
	sessions driven.SessionStore
	records  driven.RecordStore
}

// NewLedger creates a ledger backed by the given stores.
func NewLedger(sessions driven.SessionStore, records driven.RecordStore) *Ledger {
	return &Ledger{
		sessions: sessions,
		records:  records,
	}
}

// OpenSession starts a new ingestion session. A failure here is fatal
// to the run: no partial session is left open.
func (l *Ledger) OpenSession(ctx context.Context, kind domain.SourceKind, locator string) (*domain.IngestSession, error) {
	session := &domain.IngestSession{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		SourceKind: kind,
		SourcePath: locator,
		SourceName: filepath.Base(locator),
		Metadata:   map[string]any{},
	}

	if err := l.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	logger.Info("Opened session %s (%s: %s)", session.ID, kind, locator)
	return session, nil
}

// RecordItem appends one record to the session and bumps its counters.
// A store failure is folded into the session's own accounting instead
// of aborting the batch. Records whose fingerprint already exists are
// flagged for review, never merged.
func (l *Ledger) RecordItem(ctx context.Context, session *domain.IngestSession, record *domain.IngestRecord, outcome RecordOutcome) error {
	if session.Closed() {
		return fmt.Errorf("record item: %w", domain.ErrSessionClosed)
	}

	record.ID = uuid.NewString()
	record.SessionID = session.ID
	record.CreatedAt = time.Now()
	if record.Fingerprint == "" {
		record.Fingerprint = fingerprint.SumString(record.NormalisedContent)
	}

	count, err := l.records.CountByFingerprint(ctx, record.Fingerprint)
	if err != nil {
		logger.Warn("Duplicate check failed for %s: %v", record.Fingerprint, err)
	} else if count > 0 {
		record.NeedsReview = true
		if record.ReviewNotes == "" {
			record.ReviewNotes = fmt.Sprintf("duplicate content: %d existing record(s) share this fingerprint", count)
		}
	}

	session.Processed++
	if err := l.records.SaveRecord(ctx, record); err != nil {
		session.Failed++
		session.ErrorLog = append(session.ErrorLog, fmt.Sprintf("save record for %s: %v", record.SourceFile, err))
		return nil
	}

	switch outcome {
	case OutcomeUpdated:
		session.Updated++
	default:
		session.Created++
	}
	return nil
}

// RecordFailure accounts a per-item failure without persisting a
// record. The error message lands in the session's log.
func (l *Ledger) RecordFailure(session *domain.IngestSession, item string, err error) {
	session.Processed++
	session.Failed++
	session.ErrorLog = append(session.ErrorLog, fmt.Sprintf("%s: %v", item, err))
}

// CloseSession stamps the completion time and persists the final
// counts. Closing an already-closed session is a no-op.
func (l *Ledger) CloseSession(ctx context.Context, session *domain.IngestSession) error {
	if session.Closed() {
		return nil
	}

	session.CompletedAt = time.Now()
	if err := l.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	logger.Info("Closed session %s: %d processed, %d created, %d updated, %d failed",
		session.ID, session.Processed, session.Created, session.Updated, session.Failed)
	return nil
}

// Sessions returns recent sessions, newest first.
func (l *Ledger) Sessions(ctx context.Context, limit int) ([]domain.IngestSession, error) {
	return l.sessions.ListSessions(ctx, limit)
}

// SessionRecords returns the records written during one session.
func (l *Ledger) SessionRecords(ctx context.Context, sessionID string) ([]domain.IngestRecord, error) {
	return l.records.ListRecords(ctx, sessionID)
}
