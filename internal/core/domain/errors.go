package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionClosed indicates a write was attempted against a
	// session that has already been closed.
	ErrSessionClosed = errors.New("ingest session closed")

	// ErrNotDefinition indicates a note does not look like a
	// definition. It is an outcome, not a failure: batch callers skip
	// the note and continue.
	ErrNotDefinition = errors.New("not a definition")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")
)
