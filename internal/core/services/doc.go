// Package services contains the core business logic: the ingestion
// ledger, the ingestion pipeline, the sync engine and the scheduler.
// Services depend only on the driven ports, never on adapters.
package services
