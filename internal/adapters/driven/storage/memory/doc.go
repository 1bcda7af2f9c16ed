// Package memory provides in-memory implementations of the storage
// ports. Used for tests and as a fallback when no database path is
// configured.
package memory
