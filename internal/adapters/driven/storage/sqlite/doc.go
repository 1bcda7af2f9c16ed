// Package sqlite implements the storage ports on a single SQLite
// database file. The schema is managed by embedded forward migrations.
package sqlite
