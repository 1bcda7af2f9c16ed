// Package normalise cleans raw text and cell values before they are
// hashed or stored. Every transformation is recorded for auditability,
// and the text pipeline is idempotent: reapplying it to its own output
// yields no further changes.
package normalise
