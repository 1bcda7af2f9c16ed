// Package file provides the TOML-backed configuration store. Values
// are addressed by dot-notation keys and persisted to the local
// filesystem under the termbase config directory.
package file
