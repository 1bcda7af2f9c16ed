// Package domain contains the core business entities for termbase.
// These types are persistence-agnostic: stores and adapters depend on
// them, never the other way around.
package domain
