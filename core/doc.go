// Package core defines the domain model for captura: artifacts (captured
// images with stable identity), analysis results, smart folder filter
// rules, and search result entries.
//
// The package has no dependencies on storage or AI services. All other
// packages depend on core, never the other way around.
package core
