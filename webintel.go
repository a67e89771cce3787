// Package webintel provides a local, CLI-based website intelligence tool.
// It crawls websites to bounded depth, extracts content as markdown, stores
// crawl results locally, and answers natural language questions about the
// stored content through a locally hosted language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., colly/, rod/, sqlite/, ollama/).
package webintel
