// Package diag defines the diagnostic model shared by the parser, the
// formatter and the driver.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (SYN2001, FMT4001, IO5001), a short Message, the Primary span
// and optional Notes and Fixes. Producers emit through a Reporter; the
// driver collects into a Bag, which sorts and deduplicates before the CLI
// renders it with internal/diagfmt.
//
// Package diag does no formatting beyond the single-line form used by
// tests and `rustidy check --format short`.
package diag
