// Package arena stores recursive syntax nodes in a per-file slot table.
//
// A node is reachable through exactly one Index at a time. Reads, mutations and
// destructive takes are checked at run time: touching a released slot, taking a
// slot twice, or re-entering a borrowed slot panics with a *Violation. Those
// panics mean the parser itself is broken and are never recovered.
//
// Speculative parsing allocates freely and hands unused nodes back with
// ReleaseSince / ReleaseRange. Before every allocation the arena truncates the
// run of dead slots at its end, so allocate/drop churn does not grow the table.
//
// An Arena is single-owner state and is not safe for concurrent use; parse each
// file with its own arena.
package arena
