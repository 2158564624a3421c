package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Slice refers to a Span of the original file, optionally replaced by a
// synthesized fragment. A synthesized slice keeps the span it replaces so
// diagnostics still point somewhere, but its text has no source bytes.
type Slice struct {
	Span Span
	// Repl indexes Replacements; 0 means "exact original bytes".
	Repl ReplID
}

// ReplID identifies a synthesized fragment in a Replacements table.
type ReplID uint32

// NoRepl marks a slice that points at original bytes.
const NoRepl ReplID = 0

// Synthesized reports whether the slice text comes from a replacement.
func (s Slice) Synthesized() bool {
	return s.Repl != NoRepl
}

// Text resolves the slice against the original file and the replacement table.
func (s Slice) Text(f *File, r *Replacements) string {
	if s.Synthesized() {
		if r == nil {
			panic(fmt.Errorf("slice %v is synthesized but no replacement table was given", s.Span))
		}
		return r.Get(s.Repl)
	}
	return s.Span.Text(f)
}

// Replacements stores synthesized fragments for one file.
// The zero value is ready to use.
type Replacements struct {
	items []string // items[i] is ReplID(i+1)
}

// Add stores text and returns its id.
func (r *Replacements) Add(text string) ReplID {
	r.items = append(r.items, text)
	n, err := safecast.Conv[uint32](len(r.items))
	if err != nil {
		panic(fmt.Errorf("replacement table overflow: %w", err))
	}
	return ReplID(n)
}

// Get returns the fragment for id.
func (r *Replacements) Get(id ReplID) string {
	if id == NoRepl || int(id) > len(r.items) {
		panic(fmt.Errorf("unknown replacement id %d", id))
	}
	return r.items[id-1]
}

// Len returns the number of stored fragments.
func (r *Replacements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Truncate drops every fragment added after the table had n entries.
func (r *Replacements) Truncate(n int) {
	if r == nil || n >= len(r.items) {
		return
	}
	if n < 0 {
		n = 0
	}
	clear(r.items[n:])
	r.items = r.items[:n]
}
