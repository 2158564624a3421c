package diag

import (
	"rustidy/internal/source"
)

// Note points at a second location of the same problem, e.g. where an
// unclosed delimiter was opened.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces Span with NewText. An empty Span inserts.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is one suggested rewrite; its edits go in together or not at all.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Covering returns the smallest span holding every edit of the fix.
// ok is false when there are no edits or they touch different files.
func (f Fix) Covering() (span source.Span, ok bool) {
	if len(f.Edits) == 0 {
		return source.Span{}, false
	}
	span = f.Edits[0].Span
	for _, e := range f.Edits[1:] {
		if e.Span.File != span.File {
			return source.Span{}, false
		}
		span = span.Cover(e.Span)
	}
	return span, true
}

// Diagnostic is one finding of the parser, the formatter or the driver.
// Primary is where it is reported; fixes may edit elsewhere.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Fixable reports whether `fmt --fix` has something to apply for d.
func (d Diagnostic) Fixable() bool {
	for _, f := range d.Fixes {
		if len(f.Edits) > 0 {
			return true
		}
	}
	return false
}
