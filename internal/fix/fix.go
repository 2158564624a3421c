// Package fix applies the machine-applicable edits attached to diagnostics.
//
// Edits are applied to the normalized content of a single file. A fix is
// applied whole or not at all; when two fixes touch overlapping text the one
// that starts earlier wins and the other is skipped.
package fix

import (
	"fmt"
	"sort"

	"rustidy/internal/diag"
	"rustidy/internal/source"
)

// Applied records a fix that made it into the output.
type Applied struct {
	Code  diag.Code
	Title string
	Edits int
}

// Skipped records a fix that was left out and the reason.
type Skipped struct {
	Code   diag.Code
	Title  string
	Reason string
}

// Result is the outcome of Apply. Content is normalized (no BOM, LF only);
// use source.Restore to get bytes for disk.
type Result struct {
	Content []byte
	Applied []Applied
	Skipped []Skipped
}

// Changed reports whether any fix was applied.
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

type candidate struct {
	code  diag.Code
	fix   diag.Fix
	start source.Pos
	end   source.Pos
	order int
}

// Apply applies fixes carried by diagnostics that target file. Diagnostics
// for other files are ignored. file is never modified.
func Apply(file *source.File, diagnostics []diag.Diagnostic) Result {
	res := Result{Content: file.Content}

	cands, skipped := gather(file, diagnostics)
	res.Skipped = skipped
	if len(cands) == 0 {
		return res
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		if cands[i].end != cands[j].end {
			return cands[i].end < cands[j].end
		}
		return cands[i].order < cands[j].order
	})

	var accepted []diag.FixEdit
	for _, c := range cands {
		if conflicts(accepted, c.fix.Edits) {
			res.Skipped = append(res.Skipped, Skipped{Code: c.code, Title: c.fix.Title, Reason: "conflicts with an earlier fix"})
			continue
		}
		accepted = append(accepted, c.fix.Edits...)
		res.Applied = append(res.Applied, Applied{Code: c.code, Title: c.fix.Title, Edits: len(c.fix.Edits)})
	}
	res.Content = splice(file.Content, accepted)
	return res
}

func gather(file *source.File, diagnostics []diag.Diagnostic) ([]candidate, []Skipped) {
	var (
		cands   []candidate
		skipped []Skipped
	)
	size := source.Pos(len(file.Content))
	for _, d := range diagnostics {
		for _, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skipped = append(skipped, Skipped{Code: d.Code, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			reason := ""
			for _, e := range f.Edits {
				switch {
				case e.Span.File != file.ID:
					reason = "edit targets another file"
				case e.Span.Start > e.Span.End || e.Span.End > size:
					reason = fmt.Sprintf("edit span %s out of range", e.Span)
				case conflicts([]diag.FixEdit{e}, others(f.Edits, e)):
					reason = "edits of the fix overlap"
				}
				if reason != "" {
					break
				}
			}
			if reason != "" {
				// правка для другого файла не ошибка, просто не наша
				if d.Primary.File == file.ID {
					skipped = append(skipped, Skipped{Code: d.Code, Title: f.Title, Reason: reason})
				}
				continue
			}
			cover, _ := f.Covering()
			cands = append(cands, candidate{code: d.Code, fix: f, start: cover.Start, end: cover.End, order: len(cands)})
		}
	}
	return cands, skipped
}

func others(edits []diag.FixEdit, skip diag.FixEdit) []diag.FixEdit {
	out := make([]diag.FixEdit, 0, len(edits))
	seen := false
	for _, e := range edits {
		if !seen && e == skip {
			seen = true
			continue
		}
		out = append(out, e)
	}
	return out
}

func conflicts(existing, edits []diag.FixEdit) bool {
	for _, prev := range existing {
		for _, e := range edits {
			if spansConflict(prev.Span, e.Span) {
				return true
			}
		}
	}
	return false
}

// spansConflict treats spans as half-open. Two insertions conflict only at the
// same position; an insertion conflicts with a replacement strictly containing it.
func spansConflict(a, b source.Span) bool {
	switch {
	case a.Empty() && b.Empty():
		return a.Start == b.Start
	case a.Empty():
		return b.Start < a.Start && a.Start < b.End
	case b.Empty():
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// splice applies non-overlapping edits to content in one pass.
func splice(content []byte, edits []diag.FixEdit) []byte {
	sorted := append([]diag.FixEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		// вставка перед заменой с того же места
		return sorted[i].Span.Empty() && !sorted[j].Span.Empty()
	})
	out := make([]byte, 0, len(content))
	cur := source.Pos(0)
	for _, e := range sorted {
		out = append(out, content[cur:e.Span.Start]...)
		out = append(out, e.NewText...)
		cur = e.Span.End
	}
	return append(out, content[cur:]...)
}
