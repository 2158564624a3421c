package main

import (
	"io"

	"rustidy/internal/diag"
	"rustidy/internal/diagfmt"
	"rustidy/internal/source"
)

// printBag renders diagnostics to w. Quiet runs keep errors only.
func printBag(w io.Writer, bag *diag.Bag, fs *source.FileSet, g globalFlags) {
	if bag == nil || fs == nil || bag.Len() == 0 {
		return
	}
	if g.quiet && !bag.HasErrors() {
		return
	}
	bag.Sort()
	bag.Dedup()
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:       g.color,
		Context:     1,
		PathMode:    diagfmt.PathModeAuto,
		ShowNotes:   true,
		ShowFixes:   !g.quiet,
		ShowPreview: !g.quiet,
	})
}
