package parser

import (
	"context"
	"errors"
	"fmt"

	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/diag"
	"rustidy/internal/source"
	"rustidy/internal/trace"
)

// Options configures a single ParseFile call.
type Options struct {
	// MaxDepth bounds syntactic nesting; 0 means cursor.DefaultMaxDepth.
	MaxDepth int
	// Reporter receives the parse failure, if any. May be nil.
	Reporter diag.Reporter
}

// Result is the outcome of ParseFile. File is nil when Err is set.
type Result struct {
	File *ast.File
	Err  *cursor.Error
}

// ParseFile parses a whole source file. Parsing stops at the first failure:
// the grammar has no recovery, so a partial tree is never returned.
func ParseFile(ctx context.Context, file *source.File, opts Options) Result {
	_, sp := trace.Start(ctx, trace.ScopeFile, "parse")
	sp.WithExtra("file", file.Path)

	f, err := parse(file, opts.MaxDepth)
	if err != nil {
		sp.End("error")
		if opts.Reporter != nil {
			Report(opts.Reporter, err)
		}
		return Result{Err: err}
	}
	sp.WithExtra("items", fmt.Sprint(len(f.Items))).End("")
	return Result{File: f}
}

func parse(file *source.File, maxDepth int) (*ast.File, *cursor.Error) {
	a := arena.NewArena(uint(len(file.Content) / 8))
	repl := &source.Replacements{}
	c := cursor.New(file, a, repl)
	if maxDepth > 0 {
		c.MaxDepth = maxDepth
	}

	f := &ast.File{
		Src:   ast.Source{File: file, Repl: repl},
		Arena: a,
	}
	if err := parseInto(c, f); err != nil {
		var pe *cursor.Error
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &cursor.Error{Kind: cursor.KindCustom, Span: c.Here(), Pos: c.Pos(), Msg: err.Error(), Fatal: true}
	}
	return f, nil
}

func parseInto(c *cursor.Cursor, f *ast.File) error {
	var err error
	if f.Attrs, err = innerAttrs(c); err != nil {
		return err
	}
	for {
		cp := c.Checkpoint()
		ws, err := whitespace(c)
		if err != nil {
			return err
		}
		if c.EOF() {
			f.EOF = ws
			return nil
		}
		c.Rewind(cp)

		it, err := cursor.TryParse(c, namedItem)
		if err != nil {
			if cursor.IsFatal(err) {
				return err
			}
			if _, werr := whitespace(c); werr != nil {
				return werr
			}
			// an item started here and broke later: that failure is the
			// useful one
			var pe *cursor.Error
			if errors.As(err, &pe) && pe.Pos > c.Pos() {
				return cursor.AsFatal(pe)
			}
			e := c.Unexpected(c.Expected().Found)
			e.Msg = "expected an item, found " + e.Found
			e.Fatal = true
			return e
		}
		f.Items = append(f.Items, it)
	}
}

// Report converts a parse failure into a diagnostic.
func Report(r diag.Reporter, err *cursor.Error) {
	code := diag.SynExpected
	var notes []diag.Note
	switch err.Kind {
	case cursor.KindUnclosed:
		code = diag.SynUnclosedDelimiter
		if err.Open.End > err.Open.Start {
			notes = append(notes, diag.Note{Span: err.Open, Msg: "unclosed delimiter opened here"})
		}
	case cursor.KindTooDeep:
		code = diag.SynTooDeep
	case cursor.KindUnexpected:
		code = diag.SynTrailingInput
	}
	primary := source.Span{File: err.Span.File, Start: err.Pos, End: err.Pos}
	if err.Kind == cursor.KindUnclosed || err.Kind == cursor.KindTooDeep {
		primary = err.Span
	}
	r.Report(code, diag.SevError, primary, err.Error(), notes, nil)
}
