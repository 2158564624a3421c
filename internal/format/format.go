package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"rustidy/internal/ast"
	"rustidy/internal/diag"
	"rustidy/internal/parser"
	"rustidy/internal/source"
	"rustidy/internal/trace"
)

var (
	// ErrParse means the input did not parse; the reporter got the details.
	ErrParse = errors.New("parse failed")
	// ErrTokenMismatch means formatting would have changed more than
	// whitespace. Output is never produced in that case.
	ErrTokenMismatch = errors.New("formatting changed the token sequence")
)

// Result is the outcome of FormatFile.
type Result struct {
	// Output is ready to write: BOM and CRLF endings of the input restored.
	Output  []byte
	Changed bool
	// Warnings counts lint diagnostics sent to the reporter.
	Warnings int
}

// Source prints the leaves of f as they currently are.
func Source(f *ast.File) []byte {
	return []byte(f.Print())
}

// Format rewrites the whitespace leaves of f in place and returns the new
// text. Calling it again on the same tree is a no-op.
func Format(f *ast.File, opt Options) []byte {
	repl := f.Src.Repl
	if repl == nil {
		repl = &source.Replacements{}
		f.Src.Repl = repl
	}
	l := &layout{src: f.Src, repl: repl, opt: opt.withDefaults()}
	ast.Walk(l, f)
	return Source(f)
}

// FormatFile parses file, lints it, formats it and re-parses the output to
// make sure only whitespace changed.
func FormatFile(ctx context.Context, file *source.File, opt Options, r diag.Reporter) (Result, error) {
	ctx, sp := trace.Start(ctx, trace.ScopeFile, "format")
	defer sp.End("")
	sp.WithExtra("file", file.Path)

	res := parser.ParseFile(ctx, file, parser.Options{MaxDepth: opt.MaxDepth, Reporter: r})
	if res.Err != nil {
		return Result{}, fmt.Errorf("%s: %w", file.Path, ErrParse)
	}
	before := res.File
	warnings := 0
	if r != nil {
		warnings = LintIdents(before, r)
	}

	// the original tree is rewritten in place; keep an untouched copy of
	// the token sequence first
	orig := Tokens(before)
	out := Format(before, opt)

	fs := source.NewFileSet()
	id := fs.AddVirtual(file.Path, out)
	again := parser.ParseFile(ctx, fs.Get(id), parser.Options{MaxDepth: opt.MaxDepth})
	if again.Err != nil {
		reportMismatch(r, file, fmt.Sprintf("formatted output does not parse: %v", again.Err))
		return Result{}, fmt.Errorf("%s: %w", file.Path, ErrTokenMismatch)
	}
	if err := compareTokens(orig, Tokens(again.File)); err != nil {
		reportMismatch(r, file, err.Error())
		return Result{}, fmt.Errorf("%s: %w: %w", file.Path, ErrTokenMismatch, err)
	}

	return Result{
		Output:   source.Restore(out, file.Flags),
		Changed:  !bytes.Equal(out, file.Content),
		Warnings: warnings,
	}, nil
}

func reportMismatch(r diag.Reporter, file *source.File, msg string) {
	if r == nil {
		return
	}
	span := source.Span{File: file.ID}
	diag.ReportError(r, diag.FmtTokenMismatch, span, msg).
		WithNote(span, "the file was left unchanged").
		Emit()
}
