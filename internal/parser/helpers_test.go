package parser

import (
	"context"
	"strings"
	"testing"

	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/diag"
	"rustidy/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.File, *cursor.Error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	res := ParseFile(context.Background(), fs.Get(id), Options{})
	return res.File, res.Err
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return f
}

func mustFail(t *testing.T, src string) *cursor.Error {
	t.Helper()
	f, err := parseSource(t, src)
	if err == nil {
		t.Fatalf("expected %q to fail, got %q", src, f.Print())
	}
	return err
}

// fnBody returns the statements of the first item, which must be a function.
func fnBody(t *testing.T, f *ast.File) []ast.Stmt {
	t.Helper()
	if len(f.Items) == 0 {
		t.Fatalf("no items")
	}
	fn, ok := f.Items[0].(*ast.Fn)
	if !ok || fn.Body == nil {
		t.Fatalf("first item is %T, want *ast.Fn with a body", f.Items[0])
	}
	return fn.Body.Stmts
}

// stmtExprOf returns the expression of statement i.
func stmtExprOf(t *testing.T, f *ast.File, i int) ast.Expr {
	t.Helper()
	stmts := fnBody(t, f)
	if i >= len(stmts) {
		t.Fatalf("only %d statements", len(stmts))
	}
	switch st := stmts[i].(type) {
	case *ast.ExprStmt:
		return st.Expr.Get(f.Arena)
	case *ast.LetStmt:
		return st.Init.Get(f.Arena)
	default:
		t.Fatalf("statement %d is %T", i, stmts[i])
		return nil
	}
}

func exprText(f *ast.File, id ast.ExprID) string {
	var p tokenText
	p.src = f.Src
	ast.WalkExpr(&p, f, id)
	return strings.TrimSpace(p.sb.String())
}

type tokenText struct {
	ast.NopVisitor
	src ast.Source
	sb  strings.Builder
}

func (p *tokenText) Token(t *ast.Token, _ ast.Spacing) {
	p.sb.WriteString(p.src.Text(t.WS.Slice))
	p.sb.WriteString(p.src.Text(t.Text))
}

func diagnosticsSummary(bag *diag.Bag) string {
	parts := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		parts = append(parts, "["+d.Code.ID()+"] "+d.Message)
	}
	return strings.Join(parts, "; ")
}
