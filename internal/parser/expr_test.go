package parser

import (
	"strings"
	"testing"

	"rustidy/internal/ast"
)

func binaryOf(t *testing.T, f *ast.File, e ast.Expr) *ast.Binary {
	t.Helper()
	b, ok := e.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary, got %T", e)
	}
	return b
}

func opText(f *ast.File, b *ast.Binary) string { return f.Src.Text(b.Op.Op.Text) }

func TestLazyBooleanIsOneOperator(t *testing.T) {
	f := mustParse(t, "fn f() { a && b; }")
	b := binaryOf(t, f, stmtExprOf(t, f, 0))
	if got := opText(f, b); got != "&&" {
		t.Fatalf("operator = %q, want &&", got)
	}
	if exprText(f, b.Lhs) != "a" || exprText(f, b.Rhs) != "b" {
		t.Fatalf("operands = %q, %q", exprText(f, b.Lhs), exprText(f, b.Rhs))
	}
}

func TestPrecedenceAndAssociativity(t *testing.T) {
	tests := []struct {
		src string
		op  string
		lhs string
		rhs string
	}{
		{"fn f() { 1 + 2 * 3; }", "+", "1", "2 * 3"},
		{"fn f() { 1 * 2 + 3; }", "+", "1 * 2", "3"},
		{"fn f() { a - b - c; }", "-", "a - b", "c"},
		{"fn f() { a = b = c; }", "=", "a", "b = c"},
		{"fn f() { a += b + 1; }", "+=", "a", "b + 1"},
		{"fn f() { a || b && c; }", "||", "a", "b && c"},
		{"fn f() { a == b && c < d; }", "&&", "a == b", "c < d"},
		{"fn f() { a | b ^ c & d; }", "|", "a", "b ^ c & d"},
		{"fn f() { x << 1 + 2; }", "<<", "x", "1 + 2"},
		{"fn f() { -a * b; }", "*", "-a", "b"},
		{"fn f() { a as u8 + 1; }", "+", "a as u8", "1"},
		{"fn f() { a.b() + c?; }", "+", "a.b()", "c?"},
		{"fn f() { a..b + 1; }", "..", "a", "b + 1"},
		{"fn f() { x = ..a + 1; }", "=", "x", "..a + 1"},
		{"fn f() { x = a + b..; }", "=", "x", "a + b.."},
		{"fn f() { ..a = b; }", "=", "..a", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f := mustParse(t, tt.src)
			b := binaryOf(t, f, stmtExprOf(t, f, 0))
			if got := opText(f, b); got != tt.op {
				t.Fatalf("operator = %q, want %q", got, tt.op)
			}
			if got := exprText(f, b.Lhs); got != tt.lhs {
				t.Errorf("lhs = %q, want %q", got, tt.lhs)
			}
			if got := exprText(f, b.Rhs); got != tt.rhs {
				t.Errorf("rhs = %q, want %q", got, tt.rhs)
			}
		})
	}
}

func TestStructLiteralRestriction(t *testing.T) {
	f := mustParse(t, "fn f() { if a {} }")
	ifExpr, ok := stmtExprOf(t, f, 0).(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If")
	}
	if _, ok := ifExpr.Cond.Get(f.Arena).(*ast.PathExpr); !ok {
		t.Fatalf("condition is %T, want a path", ifExpr.Cond.Get(f.Arena))
	}

	f = mustParse(t, "fn f() { let x = A {}; }")
	if _, ok := stmtExprOf(t, f, 0).(*ast.StructLit); !ok {
		t.Fatalf("initializer is %T, want a struct literal", stmtExprOf(t, f, 0))
	}

	// inside parentheses the restriction is lifted
	f = mustParse(t, "fn f() { if (A {}) == b {} }")
	ifExpr = stmtExprOf(t, f, 0).(*ast.If)
	cond := binaryOf(t, f, ifExpr.Cond.Get(f.Arena))
	paren, ok := cond.Lhs.Get(f.Arena).(*ast.Paren)
	if !ok {
		t.Fatalf("lhs is %T, want parentheses", cond.Lhs.Get(f.Arena))
	}
	if _, ok := paren.Inner.Get(f.Arena).(*ast.StructLit); !ok {
		t.Fatalf("parenthesized expr is %T, want a struct literal", paren.Inner.Get(f.Arena))
	}
}

func TestRangeBeforeBlock(t *testing.T) {
	f := mustParse(t, "fn f() { for x in 0.. {} }")
	loop, ok := stmtExprOf(t, f, 0).(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", stmtExprOf(t, f, 0))
	}
	if _, ok := loop.Iter.Get(f.Arena).(*ast.RangeFrom); !ok {
		t.Fatalf("iterator is %T, want an open range", loop.Iter.Get(f.Arena))
	}
	if len(loop.Body.Stmts) != 0 {
		t.Fatalf("body should be empty")
	}
}

func TestLetChains(t *testing.T) {
	f := mustParse(t, "fn f() { if let Some(x) = a && b {} }")
	ifExpr := stmtExprOf(t, f, 0).(*ast.If)
	cond := binaryOf(t, f, ifExpr.Cond.Get(f.Arena))
	if opText(f, cond) != "&&" {
		t.Fatalf("operator = %q", opText(f, cond))
	}
	let, ok := cond.Lhs.Get(f.Arena).(*ast.Let)
	if !ok {
		t.Fatalf("lhs is %T, want let", cond.Lhs.Get(f.Arena))
	}
	if exprText(f, let.Value) != "a" {
		t.Fatalf("let value = %q, want a", exprText(f, let.Value))
	}

	mustFail(t, "fn f() { let x = let y = 1; }")
}

func TestBlockLikeStatements(t *testing.T) {
	f := mustParse(t, "fn f() { if c {} -1 }")
	if n := len(fnBody(t, f)); n != 2 {
		t.Fatalf("got %d statements, want 2", n)
	}

	f = mustParse(t, "fn f() { match x {}.len(); }")
	stmts := fnBody(t, f)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	if _, ok := stmtExprOf(t, f, 0).(*ast.MethodCall); !ok {
		t.Fatalf("statement is %T, want a method call", stmtExprOf(t, f, 0))
	}

	// a block-like expression in let position keeps going
	f = mustParse(t, "fn f() { let x = if c { 1 } else { 2 } + 3; }")
	if _, ok := stmtExprOf(t, f, 0).(*ast.Binary); !ok {
		t.Fatalf("initializer is %T, want a binary", stmtExprOf(t, f, 0))
	}
}

func TestTupleIndexChain(t *testing.T) {
	f := mustParse(t, "fn f() { t.0.1; }")
	outer, ok := stmtExprOf(t, f, 0).(*ast.Field)
	if !ok {
		t.Fatalf("expected *ast.Field, got %T", stmtExprOf(t, f, 0))
	}
	if got := f.Src.Text(outer.Name.Text); got != "1" {
		t.Fatalf("outer index = %q, want 1", got)
	}
	inner, ok := outer.Recv.Get(f.Arena).(*ast.Field)
	if !ok || f.Src.Text(inner.Name.Text) != "0" {
		t.Fatalf("inner is %T", outer.Recv.Get(f.Arena))
	}
}

func TestClosureBodies(t *testing.T) {
	f := mustParse(t, "fn f() { let g = |x| x + 1; }")
	cl, ok := stmtExprOf(t, f, 0).(*ast.Closure)
	if !ok {
		t.Fatalf("expected closure, got %T", stmtExprOf(t, f, 0))
	}
	if exprText(f, cl.Body) != "x + 1" {
		t.Fatalf("body = %q", exprText(f, cl.Body))
	}

	mustFail(t, "fn f() { let g = || -> u8 1; }")
}

func TestRangeBindsLoosely(t *testing.T) {
	tests := []struct {
		src     string
		op      string
		operand string
	}{
		{"fn f() { a + b..; }", "..", "a + b"},
		{"fn f() { a || b..; }", "..", "a || b"},
		{"fn f() { -a..; }", "..", "-a"},
		{"fn f() { ..a + b; }", "..", "a + b"},
		{"fn f() { ..=a * b; }", "..=", "a * b"},
		{"fn f() { ..a || b; }", "..", "a || b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f := mustParse(t, tt.src)
			var op ast.Token
			var operand ast.ExprID
			switch e := stmtExprOf(t, f, 0).(type) {
			case *ast.RangeFrom:
				op, operand = e.Op, e.Start
			case *ast.Unary:
				op, operand = e.Op.Op, e.Operand
			default:
				t.Fatalf("expression is %T, want a range", e)
			}
			if got := f.Src.Text(op.Text); got != tt.op {
				t.Fatalf("operator = %q, want %q", got, tt.op)
			}
			if got := exprText(f, operand); got != tt.operand {
				t.Fatalf("operand = %q, want %q", got, tt.operand)
			}
		})
	}
}

// Arena generations count every node ever built, discarded lookaheads
// included, so they grow with the input only if no input is parsed twice.
func TestNestedLookaheadIsLinear(t *testing.T) {
	nests := map[string]func(n int) string{
		"range infix": func(n int) string {
			return strings.Repeat("x..(", n) + "x" + strings.Repeat(")", n) + ";"
		},
		"range prefix": func(n int) string {
			return strings.Repeat("..(", n) + "x" + strings.Repeat(")", n) + ";"
		},
		"block field": func(n int) string {
			return strings.Repeat("{ ", n) + "x" + strings.Repeat(" }.a;", n)
		},
		"unsafe try": func(n int) string {
			return strings.Repeat("unsafe { ", n) + "x" + strings.Repeat(" }?;", n)
		},
		"if method": func(n int) string {
			return strings.Repeat("if c { ", n) + "x" + strings.Repeat(" }.m();", n)
		},
	}
	built := func(t *testing.T, body string) uint64 {
		t.Helper()
		f := mustParse(t, "fn f() { "+body+" }")
		return uint64(f.Arena.Mark())
	}
	for name, nest := range nests {
		t.Run(name, func(t *testing.T) {
			shallow, deep := built(t, nest(12)), built(t, nest(24))
			if deep > 3*shallow {
				t.Fatalf("depth 12 built %d nodes, depth 24 built %d", shallow, deep)
			}
		})
	}
}
