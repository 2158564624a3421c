package testkit

import (
	"context"
	"strings"
	"testing"

	"rustidy/internal/ast"
	"rustidy/internal/parser"
	"rustidy/internal/source"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("kit.rs", []byte(src))
	res := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})
	if res.Err != nil {
		t.Fatalf("parse: %v", res.Err)
	}
	return res.File
}

func TestInvariantsHoldOnParsedFile(t *testing.T) {
	f := parse(t, "// head\nfn main() {\n    let x = [1, 2, 3];\n    println!(\"{}\", x.len());\n}\n")
	if err := CheckRoundTrip(f); err != nil {
		t.Fatal(err)
	}
	if err := CheckTreeInvariants(f); err != nil {
		t.Fatal(err)
	}
}

func TestInvariantsCatchBrokenSpans(t *testing.T) {
	f := parse(t, "fn main() {}\n")
	fn := f.Items[0].(*ast.Fn)
	// pretend the name swallowed the following `(`
	fn.Name.Text.Span.End++

	if err := CheckTreeInvariants(f); err == nil || !strings.Contains(err.Error(), "previous leaf") {
		t.Fatalf("expected a tiling error, got %v", err)
	}
	if err := CheckRoundTrip(f); err == nil {
		t.Fatalf("expected a round trip error")
	}
}
