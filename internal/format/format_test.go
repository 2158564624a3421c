package format

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rustidy/internal/ast"
	"rustidy/internal/diag"
	"rustidy/internal/parser"
	"rustidy/internal/source"
	"rustidy/internal/testkit"
)

func parseText(t *testing.T, src string) *ast.File {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	res := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})
	if res.Err != nil {
		t.Fatalf("parse %q: %v", src, res.Err)
	}
	return res.File
}

func formatText(t *testing.T, src string, opt Options) string {
	t.Helper()
	return string(Format(parseText(t, src), opt))
}

func TestFormatLayout(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "spaces and indentation",
			src:  "fn   main( )  {\nlet x=1+2 ;\n}",
			want: "fn main() {\n    let x = 1 + 2;\n}\n",
		},
		{
			name: "one line block stays on one line",
			src:  "fn f(){ g( a,b ) }\n",
			want: "fn f() { g(a, b) }\n",
		},
		{
			name: "blank lines are capped",
			src:  "use a;\n\n\n\nuse b;\n",
			want: "use a;\n\nuse b;\n",
		},
		{
			name: "items on one line are split",
			src:  "struct A; struct B;",
			want: "struct A;\nstruct B;\n",
		},
		{
			name: "comments are kept",
			src:  "// head\nfn f() {\n  a(); // trailing\n\n  /* own line */\n  b();\n    // before close\n}\n",
			want: "// head\nfn f() {\n    a(); // trailing\n\n    /* own line */\n    b();\n    // before close\n}\n",
		},
		{
			name: "leading blank lines dropped",
			src:  "\n\n\nfn f() {}\n\n\n",
			want: "fn f() {}\n",
		},
		{
			name: "no blank line after an opening brace",
			src:  "fn f() {\n\n\n    a();\n}\n",
			want: "fn f() {\n    a();\n}\n",
		},
		{
			name: "nested generics stay glued",
			src:  "type T = Vec<Vec<u8>>;\n",
			want: "type T = Vec<Vec<u8>>;\n",
		},
		{
			name: "ranges are tight",
			src:  "fn f() { for i in 0 .. n {} }\n",
			want: "fn f() { for i in 0..n {} }\n",
		},
		{
			name: "macro bodies are verbatim",
			src:  "fn f() {\n  m!( a ,  b );\n}\n",
			want: "fn f() {\n    m!( a ,  b );\n}\n",
		},
		{
			name: "struct fields",
			src:  "struct P {\nx:i32,\n  pub y : i32,\n}\n",
			want: "struct P {\n    x: i32,\n    pub y: i32,\n}\n",
		},
		{
			name: "empty file",
			src:  "",
			want: "",
		},
		{
			name: "comment only",
			src:  "\n\n// just this",
			want: "// just this\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatText(t, tt.src, DefaultOptions()); got != tt.want {
				t.Fatalf("unexpected output\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	src := "fn f() {\na();\n\n\n\nb();\n}"

	opt := DefaultOptions()
	opt.UseTabs = true
	opt.MaxBlankLines = 2
	opt.NewlineAtEOF = false
	want := "fn f() {\n\ta();\n\n\n\tb();\n}"
	if got := formatText(t, src, opt); got != want {
		t.Fatalf("tabs\nwant: %q\ngot:  %q", want, got)
	}

	opt = DefaultOptions()
	opt.IndentWidth = 2
	opt.MaxBlankLines = 0
	want = "fn f() {\n  a();\n  b();\n}\n"
	if got := formatText(t, src, opt); got != want {
		t.Fatalf("two spaces\nwant: %q\ngot:  %q", want, got)
	}
}

var idempotenceSeeds = []string{
	"fn main() { println!(\"hi\"); }",
	"pub(crate) fn id<T: Clone>(x: &T) -> T where T: Default,\n{\n    x.clone()\n}\n",
	"impl<T> Iterator for It<T> {\n  type Item = T;\n  fn next(&mut self) -> Option<T> {\n    self.inner\n      .next()\n      .map(|x| x)\n  }\n}\n",
	"fn f() {\n    let v = vec![1, 2, 3];\n    match v.len() {\n        0 => {}\n        n if n > 2 =>\n            println!(\"{}\", n),\n        _ => (),\n    }\n}\n",
	"fn f() -> u32 {\n    let a = 1\n        + 2\n        + 3;\n    a /* inline */ + 1\n}\n",
	"enum E {\n    A, // first\n    B(u8),\n    C { x: u8 },\n}\n",
	"#[cfg(test)]\nmod tests {\n    use super::*;\n\n    #[test]\n    fn works() {\n        assert_eq!(1 .max(2), 2);\n    }\n}\n",
	"fn f(){if a{b}else if c{d}else{e}}",
	"fn f() { let s = S { a, b: 1, ..Default::default() }; }",
	"fn f() {\n    let x = (\n        1,\n        2,\n    );\n}\n",
	"const X: [u8; 3] = [\n    1, 2,\n    3,\n];\n",
	"fn f() { 'outer: loop { break 'outer; } }",
	"fn f() { let g = async move { x.await? }; }",
	"use std::{\n    fmt,\n    io::{self, Write},\n};\n",
	"trait T: Send + Sync { fn f(&self) -> u8 { 0 } }\n",
	"extern \"C\" {\n    fn abs(x: i32) -> i32;\n}\n",
	"fn f() {\n    a\n    // trailing comment in block\n}\n",
	"fn f(a: u8, /* b */ c: u8) {}\n",
}

func TestFormatIsIdempotent(t *testing.T) {
	for _, seed := range idempotenceSeeds {
		t.Run(firstLine(seed), func(t *testing.T) {
			once := formatText(t, seed, DefaultOptions())
			twice := formatText(t, once, DefaultOptions())
			if once != twice {
				t.Fatalf("formatting is not idempotent\nfirst:  %q\nsecond: %q", once, twice)
			}
		})
	}
}

func TestFormatKeepsTokens(t *testing.T) {
	for _, seed := range idempotenceSeeds {
		t.Run(firstLine(seed), func(t *testing.T) {
			before := parseText(t, seed)
			orig := Tokens(before)
			out := Format(before, DefaultOptions())
			if err := testkit.CheckTreeInvariants(before); err != nil {
				t.Fatalf("formatted tree: %v", err)
			}
			after := parseText(t, string(out))
			if err := testkit.CheckRoundTrip(after); err != nil {
				t.Fatal(err)
			}
			if err := compareTokens(orig, Tokens(after)); err != nil {
				t.Fatalf("%v\noutput: %q", err, out)
			}
		})
	}
}

func TestCheckTokensReportsDifference(t *testing.T) {
	err := CheckTokens(parseText(t, "fn f() { a + b }"), parseText(t, "fn f() { a - b }"))
	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("expected a mismatch, got %v", err)
	}
	if mm.Before.Text != "+" || mm.After.Text != "-" {
		t.Fatalf("unexpected mismatch: %v", mm)
	}

	err = CheckTokens(parseText(t, "fn f() {} // c"), parseText(t, "fn f() {}"))
	if !errors.As(err, &mm) || mm.After != nil || !mm.Before.Comment {
		t.Fatalf("expected the lost comment to be reported, got %v", err)
	}
}

func TestFormatFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("crlf.rs", []byte("fn f(){\r\na();\r\n}\r\n"))
	bag := diag.NewBag(0)
	res, err := FormatFile(context.Background(), fs.Get(id), DefaultOptions(), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("FormatFile: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected a change")
	}
	if want := "fn f() {\r\n    a();\r\n}\r\n"; string(res.Output) != want {
		t.Fatalf("output %q, want %q", res.Output, want)
	}

	id = fs.AddVirtual("clean.rs", res.Output)
	res, err = FormatFile(context.Background(), fs.Get(id), DefaultOptions(), nil)
	if err != nil || res.Changed {
		t.Fatalf("formatted file should be stable: changed=%v err=%v", res.Changed, err)
	}

	id = fs.AddVirtual("broken.rs", []byte("fn f( {"))
	_, err = FormatFile(context.Background(), fs.Get(id), DefaultOptions(), diag.BagReporter{Bag: bag})
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !bag.HasErrors() {
		t.Fatalf("parse failure should be reported")
	}
}

func TestLintIdents(t *testing.T) {
	// "e" followed by a combining acute accent
	src := "fn cafe\u0301() {}\nfn ok() {}\n"
	bag := diag.NewBag(0)
	if n := LintIdents(parseText(t, src), diag.BagReporter{Bag: bag}); n != 1 {
		t.Fatalf("warnings = %d, want 1", n)
	}
	d := bag.Items()[0]
	if d.Code != diag.FmtIdentNotNFC || d.Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "caf\u00e9" {
		t.Fatalf("unexpected fix %+v", d.Fixes)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
