package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"fn main() { println!(\"hi\"); }",
	"fn   main( )  {\nlet x=1+2 ;\n}",
	"pub(crate) fn id<T: Clone>(x: &T) -> T where T: Default,\n{\n    x.clone()\n}\n",
	"impl<T> Iterator for It<T> {\n  type Item = T;\n  fn next(&mut self) -> Option<T> {\n    self.inner\n      .next()\n      .map(|x| x)\n  }\n}\n",
	"enum E {\n    A, // first\n    B(u8),\n    C { x: u8 },\n}\n",
	"fn f(){if a{b}else if c{d}else{e}}",
	"fn f() { let s = S { a, b: 1, ..Default::default() }; }",
	"fn f() { 'outer: loop { break 'outer; } }",
	"fn f() { let g = async move { x.await? }; }",
	"use std::{\n    fmt,\n    io::{self, Write},\n};\n",
	"extern \"C\" {\n    fn abs(x: i32) -> i32;\n}\n",
	"fn f(a: u8, /* b */ c: u8) {}\n",
	"\ufefffn bom() {}\r\n",
}

// Inputs that fail to parse; the harnesses must still return promptly.
var brokenSeeds = []string{
	"fn f( {",
	"fn f() { let x = 1\nlet y = 2; }",
	"fn f() { { { { } } } ",
	"fn f() { a + }",
	"struct S { a: u8,, }",
	"fn f() { match x { 0 => } }",
	"/* unterminated",
	"\"unterminated string",
	"fn f() -> { }",
	"fn f() { if a { } else }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	for _, s := range brokenSeeds {
		f.Add([]byte(s))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
