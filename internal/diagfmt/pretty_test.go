package diagfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"rustidy/internal/diag"
	"rustidy/internal/parser"
	"rustidy/internal/source"
)

func singleBag(d diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag
}

func TestPrettyLayout(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/src/test.rs", []byte("fn f( {\n"))
	fs.SetBaseDir("/home/user/project")

	bag := singleBag(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SynUnclosedDelimiter,
		Message:  "unclosed delimiter",
		Primary:  source.Span{File: fileID, Start: 4, End: 5},
	})

	tests := []struct {
		name string
		mode PathMode
		path string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.rs"},
		{"relative", PathModeRelative, "src/test.rs"},
		{"basename", PathModeBasename, "test.rs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			want := tt.path + ":1:5: ERROR SYN2002: unclosed delimiter\n" +
				"1 | fn f( {\n" +
				"  |     ^\n"
			if buf.String() != want {
				t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", want, buf.String())
			}
		})
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.rs", []byte("x\n"))
	bag := singleBag(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.FmtIdentNotNFC, Message: "m", Primary: source.Span{File: fileID, Start: 0, End: 1}})

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes: %q", colored.String())
	}
}

func TestPrettyContextAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := "fn f() {\n    g();\n    let s = \"日本\"; x\n}\n"
	fileID := fs.AddVirtual("w.rs", []byte(content))
	off := strings.Index(content, "x\n")
	bag := singleBag(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SynExpected,
		Message:  "expected `;`",
		Primary:  source.Span{File: fileID, Start: source.Pos(off), End: source.Pos(off + 1)},
	})

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, one context line, the line and a marker:\n%s", buf.String())
	}
	if lines[1] != "2 |     g();" {
		t.Fatalf("context line = %q", lines[1])
	}
	// `    let s = "` is 13 columns, the two CJK runes take 4, `"; ` 3 more
	if want := "  | " + strings.Repeat(" ", 20) + "^"; lines[3] != want {
		t.Fatalf("marker line\nwant %q\ngot  %q", want, lines[3])
	}
}

func TestPrettyNotesFixesAndPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let a = 42 // missing semicolon")
	fileID := fs.AddVirtual("test.rs", content)

	insertSpan := source.Span{File: fileID, Start: 10, End: 10}
	d := diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.SynExpected,
		Message:  "missing semicolon",
		Primary:  source.Span{File: fileID, Start: 4, End: 5},
		Notes:    []diag.Note{{Span: source.Span{File: fileID, Start: 11, End: 13}, Msg: "comment starts here"}},
		Fixes:    []diag.Fix{{Title: "insert semicolon", Edits: []diag.FixEdit{{Span: insertSpan, NewText: ";"}}}},
	}

	var buf bytes.Buffer
	Pretty(&buf, singleBag(d), fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true, ShowPreview: true})
	output := buf.String()
	for _, want := range []string{
		"note: test.rs:1:12: comment starts here",
		"fix #1: insert semicolon",
		"apply=\";\"",
		"preview:",
		"- let a = 42 // missing semicolon",
		"+ let a = 42; // missing semicolon",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output lacks %q:\n%s", want, output)
		}
	}
}

func TestPrettyReportsDropped(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.rs", []byte("x\n"))
	bag := diag.NewBag(1)
	for range 3 {
		bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.SynExpected, Message: "m", Primary: source.Span{File: fileID}})
	}
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if !strings.Contains(buf.String(), "and 2 more diagnostics") {
		t.Fatalf("dropped count missing:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("n.rs", []byte("fn cafe() {}\n"))
	d := diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.FmtIdentNotNFC,
		Message:  "identifier is not in NFC",
		Primary:  source.Span{File: fileID, Start: 3, End: 7},
		Fixes:    []diag.Fix{{Title: "normalize", Edits: []diag.FixEdit{{Span: source.Span{File: fileID, Start: 3, End: 7}, NewText: "café"}}}},
	}
	bag := diag.NewBag(0)
	bag.Add(d)
	bag.Add(d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeFixes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d", out.Count, out.Dropped)
	}
	got := out.Diagnostics[0]
	if got.Severity != "warning" || got.Code != "FMT4001" || got.Location.File != "n.rs" {
		t.Fatalf("unexpected diagnostic %+v", got)
	}
	if got.Location.StartLine != 1 || got.Location.StartCol != 4 || got.Location.EndCol != 8 {
		t.Fatalf("unexpected location %+v", got.Location)
	}
	if len(got.Fixes) != 1 || got.Fixes[0].Edits[0].OldText != "cafe" || got.Fixes[0].Edits[0].NewText != "café" {
		t.Fatalf("unexpected fixes %+v", got.Fixes)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "abs": PathModeAbsolute, "relative": PathModeRelative, "BASENAME": PathModeBasename} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("full"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestTreeDump(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.rs", []byte("fn main() { a + b; }\n"))
	res := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}

	root := BuildTree(res.File, fs)
	if got := TreeKinds(root); got != "File Fn Block ExprStmt Binary" {
		t.Fatalf("kinds = %q", got)
	}

	var buf bytes.Buffer
	if err := FormatTreePretty(&buf, res.File, fs); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"main.rs (1 items)\n", "└─ Fn 1:1\n", "├─ keyword \"fn\" 1:1\n", "punct \"+\" 1:15"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("tree lacks %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := FormatTreeJSON(&buf, res.File, fs); err != nil {
		t.Fatal(err)
	}
	var decoded TreeNode
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != "File" || len(decoded.Children) != 1 || decoded.Children[0].Kind != "Fn" {
		t.Fatalf("unexpected json tree %+v", decoded)
	}
	if fn := decoded.Children[0]; fn.Span.Start != 0 || fn.Span.End != 20 {
		t.Fatalf("fn span = %+v", fn.Span)
	}
}

func TestFixPreviewCutsTouchedLines(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("p.rs", []byte("fn a() {}\nfn cafe() {}\nfn b() {}\n"))
	span := func(start, end source.Pos) source.Span { return source.Span{File: fileID, Start: start, End: end} }

	preview, err := buildFixPreview(fs, diag.FmtIdentNotNFC, diag.Fix{
		Title: "rename",
		Edits: []diag.FixEdit{{Span: span(13, 17), NewText: "tea"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(preview.before, "|") != "fn cafe() {}" || strings.Join(preview.after, "|") != "fn tea() {}" {
		t.Fatalf("preview = %+v", preview)
	}

	// правка с переводом строки растягивает after
	preview, err = buildFixPreview(fs, diag.FmtInfo, diag.Fix{
		Title: "split",
		Edits: []diag.FixEdit{{Span: span(9, 9), NewText: "\n"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.before) != 1 || len(preview.after) != 2 {
		t.Fatalf("preview = %+v", preview)
	}

	if _, err := buildFixPreview(fs, diag.FmtInfo, diag.Fix{Title: "bad", Edits: []diag.FixEdit{{Span: span(90, 99)}}}); err == nil {
		t.Fatal("out of range fix has no preview")
	}
}
