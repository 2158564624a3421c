package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.rs", []byte("version 1"), 0)
	id2 := fs.Add("test.rs", []byte("version 2"), 0)
	if id1 == id2 {
		t.Fatal("expected different FileID for second Add")
	}

	latestID, exists := fs.GetLatest("test.rs")
	if !exists || latestID != id2 {
		t.Fatalf("expected latest ID %d, got %d (exists=%v)", id2, latestID, exists)
	}
	if string(fs.Get(id1).Content) != "version 1" || string(fs.Get(id2).Content) != "version 2" {
		t.Fatal("both versions must stay addressable")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("a\r\nb\r\n"))
	file := fs.Get(id)

	if string(file.Content) != "a\nb\n" {
		t.Fatalf("virtual files are normalized too, got %q", file.Content)
	}
	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx %v, got %v", expected, file.LineIdx)
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if file.Flags&FileVirtual == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("unexpected flags %b", file.Flags)
	}
}

// TestResolveUTF8 проверяет разрешение позиций в UTF-8 тексте
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.rs", []byte("α\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("unexpected start %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 2}) {
		t.Errorf("unexpected end %+v", end)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("lines.rs", []byte("first\nsecond\nthird")))
	for i, want := range []string{"first", "second", "third", ""} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Errorf("line %d: want %q, got %q", i+1, want, got)
		}
	}
	if f.GetLine(0) != "" {
		t.Error("line 0 does not exist")
	}
}

func TestLoadBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("unexpected content %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected BOM and CRLF flags, got %b", file.Flags)
	}
	if _, err := fs.Load(filepath.Join(dir, "missing.rs")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatPath(t *testing.T) {
	f := &File{Path: "/work/src/lib.rs"}
	if got := f.FormatPath("basename", ""); got != "lib.rs" {
		t.Errorf("basename: got %q", got)
	}
	if got := f.FormatPath("relative", "/work"); got != "src/lib.rs" {
		t.Errorf("relative: got %q", got)
	}
	if got := f.FormatPath("unknown", ""); got != f.Path {
		t.Errorf("fallback: got %q", got)
	}
}
