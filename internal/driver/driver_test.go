package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"rustidy/internal/config"
	"rustidy/internal/format"
	"rustidy/internal/observ"
	"rustidy/internal/source"
)

const (
	messy = "fn   main( )  {\nlet x=1+2 ;\n}"
	tidy  = "fn main() {\n    let x = 1 + 2;\n}\n"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestCollectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/main.rs":         "",
		"src/lib.rs":          "",
		"src/notes.txt":       "",
		"target/debug/gen.rs": "",
		".git/hooks/x.rs":     "",
		"build.in":            "",
	})
	cfg := config.Default()
	cfg.Files.Exclude = []string{"target"}

	got, err := CollectFiles(context.Background(), []string{root, filepath.Join(root, "src", "lib.rs"), filepath.Join(root, "build.in")}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"build.in", "src/lib.rs", "src/main.rs"}
	if r := rel(t, root, got); !slices.Equal(r, want) {
		t.Fatalf("got %v, want %v", r, want)
	}

	if _, err := CollectFiles(context.Background(), []string{filepath.Join(root, "missing")}, cfg); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestFormatPathsWritesChangedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.rs": messy,
		"b.rs": tidy,
	})
	var mu sync.Mutex
	var events []Event
	timer := observ.NewTimer()
	opts := FormatOptions{
		Config: config.Default(),
		Jobs:   2,
		Timer:  timer,
		Progress: SinkFunc(func(ev Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}),
	}

	results, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	a, b := results[0], results[1]
	if a.Err != nil || !a.Changed || !a.Written {
		t.Fatalf("a.rs: %+v", a)
	}
	if b.Err != nil || b.Changed || b.Written {
		t.Fatalf("b.rs: %+v", b)
	}
	if got := readFile(t, filepath.Join(root, "a.rs")); got != tidy {
		t.Fatalf("a.rs on disk = %q", got)
	}

	var done int
	for _, ev := range events {
		if ev.File != "" && ev.Stage == StageFormat && ev.Status == StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Fatalf("done events = %d, want 2 (%v)", done, events)
	}
	if r := timer.Report(); len(r.Phases) != 3 {
		t.Fatalf("expected collect/load/format phases, got %+v", r.Phases)
	}
}

func TestFormatPathsCheckAndStdout(t *testing.T) {
	root := writeTree(t, map[string]string{"a.rs": messy})
	p := filepath.Join(root, "a.rs")

	results, err := FormatPaths(context.Background(), []string{p}, FormatOptions{Config: config.Default(), Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed || results[0].Written {
		t.Fatalf("check: %+v", results[0])
	}

	results, err = FormatPaths(context.Background(), []string{p}, FormatOptions{Config: config.Default(), Stdout: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(results[0].Formatted) != tidy || results[0].Written {
		t.Fatalf("stdout: %+v", results[0])
	}
	if got := readFile(t, p); got != messy {
		t.Fatalf("file must stay untouched, got %q", got)
	}
}

func TestFormatPathsFix(t *testing.T) {
	// CRLF survives the fix and the second formatting pass
	root := writeTree(t, map[string]string{"n.rs": "fn   cafe\u0301() {}\r\n"})
	p := filepath.Join(root, "n.rs")

	results, err := FormatPaths(context.Background(), []string{p}, FormatOptions{Config: config.Default(), Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Fixed != 0 || !results[0].Bag.HasWarnings() {
		t.Fatalf("without Fix: %+v", results[0])
	}

	results, err = FormatPaths(context.Background(), []string{p}, FormatOptions{Config: config.Default(), Fix: true})
	if err != nil {
		t.Fatal(err)
	}
	res := results[0]
	if res.Err != nil || res.Fixed != 1 || !res.Written || res.Bag.HasWarnings() {
		t.Fatalf("with Fix: %+v", res)
	}
	if got := readFile(t, p); got != "fn caf\u00e9() {}\r\n" {
		t.Fatalf("n.rs = %q", got)
	}
}

func TestFormatPathsReportsParseErrors(t *testing.T) {
	root := writeTree(t, map[string]string{"bad.rs": "fn f( {", "ok.rs": tidy})
	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Config: config.Default()})
	if err != nil {
		t.Fatal(err)
	}
	bad := results[0]
	if !errors.Is(bad.Err, format.ErrParse) || !bad.Bag.HasErrors() || bad.Files == nil {
		t.Fatalf("bad.rs: %+v", bad)
	}
	if got := readFile(t, filepath.Join(root, "bad.rs")); got != "fn f( {" {
		t.Fatalf("broken file must stay untouched")
	}
	if results[1].Err != nil {
		t.Fatalf("ok.rs: %v", results[1].Err)
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	root := writeTree(t, map[string]string{"readme.md": "# hi"})
	_, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Config: config.Default()})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestFormatPathsUsesCache(t *testing.T) {
	root := writeTree(t, map[string]string{"a.rs": messy, "b.rs": tidy})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := FormatOptions{Config: config.Default(), Cache: cache}

	first, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || first[1].Cached {
		t.Fatalf("cold cache must not hit: %+v", first)
	}

	second, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	// a.rs was rewritten and remembered, b.rs was already tidy
	for _, r := range second {
		if !r.Cached || r.Changed {
			t.Fatalf("%s: expected a cache hit, got %+v", r.Path, r)
		}
	}

	// another layout invalidates the entries
	opts.Config.IndentWidth = 2
	third, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached || !third[0].Changed {
		t.Fatalf("config change must bypass the cache: %+v", third[0])
	}
}

func TestFormatFilesCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.rs": messy})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FormatPaths(ctx, []string{root}, FormatOptions{Config: config.Default()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "rustidy"))
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("x.rs", []byte(tidy)))
	crlf := fs.Get(fs.AddVirtual("y.rs", []byte("fn main() {\r\n    let x = 1 + 2;\r\n}\r\n")))

	if cache.Known(f, "fp") {
		t.Fatalf("empty cache should not know anything")
	}
	if err := cache.Remember(f, "fp"); err != nil {
		t.Fatal(err)
	}
	if !cache.Known(f, "fp") {
		t.Fatalf("remembered file is unknown")
	}
	if cache.Known(f, "other") {
		t.Fatalf("fingerprint must be part of the key")
	}
	if cache.Known(crlf, "fp") {
		t.Fatalf("line endings must be part of the key")
	}

	var p DiskPayload
	ok, err := cache.Get(KeyFor(f, "fp"), &p)
	if err != nil || !ok || p.Schema != diskCacheSchemaVersion || p.Size != len(tidy) {
		t.Fatalf("Get = %v %v %+v", ok, err, p)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if cache.Known(f, "fp") {
		t.Fatalf("DropAll must forget entries")
	}
	if err := cache.Remember(f, "fp"); err != nil {
		t.Fatalf("cache must stay usable after DropAll: %v", err)
	}

	var nilCache *DiskCache
	if nilCache.Known(f, "fp") || nilCache.Remember(f, "fp") != nil {
		t.Fatalf("nil cache is a no-op")
	}
}

func TestFormatSource(t *testing.T) {
	res, err := FormatSource(context.Background(), "<stdin>", []byte(messy), config.Default(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Output) != tidy || !res.Changed {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = FormatSource(context.Background(), "<stdin>", []byte("fn f( {"), config.Default(), 0)
	if !errors.Is(err, format.ErrParse) || !res.Bag.HasErrors() {
		t.Fatalf("expected a parse error with diagnostics, got %v", err)
	}
}

func TestParseSourceAndCheckPaths(t *testing.T) {
	r := ParseSource(context.Background(), "x.rs", []byte("fn f() {}\n"), 0, 0)
	if r.Err != nil || r.Tree == nil || len(r.Tree.Items) != 1 {
		t.Fatalf("ParseSource: %+v", r)
	}
	r = ParseSource(context.Background(), "x.rs", []byte("fn f() {"), 0, 0)
	if r.Err == nil || r.Tree != nil || !r.Bag.HasErrors() {
		t.Fatalf("expected a parse failure: %+v", r)
	}

	root := writeTree(t, map[string]string{"a.rs": tidy, "b.rs": "struct"})
	fs, results, err := CheckPaths(context.Background(), []string{root}, CheckOptions{Config: config.Default()})
	if err != nil {
		t.Fatal(err)
	}
	if fs == nil || len(results) != 2 {
		t.Fatalf("unexpected results %v", results)
	}
	if results[0].Err != nil || results[1].Err == nil {
		t.Fatalf("a.rs should parse and b.rs should not: %v / %v", results[0].Err, results[1].Err)
	}
	if results[1].Files != fs {
		t.Fatalf("results must share the FileSet")
	}
}
