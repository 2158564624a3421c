package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultsAndOverrides(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IndentWidth != 4 || cfg.UseTabs || cfg.MaxBlankLines != 1 || !cfg.NewlineAtEOF || cfg.MaxDepth != 256 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Cache.Enabled || len(cfg.Files.Extensions) != 1 || cfg.Files.Extensions[0] != ".rs" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg, err = Parse(`
indent_width = 2
use_tabs = true
max_blank_lines = 0

[files]
exclude = ["target", "*_generated.rs"]

[cache]
enabled = false
`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IndentWidth != 2 || !cfg.UseTabs || cfg.MaxBlankLines != 0 || cfg.Cache.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// untouched keys keep their defaults
	if !cfg.NewlineAtEOF || cfg.Files.Extensions[0] != ".rs" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	opt := cfg.FormatOptions()
	if opt.IndentWidth != 2 || !opt.UseTabs || opt.MaxDepth != 256 {
		t.Fatalf("unexpected format options: %+v", opt)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown key", "colour = true\n", "unknown keys: colour"},
		{"unknown nested key", "[files]\ninclude = []\n", "unknown keys: files.include"},
		{"bad toml", "indent_width = \n", "failed to parse TOML"},
		{"indent range", "indent_width = 0\n", "indent_width must be between 1 and 16"},
		{"blank lines", "max_blank_lines = -1\n", "max_blank_lines must not be negative"},
		{"depth", "max_depth = 3\n", "max_depth must be at least 16"},
		{"no extensions", "[files]\nextensions = []\n", "must not be empty"},
		{"extension dot", "[files]\nextensions = [\"rs\"]\n", "must start with a dot"},
		{"bad glob", "[files]\nexclude = [\"[\"]\n", "bad pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestFindSearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "crate", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(root, FileName)
	if err := os.WriteFile(cfgPath, []byte("indent_width = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "lib.rs")
	if err := os.WriteFile(file, []byte("fn f() {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(file)
	if err != nil || !ok {
		t.Fatalf("Find: %v %v", ok, err)
	}
	if got != cfgPath {
		t.Fatalf("found %q, want %q", got, cfgPath)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IndentWidth != 8 || cfg.Path != cfgPath || cfg.Dir() != root {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadReportsPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(p, []byte("tabs = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if err == nil || !strings.HasPrefix(err.Error(), p+":") {
		t.Fatalf("expected error prefixed with the path, got %v", err)
	}
}

func TestExcluded(t *testing.T) {
	cfg := Default()
	cfg.Files.Exclude = []string{"target", "*_generated.rs", "vendor/*/build.rs"}
	tests := []struct {
		path string
		want bool
	}{
		{"src/lib.rs", false},
		{"target/debug/x.rs", true},
		{"crates/a/target/x.rs", true},
		{"src/proto_generated.rs", true},
		{"vendor/dep/build.rs", true},
		{"vendor/dep/src/lib.rs", false},
	}
	for _, tt := range tests {
		if got := cfg.Excluded(tt.path); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !cfg.HasExtension("a/b.rs") || cfg.HasExtension("a/b.go") {
		t.Errorf("HasExtension is wrong")
	}
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	b.Files.Exclude = []string{"target"}
	b.Cache.Enabled = false
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("file selection must not change the fingerprint")
	}
	b.IndentWidth = 2
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("indent width must change the fingerprint")
	}
	if len(a.Fingerprint()) != 16 {
		t.Fatalf("unexpected fingerprint %q", a.Fingerprint())
	}
}
