// Package config loads rustidy.toml.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"rustidy/internal/format"
)

// FileName is the name looked up in the start directory and its parents.
const FileName = "rustidy.toml"

// Config is the decoded rustidy.toml. Keys absent from the file keep their
// Default values.
type Config struct {
	IndentWidth   int         `toml:"indent_width"`
	UseTabs       bool        `toml:"use_tabs"`
	MaxBlankLines int         `toml:"max_blank_lines"`
	NewlineAtEOF  bool        `toml:"newline_at_eof"`
	MaxDepth      int         `toml:"max_depth"`
	Files         FilesConfig `toml:"files"`
	Cache         CacheConfig `toml:"cache"`

	// Path is the file the config came from; empty for built-in defaults.
	Path string `toml:"-"`
}

type FilesConfig struct {
	Extensions []string `toml:"extensions"`
	// Exclude holds path.Match patterns, tried against every run of
	// segments of the slash-separated path relative to the config directory.
	Exclude []string `toml:"exclude"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no rustidy.toml is found.
func Default() Config {
	opt := format.DefaultOptions()
	return Config{
		IndentWidth:   opt.IndentWidth,
		UseTabs:       opt.UseTabs,
		MaxBlankLines: opt.MaxBlankLines,
		NewlineAtEOF:  opt.NewlineAtEOF,
		MaxDepth:      256,
		Files:         FilesConfig{Extensions: []string{".rs"}},
		Cache:         CacheConfig{Enabled: true},
	}
}

// Find searches startDir and its parents for rustidy.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the rustidy.toml governing start, or Default when there is none.
func Discover(start string) (Config, error) {
	p, ok, err := Find(start)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(p)
}

// Load decodes and validates the config file at p.
func Load(p string) (Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", p, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", p, err)
	}
	cfg.Path = p
	return cfg, nil
}

// Parse decodes config text on top of Default.
func Parse(text string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.IndentWidth < 1 || c.IndentWidth > 16 {
		return fmt.Errorf("indent_width must be between 1 and 16, got %d", c.IndentWidth)
	}
	if c.MaxBlankLines < 0 {
		return fmt.Errorf("max_blank_lines must not be negative, got %d", c.MaxBlankLines)
	}
	if c.MaxDepth < 16 {
		return fmt.Errorf("max_depth must be at least 16, got %d", c.MaxDepth)
	}
	if len(c.Files.Extensions) == 0 {
		return fmt.Errorf("[files].extensions must not be empty")
	}
	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("[files].extensions: %q must start with a dot", ext)
		}
	}
	for _, pat := range c.Files.Exclude {
		if _, err := path.Match(pat, ""); err != nil {
			return fmt.Errorf("[files].exclude: bad pattern %q: %w", pat, err)
		}
	}
	return nil
}

// FormatOptions converts the layout keys for the formatter.
func (c Config) FormatOptions() format.Options {
	return format.Options{
		IndentWidth:   c.IndentWidth,
		UseTabs:       c.UseTabs,
		MaxBlankLines: c.MaxBlankLines,
		NewlineAtEOF:  c.NewlineAtEOF,
		MaxDepth:      c.MaxDepth,
	}
}

// Dir is the directory exclude patterns are relative to.
func (c Config) Dir() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// HasExtension reports whether p is a source file by its extension.
func (c Config) HasExtension(p string) bool {
	return slices.Contains(c.Files.Extensions, filepath.Ext(p))
}

// Excluded reports whether p matches any exclude pattern.
func (c Config) Excluded(p string) bool {
	if len(c.Files.Exclude) == 0 {
		return false
	}
	rel := p
	if dir := c.Dir(); dir != "" {
		if abs, err := filepath.Abs(p); err == nil {
			if r, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	parts := strings.Split(rel, "/")
	for _, pat := range c.Files.Exclude {
		// any run of segments may match: a directory name excludes
		// everything below it wherever it sits
		for i := range parts {
			for j := i + 1; j <= len(parts); j++ {
				if ok, _ := path.Match(pat, strings.Join(parts[i:j], "/")); ok {
					return true
				}
			}
		}
	}
	return false
}

// Fingerprint identifies everything that affects formatter output. Cached
// results are only valid under the same fingerprint.
func (c Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "v1 indent=%d tabs=%t blank=%d eof=%t depth=%d",
		c.IndentWidth, c.UseTabs, c.MaxBlankLines, c.NewlineAtEOF, c.MaxDepth)
	return hex.EncodeToString(h.Sum(nil)[:8])
}
