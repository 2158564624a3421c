package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"rustidy/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a path relative to the FileSet base directory when the
	// file lies below it, and the path as given otherwise.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode reads the --path-mode flag value.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PathModeAuto, nil
	case "absolute", "abs":
		return PathModeAbsolute, nil
	case "relative", "rel":
		return PathModeRelative, nil
	case "basename", "base":
		return PathModeBasename, nil
	}
	return PathModeAuto, fmt.Errorf("invalid path mode %q (expected auto|absolute|relative|basename)", s)
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Context is the number of source lines shown above the primary line.
	Context   int
	PathMode  PathMode
	ShowNotes bool
	ShowFixes bool
	// ShowPreview prints before/after lines for every fix edit.
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

func displayPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	}
	if f.Flags&source.FileVirtual != 0 || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	rel := f.FormatPath("relative", fs.BaseDir())
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return f.Path
	}
	return rel
}
