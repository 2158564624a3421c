package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"rustidy/internal/config"
)

// ErrNoFiles is returned when the given paths contain nothing to format.
var ErrNoFiles = errors.New("no source files found")

// CollectFiles expands paths into a sorted, de-duplicated list of source
// files. Directories are walked recursively and filtered by the configured
// extensions; files named explicitly are always taken. Exclude patterns
// apply to both.
func CollectFiles(ctx context.Context, paths []string, cfg config.Config) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !cfg.Excluded(p) {
				addFile(p)
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				// skip hidden directories (.git, .cargo) but not the root itself
				if path != p && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				if path != p && cfg.Excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if cfg.HasExtension(path) && !cfg.Excluded(path) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
