package lsp

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// uriToPath maps a file:// URI to an absolute local path. Buffers with other
// schemes (untitled:, git:) have no path and get "".
func uriToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || uri == "" {
		return ""
	}
	var p string
	switch parsed.Scheme {
	case "file":
		// url.Parse уже декодировал %20 и прочее
		p = parsed.Path
		if runtime.GOOS == "windows" {
			// file:///C:/x -> C:/x
			p = strings.TrimPrefix(p, "/")
		}
	case "":
		p = uri
	default:
		return ""
	}
	p = filepath.FromSlash(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

// startDir is the directory config discovery starts from for path: the path
// itself for directories, its parent otherwise.
func startDir(path string) string {
	switch info, err := os.Stat(path); {
	case path == "":
		return ""
	case err == nil && info.IsDir():
		return path
	default:
		return filepath.Dir(path)
	}
}
