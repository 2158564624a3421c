package diagfmt

import (
	"bytes"
	"errors"
	"strings"

	"rustidy/internal/diag"
	"rustidy/internal/fix"
	"rustidy/internal/source"
)

// fixPreview holds the lines a fix touches, before and after applying it.
type fixPreview struct {
	before []string
	after  []string
}

// buildFixPreview applies f the same way `fmt --fix` would and cuts out the
// affected lines of both texts.
func buildFixPreview(fs *source.FileSet, code diag.Code, f diag.Fix) (fixPreview, error) {
	if fs == nil || len(f.Edits) == 0 {
		return fixPreview{}, errors.New("nothing to preview")
	}
	file := fs.Get(f.Edits[0].Span.File)
	res := fix.Apply(file, []diag.Diagnostic{{Code: code, Primary: f.Edits[0].Span, Fixes: []diag.Fix{f}}})
	if !res.Changed() {
		if len(res.Skipped) > 0 {
			return fixPreview{}, errors.New(res.Skipped[0].Reason)
		}
		return fixPreview{}, errors.New("fix changes nothing")
	}

	cover, _ := f.Covering()
	// правки не выходят за [from, to), так что хвост сдвигается ровно на delta
	from := lineStart(file.Content, int(cover.Start))
	to := lineEnd(file.Content, int(cover.End))
	delta := len(res.Content) - len(file.Content)
	return fixPreview{
		before: splitPreviewLines(file.Content[from:to]),
		after:  splitPreviewLines(res.Content[from : to+delta]),
	}, nil
}

func lineStart(content []byte, off int) int {
	return bytes.LastIndexByte(content[:off], '\n') + 1
}

func lineEnd(content []byte, off int) int {
	if i := bytes.IndexByte(content[off:], '\n'); i >= 0 {
		return off + i + 1
	}
	return len(content)
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// завершающий \n не порождает пустую строку
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
