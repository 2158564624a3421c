package source

import (
	"path/filepath"
	"slices"
)

// Normalize strips a UTF-8 BOM and converts CRLF line endings to LF,
// reporting what was changed.
func Normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// Restore re-applies the BOM and CRLF endings recorded in flags.
func Restore(content []byte, flags FileFlags) []byte {
	if flags&FileNormalizedCRLF != 0 {
		out := make([]byte, 0, len(content)+len(content)/16)
		for _, b := range content {
			if b == '\n' {
				out = append(out, '\r')
			}
			out = append(out, b)
		}
		content = out
	}
	if flags&FileHadBOM != 0 {
		content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
	}
	return content
}

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
// Возвращает новый слайс и флаг: были ли замены (true, если хотя бы одна).
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: находим количество переводов строки строго до off
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := lo // 0-based
	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
