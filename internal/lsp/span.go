package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"rustidy/internal/source"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// utf16Units counts UTF-16 code units, the unit LSP positions are measured in.
func utf16Units(s []byte) uint32 {
	var units uint32
	for len(s) > 0 {
		r, size := utf8.DecodeRune(s)
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		s = s[size:]
	}
	return units
}

// positionForOffset maps a byte offset in the normalized content of file to
// an LSP position in the editor's text. A stripped BOM still occupies one
// unit at the start of the first line.
func positionForOffset(file *source.File, offset uint32) protocol.Position {
	if file == nil {
		return protocol.Position{}
	}
	contentLen := safeUint32(len(file.Content))
	if offset > contentLen {
		offset = contentLen
	}
	lineIdx := file.LineIdx
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if idx > 0 {
		lineStart = lineIdx[idx-1] + 1
	}
	if lineStart > offset {
		lineStart = offset
	}
	units := utf16Units(file.Content[lineStart:offset])
	if idx == 0 && file.Flags&source.FileHadBOM != 0 {
		units++
	}
	return protocol.Position{Line: safeUint32(idx), Character: units}
}

func rangeForSpan(file *source.File, span source.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: positionForOffset(file, uint32(span.Start)),
		End:   positionForOffset(file, uint32(span.End)),
	}
}

// wholeRange covers text from the first character to the end.
func wholeRange(text string) protocol.Range {
	var line uint32
	lastStart := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastStart = i + 1
		}
	}
	return protocol.Range{
		End: protocol.Position{Line: line, Character: utf16Units([]byte(text[lastStart:]))},
	}
}
