package lsp

import (
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// applyChanges replays didChange events on text. Whole-document events
// replace it, ranged ones splice it.
func applyChanges(text string, changes []any) string {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start := offsetForPosition(text, c.Range.Start)
			end := offsetForPosition(text, c.Range.End)
			if end < start {
				end = start
			}
			text = text[:start] + c.Text + text[end:]
		}
	}
	return text
}

// offsetForPosition converts an LSP position into a byte offset of text,
// clamping to the end of the line or of the text.
func offsetForPosition(text string, pos protocol.Position) int {
	var line uint32
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return len(text)
	}
	var units uint32
	for i < len(text) && units < pos.Character {
		if text[i] == '\n' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		need := uint32(1)
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}
