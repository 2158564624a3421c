package ast

import (
	"strings"

	"rustidy/internal/source"
)

type TokenKind uint8

const (
	TokPunct TokenKind = iota
	TokKeyword
	TokIdent
	TokLifetime
	TokLiteral
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokPunct:
		return "punct"
	case TokKeyword:
		return "keyword"
	case TokIdent:
		return "ident"
	case TokLifetime:
		return "lifetime"
	case TokLiteral:
		return "literal"
	case TokEOF:
		return "eof"
	default:
		return "token?"
	}
}

// Whitespace is the run of spaces, newlines and comments before a token.
// It is the only leaf the formatter rewrites.
type Whitespace struct {
	Slice source.Slice
}

// Token is a leaf: leading whitespace plus the token text itself.
type Token struct {
	WS   Whitespace
	Kind TokenKind
	Text source.Slice
}

// Span is the span of the token text, whitespace excluded.
func (t Token) Span() source.Span { return t.Text.Span }

// IsValid reports whether the token was actually parsed.
func (t *Token) IsValid() bool { return t != nil }

// Source resolves slices of one parsed file.
type Source struct {
	File *source.File
	Repl *source.Replacements
}

// Text returns the current text of s.
func (src Source) Text(s source.Slice) string {
	return s.Text(src.File, src.Repl)
}

// HasNewline reports whether ws currently contains a line break.
func (src Source) HasNewline(ws Whitespace) bool {
	return strings.Contains(src.Text(ws.Slice), "\n")
}

// HasComment reports whether ws currently contains a comment.
func (src Source) HasComment(ws Whitespace) bool {
	t := src.Text(ws.Slice)
	return strings.Contains(t, "//") || strings.Contains(t, "/*")
}
