package ast

import (
	"strings"

	"rustidy/internal/arena"
	"rustidy/internal/source"
)

// File is one parsed source file. Every byte of the input belongs to exactly
// one leaf, so printing the leaves in order reproduces it.
type File struct {
	Src   Source
	Arena *arena.Arena
	Attrs []Attr
	Items []Item
	// EOF is the whitespace after the last token.
	EOF Whitespace
}

// Span covers the whole file.
func (f *File) Span() source.Span {
	return source.Span{File: f.Src.File.ID, Start: 0, End: source.Pos(len(f.Src.File.Content))}
}

// Print concatenates every leaf in tree order with the current slices.
func (f *File) Print() string {
	var p printer
	p.src = f.Src
	Walk(&p, f)
	return p.sb.String()
}

type printer struct {
	NopVisitor
	src Source
	sb  strings.Builder
}

func (p *printer) Token(t *Token, _ Spacing) {
	p.sb.WriteString(p.src.Text(t.WS.Slice))
	p.sb.WriteString(p.src.Text(t.Text))
}

func (p *printer) EOF(ws *Whitespace) {
	p.sb.WriteString(p.src.Text(ws.Slice))
}
