package format

import (
	"strings"

	"rustidy/internal/ast"
	"rustidy/internal/source"
)

// layout is the visitor that rewrites whitespace leaves. Tokens are never
// touched; a leaf whose new text equals the old keeps its original slice.
type layout struct {
	ast.NopVisitor
	src  ast.Source
	repl *source.Replacements
	opt  Options

	indentLevel int
	// prev is the text of the previous token, "" before the first one.
	prev string
}

func (l *layout) Indent() { l.indentLevel++ }

func (l *layout) Dedent() {
	if l.indentLevel > 0 {
		l.indentLevel--
	}
}

func (l *layout) Token(t *ast.Token, sp ast.Spacing) {
	text := l.src.Text(t.Text)
	if sp != ast.SpaceKeep {
		orig := l.src.Text(t.WS.Slice)
		if ws := l.whitespace(orig, sp, text); ws != orig {
			l.replace(&t.WS, ws)
		}
	}
	l.prev = text
}

func (l *layout) EOF(ws *ast.Whitespace) {
	orig := l.src.Text(ws.Slice)
	g := splitGap(orig)

	var sb strings.Builder
	for i, c := range g.comments {
		switch {
		case i == 0 && l.prev == "":
		case c.breaks > 0:
			sb.WriteString(l.newline(c.breaks, 0, i == 0 && l.afterOpen()))
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(c.text)
	}
	if l.opt.NewlineAtEOF && (l.prev != "" || len(g.comments) > 0) {
		sb.WriteByte('\n')
	}
	if out := sb.String(); out != orig {
		l.replace(ws, out)
	}
}

func (l *layout) replace(ws *ast.Whitespace, text string) {
	ws.Slice = source.Slice{Span: ws.Slice.Span, Repl: l.repl.Add(text)}
}

func (l *layout) whitespace(orig string, sp ast.Spacing, text string) string {
	g := splitGap(orig)
	if len(g.comments) == 0 {
		return l.plain(orig, g.trailing, sp, text)
	}

	// comments before a closing token stay with the body they close
	commentLevel := l.indentLevel
	if sp == ast.SpaceLineOut {
		commentLevel++
	}

	var sb strings.Builder
	for i, c := range g.comments {
		switch {
		case i == 0 && sp == ast.SpaceStart:
		case c.breaks > 0:
			sb.WriteString(l.newline(c.breaks, commentLevel, i == 0 && l.afterOpen()))
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(c.text)
	}

	last := g.comments[len(g.comments)-1]
	if last.line || g.trailing > 0 || isLineSpacing(sp) {
		sb.WriteString(l.newline(max(g.trailing, 1), l.indentLevel, sp == ast.SpaceLineOut))
	} else {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// plain lays out a leaf without comments.
func (l *layout) plain(orig string, breaks int, sp ast.Spacing, text string) string {
	switch sp {
	case ast.SpaceStart:
		return ""
	case ast.SpaceOne:
		return " "
	case ast.SpaceLine:
		return l.newline(breaks, l.indentLevel, l.afterOpen())
	case ast.SpaceLineOut:
		return l.newline(1, l.indentLevel, true)
	case ast.SpaceAutoOne:
		if breaks > 0 {
			return l.newline(breaks, l.indentLevel, l.afterOpen())
		}
		return " "
	case ast.SpaceAutoNone:
		if breaks > 0 {
			return l.newline(breaks, l.indentLevel, l.afterOpen())
		}
	}
	// only tokens that were apart may need a separator; `>>` closing two
	// generic lists was written glued and stays glued
	if orig != "" && glues(l.prev, text) {
		return " "
	}
	return ""
}

// newline ends the current line, keeps up to MaxBlankLines of the blank
// lines implied by breaks and indents to level.
func (l *layout) newline(breaks, level int, noBlank bool) string {
	blank := min(breaks-1, l.opt.MaxBlankLines)
	if noBlank || blank < 0 {
		blank = 0
	}
	return strings.Repeat("\n", blank+1) + l.indent(level)
}

func (l *layout) indent(level int) string {
	if l.opt.UseTabs {
		return strings.Repeat("\t", level)
	}
	return strings.Repeat(" ", level*l.opt.IndentWidth)
}

// afterOpen reports whether the previous token opened a delimiter.
func (l *layout) afterOpen() bool {
	switch l.prev {
	case "{", "(", "[":
		return true
	}
	return false
}

func isLineSpacing(sp ast.Spacing) bool {
	return sp == ast.SpaceLine || sp == ast.SpaceLineOut
}

// gluedPairs are the two-byte sequences that lex differently when the
// space between them is removed.
var gluedPairs = map[string]bool{
	"::": true, "->": true, "=>": true, "==": true, "!=": true, "<=": true,
	">=": true, "&&": true, "||": true, "+=": true, "-=": true, "*=": true,
	"/=": true, "%=": true, "^=": true, "&=": true, "|=": true, "<<": true,
	">>": true, "..": true, ".=": true, "//": true, "/*": true, "*/": true,
	"<-": true,
}

// glues reports whether writing next directly after prev changes how the
// pair is tokenized.
func glues(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	a, b := prev[len(prev)-1], next[0]
	switch {
	case wordByte(a) && wordByte(b):
		return true
	case wordByte(a) && (b == '"' || b == '\'' || b == '#'):
		// b"..", r#"..", c'..'
		return true
	case isDigit(prev[0]) && b == '.' && !strings.HasPrefix(next, ".."):
		// `1 .max(2)` is not `1.max(2)`
		return true
	}
	return gluedPairs[string([]byte{a, b})]
}

func wordByte(b byte) bool {
	return b == '_' || b >= 0x80 || isDigit(b) || (b|0x20 >= 'a' && b|0x20 <= 'z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
