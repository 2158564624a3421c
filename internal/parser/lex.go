package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/source"
)

// multiOps lists every operator longer than one byte. A punctuation token
// never matches when a longer operator starts at the same place.
var multiOps = []string{
	"<<=", ">>=", "...", "..=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<", ">>", "..",
}

var reserved = map[string]bool{}

func init() {
	for _, kw := range strings.Fields(`as async await break const continue crate dyn else enum extern
		false fn for if impl in let loop match mod move mut pub ref return self Self static struct
		super trait true type unsafe use where while abstract become box do final macro override
		priv typeof unsized virtual yield try`) {
		reserved[kw] = true
	}
}

// IsReserved reports whether word cannot be used as a plain identifier.
func IsReserved(word string) bool { return reserved[word] }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// isSpace covers the language's pattern whitespace.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0x85, 0x200E, 0x200F, 0x2028, 0x2029:
		return true
	}
	return false
}

// whitespace consumes spaces and comments. An unterminated block comment is
// fatal.
func whitespace(c *cursor.Cursor) (ast.Whitespace, error) {
	start := c.Pos()
	for !c.EOF() {
		switch {
		case c.HasPrefix("//"):
			n := c.IndexFrom("\n")
			if n < 0 {
				n = len(c.Rest())
			}
			c.Advance(n)
		case c.HasPrefix("/*"):
			if err := blockComment(c); err != nil {
				return ast.Whitespace{}, err
			}
		default:
			r, size := c.Rune()
			if !isSpace(r) {
				return ast.Whitespace{Slice: c.SliceFrom(start)}, nil
			}
			c.Advance(size)
		}
	}
	return ast.Whitespace{Slice: c.SliceFrom(start)}, nil
}

func blockComment(c *cursor.Cursor) error {
	open := c.Advance(2)
	depth := 1
	for depth > 0 {
		switch {
		case c.EOF():
			return &cursor.Error{
				Kind:  cursor.KindUnclosed,
				Span:  source.Span{File: open.File, Start: open.Start, End: c.Pos()},
				Pos:   c.Pos(),
				Open:  open,
				Msg:   "unterminated block comment",
				Fatal: true,
			}
		case c.HasPrefix("/*"):
			c.Advance(2)
			depth++
		case c.HasPrefix("*/"):
			c.Advance(2)
			depth--
		default:
			_, size := c.Rune()
			c.Advance(size)
		}
	}
	return nil
}

// leaf builds a token from whitespace and the text consumed since start.
func leaf(c *cursor.Cursor, ws ast.Whitespace, kind ast.TokenKind, start source.Pos) ast.Token {
	return ast.Token{WS: ws, Kind: kind, Text: c.SliceFrom(start)}
}

func quote(s string) string { return "`" + s + "`" }

func longerOp(c *cursor.Cursor, s string) bool {
	for _, op := range multiOps {
		if len(op) > len(s) && strings.HasPrefix(op, s) && c.HasPrefix(op) {
			return true
		}
	}
	return false
}

// punct matches s unless a longer operator starts here.
func punct(s string) cursor.Parser[ast.Token] {
	return func(c *cursor.Cursor) (ast.Token, error) {
		ws, err := whitespace(c)
		if err != nil {
			return ast.Token{}, err
		}
		start := c.Pos()
		if !c.HasPrefix(s) || longerOp(c, s) {
			return ast.Token{}, c.Expected(quote(s))
		}
		c.Advance(len(s))
		return leaf(c, ws, ast.TokPunct, start), nil
	}
}

// splitPunct matches s even as the first part of a longer operator: the
// `>` closing generics out of `>>`, the `|` of an empty closure parameter
// list.
func splitPunct(s string) cursor.Parser[ast.Token] {
	return func(c *cursor.Cursor) (ast.Token, error) {
		ws, err := whitespace(c)
		if err != nil {
			return ast.Token{}, err
		}
		start := c.Pos()
		if !c.HasPrefix(s) {
			return ast.Token{}, c.Expected(quote(s))
		}
		c.Advance(len(s))
		return leaf(c, ws, ast.TokPunct, start), nil
	}
}

func atWordEnd(c *cursor.Cursor) bool {
	r, size := c.Rune()
	return size == 0 || !isIdentContinue(r)
}

// keyword matches the reserved or contextual word kw.
func keyword(kw string) cursor.Parser[ast.Token] {
	return func(c *cursor.Cursor) (ast.Token, error) {
		ws, err := whitespace(c)
		if err != nil {
			return ast.Token{}, err
		}
		start := c.Pos()
		if !c.HasPrefix(kw) {
			return ast.Token{}, c.Expected(quote(kw))
		}
		c.Advance(len(kw))
		if !atWordEnd(c) {
			return ast.Token{}, &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{quote(kw)}}
		}
		return leaf(c, ws, ast.TokKeyword, start), nil
	}
}

// word scans an identifier-shaped word without checking reservation.
func word(c *cursor.Cursor) (string, bool) {
	r, size := c.Rune()
	if size == 0 || !isIdentStart(r) {
		return "", false
	}
	start := c.Pos()
	c.EatFunc(isIdentContinue)
	return c.Text(c.SpanFrom(start)), true
}

// ident matches an identifier: not reserved, not `_`, or a raw `r#name`.
func ident(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	if c.HasPrefix("r#") {
		c.Advance(2)
		if w, ok := word(c); ok && w != "_" && w != "crate" && w != "self" && w != "super" && w != "Self" {
			return leaf(c, ws, ast.TokIdent, start), nil
		}
		return ast.Token{}, &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{"an identifier"}}
	}
	w, ok := word(c)
	if !ok || w == "_" || reserved[w] {
		return ast.Token{}, &cursor.Error{
			Kind:     cursor.KindExpected,
			Span:     c.SpanFrom(start),
			Pos:      start,
			Expected: []string{"an identifier"},
			Found:    foundWord(w),
		}
	}
	return leaf(c, ws, ast.TokIdent, start), nil
}

func foundWord(w string) string {
	if w == "" {
		return ""
	}
	if reserved[w] {
		return "keyword " + quote(w)
	}
	return quote(w)
}

// lifetime matches `'name`, `'static` or `'_`. `'a'` is a char literal.
func lifetime(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	if c.Byte() != '\'' {
		return ast.Token{}, c.Expected("a lifetime")
	}
	c.Advance(1)
	if c.HasPrefix("r#") {
		c.Advance(2)
	}
	if _, ok := word(c); !ok || c.Byte() == '\'' {
		return ast.Token{}, &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{"a lifetime"}}
	}
	return leaf(c, ws, ast.TokLifetime, start), nil
}

// peekWord returns the identifier-shaped word after whitespace without
// consuming anything.
func peekWord(c *cursor.Cursor) string {
	ps, err := cursor.Peek(c, func(c *cursor.Cursor) (string, error) {
		if _, err := whitespace(c); err != nil {
			return "", err
		}
		if w, ok := word(c); ok {
			return w, nil
		}
		return "", nil
	})
	if err != nil {
		return ""
	}
	return ps.Value()
}

// peekByte returns the first byte after whitespace.
func peekByte(c *cursor.Cursor) byte {
	ps, err := cursor.Peek(c, func(c *cursor.Cursor) (byte, error) {
		if _, err := whitespace(c); err != nil {
			return 0, err
		}
		return c.Byte(), nil
	})
	if err != nil {
		return 0
	}
	return ps.Value()
}

// peekPrefix reports whether s follows the whitespace.
func peekPrefix(c *cursor.Cursor, s string) bool {
	ps, err := cursor.Peek(c, func(c *cursor.Cursor) (bool, error) {
		if _, err := whitespace(c); err != nil {
			return false, err
		}
		return c.HasPrefix(s), nil
	})
	return err == nil && ps.Value()
}

// at reports whether p would succeed here, without consuming input.
func at[T any](c *cursor.Cursor, p cursor.Parser[T]) bool {
	ps, err := cursor.Peek(c, p)
	if err != nil {
		return false
	}
	cursor.Discard(c, ps)
	return true
}

// opt parses p if it is there.
func opt[T any](c *cursor.Cursor, p cursor.Parser[T]) (*T, error) {
	v, ok, err := cursor.Optional(c, p)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// must parses p and makes any failure fatal.
func must[T any](c *cursor.Cursor, p cursor.Parser[T]) (T, error) {
	return cursor.Must(c, p)
}

// validRuneAt reports whether the bytes at the cursor decode.
func validRuneAt(c *cursor.Cursor) bool {
	r, size := c.Rune()
	return size > 0 && !(r == utf8.RuneError && size == 1)
}
