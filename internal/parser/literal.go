package parser

import (
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/source"
)

func isDigit(r rune) bool    { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }

// literal matches number, char, byte, string and boolean literals.
func literal(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	switch b := c.Byte(); {
	case b >= '0' && b <= '9':
		number(c, false)
	case b == '\'':
		if err := charLit(c); err != nil {
			return ast.Token{}, err
		}
	case b == '"':
		if err := stringLit(c, start); err != nil {
			return ast.Token{}, err
		}
	case b == 'b' || b == 'c' || b == 'r':
		ok, err := prefixedLit(c, start)
		if err != nil {
			return ast.Token{}, err
		}
		if !ok {
			return ast.Token{}, c.Expected("a literal")
		}
	case b == 't' || b == 'f':
		w, _ := word(c)
		if w != "true" && w != "false" {
			return ast.Token{}, &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{"a literal"}, Found: quote(w)}
		}
	default:
		return ast.Token{}, c.Expected("a literal")
	}
	return leaf(c, ws, ast.TokLiteral, start), nil
}

// tupleIndex matches the decimal field index after `.`; `t.0.1` is two
// accesses, not a float.
func tupleIndex(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	if sp := c.EatFunc(isDigit); sp.Empty() {
		return ast.Token{}, c.Expected("a field index")
	}
	return leaf(c, ws, ast.TokLiteral, start), nil
}

// number scans an integer or float literal with an optional suffix.
func number(c *cursor.Cursor, intOnly bool) {
	if c.HasPrefix("0x") || c.HasPrefix("0o") || c.HasPrefix("0b") {
		c.Advance(2)
		c.EatFunc(func(r rune) bool { return isHexDigit(r) || r == '_' })
		c.EatFunc(isIdentContinue)
		return
	}
	c.EatFunc(func(r rune) bool { return isDigit(r) || r == '_' })
	if intOnly {
		return
	}
	if c.Byte() == '.' {
		next := rune(c.ByteAt(1))
		switch {
		case isDigit(next):
			c.Advance(1)
			c.EatFunc(func(r rune) bool { return isDigit(r) || r == '_' })
		case next == '.' || isIdentStart(next) || next >= 0x80:
			// range or method call on an integer
		default:
			c.Advance(1)
			return
		}
	}
	if b := c.Byte(); b == 'e' || b == 'E' {
		off := 1
		if s := c.ByteAt(1); s == '+' || s == '-' {
			off = 2
		}
		if d := c.ByteAt(off); d >= '0' && d <= '9' || d == '_' {
			c.Advance(off)
			c.EatFunc(func(r rune) bool { return isDigit(r) || r == '_' })
		}
	}
	c.EatFunc(isIdentContinue)
}

func charLit(c *cursor.Cursor) error {
	start := c.Pos()
	c.Advance(1)
	if c.Byte() == '\\' {
		c.Advance(1)
		if c.Byte() == 'u' && c.ByteAt(1) == '{' {
			n := c.IndexFrom("}")
			if n < 0 {
				return c.Unclosed(c.SpanFrom(start), "}")
			}
			c.Advance(n + 1)
		} else if c.Byte() == 'x' {
			c.Advance(min(3, len(c.Rest())))
		} else if !c.EOF() {
			_, size := c.Rune()
			c.Advance(size)
		}
	} else {
		if c.EOF() || c.Byte() == '\n' || c.Byte() == '\'' || !validRuneAt(c) {
			return &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{"a literal"}}
		}
		_, size := c.Rune()
		c.Advance(size)
	}
	if c.Byte() != '\'' {
		return &cursor.Error{Kind: cursor.KindExpected, Span: c.SpanFrom(start), Pos: start, Expected: []string{"a literal"}}
	}
	c.Advance(1)
	c.EatFunc(isIdentContinue)
	return nil
}

// stringLit scans a quoted string with escapes. An unterminated string is
// fatal: nothing else can start with a quote.
func stringLit(c *cursor.Cursor, litStart source.Pos) error {
	open := c.Advance(1)
	for {
		switch {
		case c.EOF():
			err := c.Unclosed(open, `"`)
			err.Msg = "unterminated string literal"
			err.Span.Start = litStart
			return err
		case c.Byte() == '\\':
			c.Advance(min(2, len(c.Rest())))
		case c.Byte() == '"':
			c.Advance(1)
			c.EatFunc(isIdentContinue)
			return nil
		default:
			_, size := c.Rune()
			c.Advance(size)
		}
	}
}

// rawString scans r"..." / r#"..."# where the `r` is skip bytes ahead.
func rawString(c *cursor.Cursor, litStart source.Pos, skip int) (bool, error) {
	hashes := 0
	for c.ByteAt(skip+1+hashes) == '#' {
		hashes++
	}
	if c.ByteAt(skip+1+hashes) != '"' {
		return false, nil
	}
	open := c.Advance(skip + 2 + hashes)
	closing := `"`
	for i := 0; i < hashes; i++ {
		closing += "#"
	}
	n := c.IndexFrom(closing)
	if n < 0 {
		c.Advance(len(c.Rest()))
		err := c.Unclosed(open, closing)
		err.Msg = "unterminated raw string literal"
		err.Span.Start = litStart
		return false, err
	}
	c.Advance(n + len(closing))
	c.EatFunc(isIdentContinue)
	return true, nil
}

// prefixedLit handles b'x', b"..", br"..", c"..", cr"..", r"..". ok is false
// when the word is an identifier after all.
func prefixedLit(c *cursor.Cursor, start source.Pos) (bool, error) {
	switch {
	case c.HasPrefix("b'"):
		c.Advance(1)
		return true, charLit(c)
	case c.HasPrefix(`b"`), c.HasPrefix(`c"`):
		c.Advance(1)
		return true, stringLit(c, start)
	case c.HasPrefix("br"), c.HasPrefix("cr"):
		return rawString(c, start, 1)
	case c.HasPrefix("r"):
		return rawString(c, start, 0)
	}
	return false, nil
}
