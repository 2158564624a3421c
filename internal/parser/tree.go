package parser

import (
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
)

var closers = map[byte]string{'(': ")", '[': "]", '{': "}"}

// anyToken lexes one token of macro input. Delimiters are left to tree.
func anyToken(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	if c.EOF() {
		return ast.Token{}, c.Expected("a token")
	}
	switch c.Byte() {
	case '(', '[', '{', ')', ']', '}':
		return ast.Token{}, c.Expected("a token")
	}
	// literals and lifetimes bring their own whitespace; re-lex from start
	restart := func(p cursor.Parser[ast.Token]) (ast.Token, bool, error) {
		tok, err := cursor.TryParse(c, p)
		if err != nil {
			if cursor.IsFatal(err) {
				return ast.Token{}, false, err
			}
			return ast.Token{}, false, nil
		}
		tok.WS = ws
		return tok, true, nil
	}
	for _, p := range []cursor.Parser[ast.Token]{literal, lifetime} {
		tok, ok, err := restart(p)
		if err != nil {
			return ast.Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
	if c.HasPrefix("r#") {
		if tok, ok, err := restart(ident); err != nil || ok {
			return tok, err
		}
	}
	if w, ok := word(c); ok {
		kind := ast.TokIdent
		if reserved[w] || w == "_" {
			kind = ast.TokKeyword
		}
		return leaf(c, ws, kind, start), nil
	}
	for _, op := range multiOps {
		if c.HasPrefix(op) {
			c.Advance(len(op))
			return leaf(c, ws, ast.TokPunct, start), nil
		}
	}
	_, size := c.Rune()
	c.Advance(size)
	return leaf(c, ws, ast.TokPunct, start), nil
}

// openDelim matches one of ( [ {.
func openDelim(c *cursor.Cursor) (ast.Token, error) {
	ws, err := whitespace(c)
	if err != nil {
		return ast.Token{}, err
	}
	start := c.Pos()
	switch c.Byte() {
	case '(', '[', '{':
		c.Advance(1)
		return leaf(c, ws, ast.TokPunct, start), nil
	}
	return ast.Token{}, c.Expected("`(`", "`[`", "`{`")
}

// tree parses a delimited token tree. Once the opening delimiter is seen
// every failure is fatal.
func tree(c *cursor.Cursor) (ast.TokenTree, error) {
	open, err := openDelim(c)
	if err != nil {
		return ast.TokenTree{}, err
	}
	delim := c.Text(open.Span())[0]
	t := ast.TokenTree{Delim: delim, Open: open}
	closing := closers[delim]
	for {
		cp := c.Checkpoint()
		if _, err := whitespace(c); err != nil {
			return ast.TokenTree{}, err
		}
		if c.EOF() {
			return ast.TokenTree{}, c.Unclosed(open.Span(), closing)
		}
		next := c.Byte()
		switch next {
		case ')', ']', '}':
			if string(next) != closing {
				return ast.TokenTree{}, c.Unclosed(open.Span(), closing)
			}
		}
		c.Rewind(cp)
		switch next {
		case ')', ']', '}':
			t.Close, err = punct(closing)(c)
			return t, err
		case '(', '[', '{':
			sub, err := tree(c)
			if err != nil {
				return ast.TokenTree{}, err
			}
			t.Items = append(t.Items, ast.TreeItem{Tree: &sub})
		default:
			tok, err := anyToken(c)
			if err != nil {
				return ast.TokenTree{}, cursor.AsFatal(err)
			}
			t.Items = append(t.Items, ast.TreeItem{Tok: tok})
		}
	}
}

func attr(inner bool) cursor.Parser[ast.Attr] {
	return func(c *cursor.Cursor) (ast.Attr, error) {
		var a ast.Attr
		var err error
		if a.Pound, err = punct("#")(c); err != nil {
			return a, err
		}
		if inner {
			bang, err := punct("!")(c)
			if err != nil {
				return a, err
			}
			a.Bang = &bang
		}
		if !peekPrefix(c, "[") {
			return a, c.Expected("`[`")
		}
		a.Tree, err = tree(c)
		return a, err
	}
}

func attrs(c *cursor.Cursor, inner bool) ([]ast.Attr, error) {
	var out []ast.Attr
	for {
		a, err := opt(c, attr(inner))
		if err != nil {
			return nil, err
		}
		if a == nil {
			return out, nil
		}
		out = append(out, *a)
	}
}

func outerAttrs(c *cursor.Cursor) ([]ast.Attr, error) { return attrs(c, false) }
func innerAttrs(c *cursor.Cursor) ([]ast.Attr, error) { return attrs(c, true) }

// visibility parses `pub`, `pub(crate)`, `pub(self)`, `pub(super)` and
// `pub(in path)`.
func visibility(c *cursor.Cursor) (ast.Visibility, error) {
	pub, err := keyword("pub")(c)
	if err != nil {
		return ast.Visibility{}, err
	}
	v := ast.Visibility{Pub: pub}
	restricted, err := opt(c, func(c *cursor.Cursor) (ast.Visibility, error) {
		r := v
		open, err := punct("(")(c)
		if err != nil {
			return r, err
		}
		r.Open = &open
		if in, err := opt(c, keyword("in")); err != nil {
			return r, err
		} else if in != nil {
			r.In = in
			p, err := path(c, modeType)
			if err != nil {
				return r, err
			}
			r.Path = &p
		} else {
			name, err := cursor.OneOf(c, keyword("crate"), keyword("self"), keyword("super"))
			if err != nil {
				return r, err
			}
			r.Path = &ast.Path{Segments: []ast.PathSegment{{Name: name}}}
		}
		closing, err := punct(")")(c)
		if err != nil {
			return r, err
		}
		r.Close = &closing
		return r, nil
	})
	if err != nil {
		return v, err
	}
	if restricted != nil {
		return *restricted, nil
	}
	return v, nil
}

// macroTail parses `! tree` after an already parsed path.
func macroTail(c *cursor.Cursor, p ast.Path) (ast.MacroCall, error) {
	bang, err := punct("!")(c)
	if err != nil {
		return ast.MacroCall{}, err
	}
	m := ast.MacroCall{Path: p, Bang: bang}
	if !at(c, openDelim) {
		// macro_rules! name { ... }
		name, err := ident(c)
		if err != nil {
			return m, err
		}
		m.Name = &name
	}
	m.Tree, err = tree(c)
	return m, err
}
