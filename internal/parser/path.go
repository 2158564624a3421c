package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
)

type pathMode uint8

const (
	// modeExpr paths take generic arguments only after `::<`.
	modeExpr pathMode = iota
	// modeType paths take `<...>` directly and `Fn(A) -> B` sugar.
	modeType
)

// segmentName matches an identifier or one of self, Self, super, crate.
func segmentName(c *cursor.Cursor) (ast.Token, error) {
	return cursor.OneOf(c, ident, keyword("self"), keyword("Self"), keyword("super"), keyword("crate"))
}

func path(c *cursor.Cursor, mode pathMode) (ast.Path, error) {
	var p ast.Path
	if peekPrefix(c, "<") && !peekPrefix(c, "<=") {
		q, err := qself(c)
		if err != nil {
			return p, err
		}
		p.QSelf = &q
		colons, err := must(c, punct("::"))
		if err != nil {
			return p, err
		}
		p.Leading = &colons
	} else {
		lead, err := opt(c, punct("::"))
		if err != nil {
			return p, err
		}
		p.Leading = lead
	}
	for {
		seg, err := pathSegment(c, mode)
		if err != nil {
			if len(p.Segments) == 0 && p.Leading == nil {
				return p, err
			}
			return p, cursor.AsFatal(err)
		}
		p.Segments = append(p.Segments, seg)
		// `::` then a name continues the path; `::{` and `::*` belong to use trees
		sep, err := opt(c, func(c *cursor.Cursor) (ast.Token, error) {
			colons, err := punct("::")(c)
			if err != nil {
				return colons, err
			}
			if !at(c, segmentName) {
				return colons, c.Expected("a path segment")
			}
			return colons, nil
		})
		if err != nil {
			return p, err
		}
		if sep == nil {
			return p, nil
		}
		p.Seps = append(p.Seps, *sep)
	}
}

func qself(c *cursor.Cursor) (ast.QSelf, error) {
	var q ast.QSelf
	var err error
	if q.Open, err = splitPunct("<")(c); err != nil {
		return q, err
	}
	if q.Type, err = must(c, typ); err != nil {
		return q, err
	}
	if as, err := opt(c, keyword("as")); err != nil {
		return q, err
	} else if as != nil {
		q.As = as
		tr, err := must(c, func(c *cursor.Cursor) (ast.Path, error) { return path(c, modeType) })
		if err != nil {
			return q, err
		}
		q.Trait = &tr
	}
	q.Close, err = must(c, splitPunct(">"))
	return q, err
}

func pathSegment(c *cursor.Cursor, mode pathMode) (ast.PathSegment, error) {
	var seg ast.PathSegment
	var err error
	if seg.Name, err = segmentName(c); err != nil {
		return seg, err
	}
	switch mode {
	case modeExpr:
		ga, err := opt(c, turbofish)
		if err != nil {
			return seg, err
		}
		seg.Generics = ga
	case modeType:
		if peekPrefix(c, "::<") {
			ga, err := turbofish(c)
			if err != nil {
				return seg, err
			}
			seg.Generics = &ga
		} else if peekPrefix(c, "<") && !peekPrefix(c, "<=") && !peekPrefix(c, "<<=") {
			ga, err := genericArgs(c, nil)
			if err != nil {
				return seg, err
			}
			seg.Generics = &ga
		} else if peekPrefix(c, "(") {
			fs, err := fnSugar(c)
			if err != nil {
				return seg, err
			}
			seg.FnArgs = &fs
		}
	}
	return seg, nil
}

// turbofish parses `::<args>`.
func turbofish(c *cursor.Cursor) (ast.GenericArgs, error) {
	colons, err := punct("::")(c)
	if err != nil {
		return ast.GenericArgs{}, err
	}
	if !peekPrefix(c, "<") {
		return ast.GenericArgs{}, c.Expected("`<`")
	}
	return genericArgs(c, &colons)
}

func genericArgs(c *cursor.Cursor, colons *ast.Token) (ast.GenericArgs, error) {
	ga := ast.GenericArgs{Colons: colons}
	var err error
	if ga.Open, err = splitPunct("<")(c); err != nil {
		return ga, err
	}
	if ga.Args, err = must(c, func(c *cursor.Cursor) (ast.Punctuated[ast.GenericArg], error) {
		return punctuated(c, genericArg, ">")
	}); err != nil {
		return ga, err
	}
	ga.Close, err = must(c, splitPunct(">"))
	return ga, err
}

func genericArg(c *cursor.Cursor) (ast.GenericArg, error) {
	return cursor.OneOf(c,
		func(c *cursor.Cursor) (ast.GenericArg, error) {
			lt, err := lifetime(c)
			return ast.GenericArg{Lifetime: &lt}, err
		},
		func(c *cursor.Cursor) (ast.GenericArg, error) {
			b, err := assocBinding(c)
			return ast.GenericArg{Binding: &b}, err
		},
		func(c *cursor.Cursor) (ast.GenericArg, error) {
			t, err := typ(c)
			return ast.GenericArg{Type: t}, err
		},
		func(c *cursor.Cursor) (ast.GenericArg, error) {
			e, err := constArg(c)
			return ast.GenericArg{Const: e}, err
		},
	)
}

// constArg is a literal, a negated literal or a block.
func constArg(c *cursor.Cursor) (ast.ExprID, error) {
	a := c.Arena()
	if peekPrefix(c, "{") {
		b, err := block(c)
		if err != nil {
			return ast.NoExpr, err
		}
		return arena.New[ast.Expr](a, &ast.BlockExpr{Block: b}), nil
	}
	minus, err := opt(c, punct("-"))
	if err != nil {
		return ast.NoExpr, err
	}
	lit, err := literal(c)
	if err != nil {
		return ast.NoExpr, err
	}
	id := arena.New[ast.Expr](a, &ast.Lit{Tok: lit})
	if minus != nil {
		id = arena.New[ast.Expr](a, &ast.Unary{Op: ast.UnaryOp{Op: *minus}, Operand: id})
	}
	return id, nil
}

func assocBinding(c *cursor.Cursor) (ast.AssocBinding, error) {
	var b ast.AssocBinding
	var err error
	if b.Name, err = ident(c); err != nil {
		return b, err
	}
	if peekPrefix(c, "<") && !peekPrefix(c, "<=") {
		ga, err := genericArgs(c, nil)
		if err != nil {
			return b, err
		}
		b.Generics = &ga
	}
	if eq, err := opt(c, punct("=")); err != nil {
		return b, err
	} else if eq != nil {
		b.Eq = eq
		b.Type, err = must(c, typ)
		return b, err
	}
	colon, err := punct(":")(c)
	if err != nil {
		return b, err
	}
	b.Colon = &colon
	bs, err := must(c, bounds)
	if err != nil {
		return b, err
	}
	b.Bounds = &bs
	return b, nil
}

func fnSugar(c *cursor.Cursor) (ast.FnSugar, error) {
	var fs ast.FnSugar
	var err error
	if fs.Params, err = delimited(c, "(", typ, ")"); err != nil {
		return fs, err
	}
	fs.Ret, err = retType(c)
	return fs, err
}

// retType parses an optional `-> Type`.
func retType(c *cursor.Cursor) (*ast.RetType, error) {
	arrow, err := opt(c, punct("->"))
	if err != nil || arrow == nil {
		return nil, err
	}
	t, err := must(c, typ)
	if err != nil {
		return nil, err
	}
	return &ast.RetType{Arrow: *arrow, Type: t}, nil
}

// bounds parses `B + B + ...` with an optional trailing `+`.
func bounds(c *cursor.Cursor) (ast.Bounds, error) {
	var bs ast.Bounds
	first, err := bound(c)
	if err != nil {
		return bs, err
	}
	bs.Items = append(bs.Items, first)
	for {
		plus, err := opt(c, punct("+"))
		if err != nil {
			return bs, err
		}
		if plus == nil {
			return bs, nil
		}
		bs.Plus = append(bs.Plus, *plus)
		next, err := opt(c, bound)
		if err != nil {
			return bs, err
		}
		if next == nil {
			return bs, nil
		}
		bs.Items = append(bs.Items, *next)
	}
}

func bound(c *cursor.Cursor) (ast.Bound, error) {
	var b ast.Bound
	if lt, err := opt(c, lifetime); err != nil || lt != nil {
		b.Lifetime = lt
		return b, err
	}
	open, err := opt(c, punct("("))
	if err != nil {
		return b, err
	}
	b.Open = open
	if tilde, err := opt(c, punct("~")); err != nil {
		return b, err
	} else if tilde != nil {
		b.Tilde = tilde
		kw, err := must(c, keyword("const"))
		if err != nil {
			return b, err
		}
		b.Const = &kw
	} else if b.Const, err = opt(c, keyword("const")); err != nil {
		return b, err
	}
	if b.Question, err = opt(c, punct("?")); err != nil {
		return b, err
	}
	if peekWord(c) == "for" {
		fl, err := forLifetimes(c)
		if err != nil {
			return b, err
		}
		b.For = &fl
	}
	if b.Path, err = path(c, modeType); err != nil {
		return b, err
	}
	if open != nil {
		closing, err := must(c, punct(")"))
		if err != nil {
			return b, err
		}
		b.Close = &closing
	}
	return b, nil
}

func forLifetimes(c *cursor.Cursor) (ast.ForLifetimes, error) {
	var fl ast.ForLifetimes
	var err error
	if fl.For, err = keyword("for")(c); err != nil {
		return fl, err
	}
	if !peekPrefix(c, "<") {
		return fl, c.Expected("`<`")
	}
	fl.Params, err = generics(c)
	return fl, err
}

// generics parses a declaration's `<...>` parameter list.
func generics(c *cursor.Cursor) (ast.Generics, error) {
	var g ast.Generics
	var err error
	if g.Open, err = splitPunct("<")(c); err != nil {
		return g, err
	}
	if g.Params, err = must(c, func(c *cursor.Cursor) (ast.Punctuated[ast.GenericParam], error) {
		return punctuated(c, genericParam, ">")
	}); err != nil {
		return g, err
	}
	g.Close, err = must(c, splitPunct(">"))
	return g, err
}

// optGenerics parses generics when the next byte is `<`.
func optGenerics(c *cursor.Cursor) (*ast.Generics, error) {
	if !peekPrefix(c, "<") {
		return nil, nil
	}
	g, err := must(c, generics)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func genericParam(c *cursor.Cursor) (ast.GenericParam, error) {
	var gp ast.GenericParam
	var err error
	if gp.Attrs, err = outerAttrs(c); err != nil {
		return gp, err
	}
	if gp.Const, err = opt(c, keyword("const")); err != nil {
		return gp, err
	}
	if gp.Const != nil {
		if gp.Name, err = must(c, ident); err != nil {
			return gp, err
		}
		colon, err := must(c, punct(":"))
		if err != nil {
			return gp, err
		}
		gp.Colon = &colon
		if gp.Type, err = must(c, typ); err != nil {
			return gp, err
		}
		if gp.Eq, err = opt(c, punct("=")); err != nil || gp.Eq == nil {
			return gp, err
		}
		gp.DefaultExpr, err = must(c, func(c *cursor.Cursor) (ast.ExprID, error) {
			return cursor.OneOf(c, constArg, func(c *cursor.Cursor) (ast.ExprID, error) {
				p, err := path(c, modeExpr)
				return arena.New[ast.Expr](c.Arena(), &ast.PathExpr{Path: p}), err
			})
		})
		return gp, err
	}
	if gp.Name, err = cursor.OneOf(c, lifetime, ident); err != nil {
		return gp, err
	}
	if gp.Colon, err = opt(c, punct(":")); err != nil {
		return gp, err
	}
	if gp.Colon != nil {
		if gp.Bounds, err = opt(c, bounds); err != nil {
			return gp, err
		}
	}
	if gp.Eq, err = opt(c, punct("=")); err != nil || gp.Eq == nil {
		return gp, err
	}
	gp.Default, err = must(c, typ)
	return gp, err
}

func whereClause(c *cursor.Cursor) (*ast.WhereClause, error) {
	kw, err := opt(c, keyword("where"))
	if err != nil || kw == nil {
		return nil, err
	}
	wc := &ast.WhereClause{Where: *kw}
	for {
		pred, err := opt(c, wherePred)
		if err != nil {
			return nil, err
		}
		if pred == nil {
			return wc, nil
		}
		wc.Preds.Items = append(wc.Preds.Items, *pred)
		comma, err := opt(c, punct(","))
		if err != nil {
			return nil, err
		}
		if comma == nil {
			return wc, nil
		}
		wc.Preds.Seps = append(wc.Preds.Seps, *comma)
	}
}

func wherePred(c *cursor.Cursor) (ast.WherePred, error) {
	var wp ast.WherePred
	var err error
	if peekWord(c) == "for" {
		fl, err := forLifetimes(c)
		if err != nil {
			return wp, err
		}
		wp.For = &fl
	}
	if wp.Lifetime, err = opt(c, lifetime); err != nil {
		return wp, err
	}
	if wp.Lifetime == nil {
		if wp.Type, err = typ(c); err != nil {
			return wp, err
		}
	}
	if wp.Colon, err = punct(":")(c); err != nil {
		return wp, err
	}
	// `T:` with no bounds is legal
	if bs, err := opt(c, bounds); err != nil {
		return wp, err
	} else if bs != nil {
		wp.Bounds = *bs
	}
	return wp, nil
}

// punctuated parses items separated by commas up to, not including, the
// closing delimiter.
func punctuated[T any](c *cursor.Cursor, item cursor.Parser[T], closing string) (ast.Punctuated[T], error) {
	var out ast.Punctuated[T]
	for {
		if peekPrefix(c, closing) {
			return out, nil
		}
		v, err := item(c)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, v)
		comma, err := opt(c, punct(","))
		if err != nil {
			return out, err
		}
		if comma == nil {
			return out, nil
		}
		out.Seps = append(out.Seps, *comma)
	}
}

// delimited parses open, comma-separated items and the matching close. A
// missing close after the opener is reported as an unclosed delimiter.
func delimited[T any](c *cursor.Cursor, open string, item cursor.Parser[T], closing string) (ast.Delimited[T], error) {
	var d ast.Delimited[T]
	var err error
	if d.Open, err = punct(open)(c); err != nil {
		return d, err
	}
	if d.List, err = must(c, func(c *cursor.Cursor) (ast.Punctuated[T], error) {
		return punctuated(c, item, closing)
	}); err != nil {
		return d, err
	}
	d.Close, err = closeDelim(c, d.Open, closing)
	return d, err
}

// closeDelim expects closing; anything else is fatal. Running into the end
// of input or another closer reports the opener as unclosed.
func closeDelim(c *cursor.Cursor, open ast.Token, closing string) (ast.Token, error) {
	tok, err := cursor.TryParse(c, punct(closing))
	if err == nil || cursor.IsFatal(err) {
		return tok, err
	}
	if _, werr := whitespace(c); werr != nil {
		return tok, werr
	}
	switch c.Byte() {
	case 0, ')', ']', '}':
		return tok, c.Unclosed(open.Span(), closing)
	}
	return tok, cursor.AsFatal(c.Expected("`,`", quote(closing)))
}
