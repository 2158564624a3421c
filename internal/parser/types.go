package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
)

// typ parses a type by recursive descent; types have no infix operators.
func typ(c *cursor.Cursor) (ast.TypeID, error) {
	if err := c.Enter(); err != nil {
		return ast.NoType, err
	}
	defer c.Leave()
	t, err := typeNode(c)
	if err != nil {
		return ast.NoType, err
	}
	return arena.New[ast.Type](c.Arena(), t), nil
}

func typeNode(c *cursor.Cursor) (ast.Type, error) {
	switch peekByte(c) {
	case '&':
		return refType(c)
	case '*':
		return ptrType(c)
	case '(':
		return parenType(c)
	case '[':
		return sliceType(c)
	case '!':
		bang, err := punct("!")(c)
		return &ast.NeverType{Bang: bang}, err
	}
	switch peekWord(c) {
	case "_":
		tok, err := keyword("_")(c)
		return &ast.InferType{Tok: tok}, err
	case "impl", "dyn":
		kw, err := cursor.OneOf(c, keyword("impl"), keyword("dyn"))
		if err != nil {
			return nil, err
		}
		bs, err := must(c, bounds)
		return &ast.BoundsType{Kw: &kw, Bounds: bs}, err
	case "fn", "unsafe", "extern":
		return fnPtrType(c)
	case "for":
		return cursor.OneOf(c, fnPtrType, func(c *cursor.Cursor) (ast.Type, error) {
			bs, err := bounds(c)
			return &ast.BoundsType{Bounds: bs}, err
		})
	}
	p, err := path(c, modeType)
	if err != nil {
		return nil, err
	}
	if peekPrefix(c, "!") && !peekPrefix(c, "!=") {
		m, err := must(c, func(c *cursor.Cursor) (ast.MacroCall, error) { return macroTail(c, p) })
		return &ast.MacroType{Mac: m}, err
	}
	return &ast.PathType{Path: p}, nil
}

func refType(c *cursor.Cursor) (ast.Type, error) {
	var t ast.RefType
	var err error
	if t.Amp, err = cursor.OneOf(c, punct("&&"), punct("&")); err != nil {
		return nil, err
	}
	if t.Lifetime, err = opt(c, lifetime); err != nil {
		return nil, err
	}
	if t.Mut, err = opt(c, keyword("mut")); err != nil {
		return nil, err
	}
	t.Elem, err = must(c, typ)
	return &t, err
}

func ptrType(c *cursor.Cursor) (ast.Type, error) {
	var t ast.PtrType
	var err error
	if t.Star, err = punct("*")(c); err != nil {
		return nil, err
	}
	if t.Qual, err = must(c, func(c *cursor.Cursor) (ast.Token, error) {
		return cursor.OneOf(c, keyword("const"), keyword("mut"))
	}); err != nil {
		return nil, err
	}
	t.Elem, err = must(c, typ)
	return &t, err
}

// parenType is `()`, `(T)` or a tuple `(T,)` / `(A, B)`.
func parenType(c *cursor.Cursor) (ast.Type, error) {
	d, err := delimited(c, "(", typ, ")")
	if err != nil {
		return nil, err
	}
	if len(d.List.Items) == 1 && !d.List.TrailingSep() {
		return &ast.ParenType{Open: d.Open, Inner: d.List.Items[0], Close: d.Close}, nil
	}
	return &ast.TupleType{Elems: d}, nil
}

func sliceType(c *cursor.Cursor) (ast.Type, error) {
	open, err := punct("[")(c)
	if err != nil {
		return nil, err
	}
	elem, err := must(c, typ)
	if err != nil {
		return nil, err
	}
	semi, err := opt(c, punct(";"))
	if err != nil {
		return nil, err
	}
	if semi == nil {
		closing, err := closeDelim(c, open, "]")
		return &ast.SliceType{Open: open, Elem: elem, Close: closing}, err
	}
	n, err := must(c, expr)
	if err != nil {
		return nil, err
	}
	closing, err := closeDelim(c, open, "]")
	return &ast.ArrayType{Open: open, Elem: elem, Semi: *semi, Len: n, Close: closing}, err
}

func fnPtrType(c *cursor.Cursor) (ast.Type, error) {
	var t ast.FnPtrType
	if peekWord(c) == "for" {
		fl, err := forLifetimes(c)
		if err != nil {
			return nil, err
		}
		t.For = &fl
	}
	quals, err := fnQuals(c, false)
	if err != nil {
		return nil, err
	}
	t.Quals = quals
	if t.Fn, err = keyword("fn")(c); err != nil {
		return nil, err
	}
	if t.Params, err = must(c, func(c *cursor.Cursor) (ast.Delimited[ast.FnPtrParam], error) {
		return delimited(c, "(", fnPtrParam, ")")
	}); err != nil {
		return nil, err
	}
	t.Ret, err = retType(c)
	return &t, err
}

func fnPtrParam(c *cursor.Cursor) (ast.FnPtrParam, error) {
	var p ast.FnPtrParam
	var err error
	if p.Attrs, err = outerAttrs(c); err != nil {
		return p, err
	}
	if p.Dots, err = opt(c, punct("...")); err != nil || p.Dots != nil {
		return p, err
	}
	named, err := opt(c, func(c *cursor.Cursor) ([2]ast.Token, error) {
		name, err := cursor.OneOf(c, ident, keyword("_"))
		if err != nil {
			return [2]ast.Token{}, err
		}
		colon, err := punct(":")(c)
		return [2]ast.Token{name, colon}, err
	})
	if err != nil {
		return p, err
	}
	if named != nil {
		p.Name, p.Colon = &named[0], &named[1]
	}
	p.Type, err = typ(c)
	return p, err
}

// fnQuals collects function qualifiers in order: default const async
// unsafe|safe extern "abi". Items allow const, async and default too.
func fnQuals(c *cursor.Cursor, item bool) ([]ast.Token, error) {
	var words []string
	if item {
		words = []string{"default", "const", "async", "unsafe", "safe", "extern"}
	} else {
		words = []string{"unsafe", "extern"}
	}
	var out []ast.Token
	for _, w := range words {
		if peekWord(c) != w {
			continue
		}
		if w == "default" || w == "safe" {
			// contextual: only before another qualifier or `fn`
			if at(c, func(c *cursor.Cursor) (ast.Token, error) {
				if _, err := keyword(w)(c); err != nil {
					return ast.Token{}, err
				}
				return ident(c)
			}) {
				continue
			}
		}
		kw, err := keyword(w)(c)
		if err != nil {
			return nil, err
		}
		out = append(out, kw)
		if w == "extern" {
			abi, err := opt(c, literal)
			if err != nil {
				return nil, err
			}
			if abi != nil {
				out = append(out, *abi)
			}
		}
	}
	return out, nil
}
