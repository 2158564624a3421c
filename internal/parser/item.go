package parser

import (
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
)

// item parses one item after its outer attributes. Inside blocks only
// macro_rules definitions count as macro items; other invocations are
// expressions.
func item(c *cursor.Cursor, attrs []ast.Attr, inBlock bool) (ast.Item, error) {
	head := ast.ItemHead{Attrs: attrs}
	if peekWord(c) == "pub" {
		vis, err := visibility(c)
		if err != nil {
			return nil, err
		}
		head.Vis = &vis
	}
	alts := []cursor.Parser[ast.Item]{
		fnItem, constItem, structItem, enumItem, useItem, typeAliasItem,
		modItem, traitItem, implItem, externCrateItem, externBlockItem,
	}
	if !inBlock || peekWord(c) == "macro_rules" {
		alts = append(alts, macroItem)
	}
	it, err := cursor.OneOf(c, alts...)
	if err != nil {
		if head.Vis != nil {
			return nil, cursor.AsFatal(err)
		}
		return nil, err
	}
	*it.Header() = head
	return it, nil
}

func fnItem(c *cursor.Cursor) (ast.Item, error) {
	f := &ast.Fn{}
	var err error
	if f.Quals, err = fnQuals(c, true); err != nil {
		return nil, err
	}
	if f.Fn, err = keyword("fn")(c); err != nil {
		return nil, err
	}
	if f.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if f.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if f.Params, err = must(c, func(c *cursor.Cursor) (ast.Delimited[ast.Param], error) {
		return delimited(c, "(", param, ")")
	}); err != nil {
		return nil, err
	}
	if f.Ret, err = retType(c); err != nil {
		return nil, err
	}
	if f.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	if f.Semi, err = opt(c, punct(";")); err != nil || f.Semi != nil {
		return f, err
	}
	body, err := must(c, block)
	if err != nil {
		return nil, err
	}
	f.Body = &body
	return f, nil
}

func param(c *cursor.Cursor) (ast.Param, error) {
	var p ast.Param
	var err error
	if p.Attrs, err = outerAttrs(c); err != nil {
		return p, err
	}
	if p.Self, err = opt(c, selfParam); err != nil || p.Self != nil {
		return p, err
	}
	if p.Dots, err = opt(c, punct("...")); err != nil || p.Dots != nil {
		return p, err
	}
	if p.Pat, err = pattern(c); err != nil {
		return p, err
	}
	colon, err := must(c, punct(":"))
	if err != nil {
		return p, err
	}
	p.Colon = &colon
	if p.Dots, err = opt(c, punct("...")); err != nil || p.Dots != nil {
		return p, err
	}
	p.Type, err = must(c, typ)
	return p, err
}

func selfParam(c *cursor.Cursor) (ast.SelfParam, error) {
	var sp ast.SelfParam
	var err error
	if sp.Amp, err = opt(c, punct("&")); err != nil {
		return sp, err
	}
	if sp.Amp != nil {
		if sp.Lifetime, err = opt(c, lifetime); err != nil {
			return sp, err
		}
	}
	if sp.Mut, err = opt(c, keyword("mut")); err != nil {
		return sp, err
	}
	if sp.Self, err = keyword("self")(c); err != nil {
		return sp, err
	}
	if peekPrefix(c, "::") {
		return sp, fail(c, "`:`")
	}
	if sp.Colon, err = opt(c, punct(":")); err != nil || sp.Colon == nil {
		return sp, err
	}
	sp.Type, err = must(c, typ)
	return sp, err
}

// constItem parses `const` and `static` items.
func constItem(c *cursor.Cursor) (ast.Item, error) {
	k := &ast.Const{}
	var err error
	if k.Kw, err = cursor.OneOf(c, keyword("const"), keyword("static")); err != nil {
		return nil, err
	}
	if c.Text(k.Kw.Span()) == "static" {
		if k.Mut, err = opt(c, keyword("mut")); err != nil {
			return nil, err
		}
	}
	// `const {` is a block expression, `static |x|` a closure
	if k.Name, err = cursor.OneOf(c, ident, keyword("_")); err != nil {
		return nil, err
	}
	if k.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if k.Colon, err = opt(c, punct(":")); err != nil {
		return nil, err
	}
	if k.Colon != nil {
		if k.Type, err = must(c, typ); err != nil {
			return nil, err
		}
	}
	if k.Eq, err = opt(c, punct("=")); err != nil {
		return nil, err
	}
	if k.Eq != nil {
		if k.Value, err = must(c, expr); err != nil {
			return nil, err
		}
	}
	k.Semi, err = must(c, punct(";"))
	return k, err
}

// structItem parses `struct` and `union` items.
func structItem(c *cursor.Cursor) (ast.Item, error) {
	s := &ast.Struct{}
	var err error
	if s.Kw, err = cursor.OneOf(c, keyword("struct"), keyword("union")); err != nil {
		return nil, err
	}
	isUnion := c.Text(s.Kw.Span()) == "union"
	if isUnion {
		// union is contextual
		if s.Name, err = ident(c); err != nil {
			return nil, err
		}
	} else if s.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if s.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if s.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	switch peekByte(c) {
	case '{':
		nf, err := must(c, namedFields)
		if err != nil {
			return nil, err
		}
		s.Named = &nf
		return s, nil
	case '(':
		tf, err := must(c, tupleFields)
		if err != nil {
			return nil, err
		}
		s.Tuple = &tf
		if s.TailWhere, err = whereClause(c); err != nil {
			return nil, err
		}
	}
	semi, err := must(c, punct(";"))
	if err != nil {
		return nil, err
	}
	s.Semi = &semi
	return s, nil
}

func namedFields(c *cursor.Cursor) (ast.NamedFields, error) {
	d, err := delimited(c, "{", fieldDef, "}")
	return ast.NamedFields{Open: d.Open, Fields: d.List, Close: d.Close}, err
}

func fieldDef(c *cursor.Cursor) (ast.FieldDef, error) {
	var f ast.FieldDef
	var err error
	if f.Attrs, err = outerAttrs(c); err != nil {
		return f, err
	}
	if peekWord(c) == "pub" {
		vis, err := visibility(c)
		if err != nil {
			return f, err
		}
		f.Vis = &vis
	}
	if f.Name, err = must(c, ident); err != nil {
		return f, err
	}
	if f.Colon, err = must(c, punct(":")); err != nil {
		return f, err
	}
	f.Type, err = must(c, typ)
	return f, err
}

func tupleFields(c *cursor.Cursor) (ast.TupleFields, error) {
	d, err := delimited(c, "(", tupleField, ")")
	return ast.TupleFields{Open: d.Open, Fields: d.List, Close: d.Close}, err
}

func tupleField(c *cursor.Cursor) (ast.TupleField, error) {
	var f ast.TupleField
	var err error
	if f.Attrs, err = outerAttrs(c); err != nil {
		return f, err
	}
	if peekWord(c) == "pub" {
		vis, err := visibility(c)
		if err != nil {
			return f, err
		}
		f.Vis = &vis
	}
	f.Type, err = must(c, typ)
	return f, err
}

func enumItem(c *cursor.Cursor) (ast.Item, error) {
	e := &ast.Enum{}
	var err error
	if e.Enum, err = keyword("enum")(c); err != nil {
		return nil, err
	}
	if e.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if e.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if e.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	d, err := must(c, func(c *cursor.Cursor) (ast.Delimited[ast.Variant], error) {
		return delimited(c, "{", variant, "}")
	})
	if err != nil {
		return nil, err
	}
	e.Open, e.Variants, e.Close = d.Open, d.List, d.Close
	return e, nil
}

func variant(c *cursor.Cursor) (ast.Variant, error) {
	var v ast.Variant
	var err error
	if v.Attrs, err = outerAttrs(c); err != nil {
		return v, err
	}
	if peekWord(c) == "pub" {
		vis, err := visibility(c)
		if err != nil {
			return v, err
		}
		v.Vis = &vis
	}
	if v.Name, err = ident(c); err != nil {
		return v, err
	}
	switch peekByte(c) {
	case '{':
		nf, err := must(c, namedFields)
		if err != nil {
			return v, err
		}
		v.Named = &nf
	case '(':
		tf, err := must(c, tupleFields)
		if err != nil {
			return v, err
		}
		v.Tuple = &tf
	}
	if v.Eq, err = opt(c, punct("=")); err != nil || v.Eq == nil {
		return v, err
	}
	v.Disc, err = must(c, expr)
	return v, err
}

func useItem(c *cursor.Cursor) (ast.Item, error) {
	u := &ast.Use{}
	var err error
	if u.Use, err = keyword("use")(c); err != nil {
		return nil, err
	}
	if u.Tree, err = must(c, useTree); err != nil {
		return nil, err
	}
	u.Semi, err = must(c, punct(";"))
	return u, err
}

func useTree(c *cursor.Cursor) (ast.UseTree, error) {
	var t ast.UseTree
	var err error
	if t.Leading, err = opt(c, punct("::")); err != nil {
		return t, err
	}
	for {
		switch peekByte(c) {
		case '*':
			t.Star, err = opt(c, punct("*"))
			return t, err
		case '{':
			g, err := delimited(c, "{", useTree, "}")
			if err != nil {
				return t, err
			}
			t.Group = &g
			return t, nil
		}
		seg, err := segmentName(c)
		if err != nil {
			return t, err
		}
		t.Segments = append(t.Segments, seg)
		sep, err := opt(c, punct("::"))
		if err != nil {
			return t, err
		}
		if sep == nil {
			break
		}
		t.Seps = append(t.Seps, *sep)
	}
	if t.As, err = opt(c, keyword("as")); err != nil || t.As == nil {
		return t, err
	}
	rename, err := must(c, func(c *cursor.Cursor) (ast.Token, error) {
		return cursor.OneOf(c, ident, keyword("_"))
	})
	t.Rename = &rename
	return t, err
}

func typeAliasItem(c *cursor.Cursor) (ast.Item, error) {
	t := &ast.TypeAlias{}
	var err error
	if t.Type, err = keyword("type")(c); err != nil {
		return nil, err
	}
	if t.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if t.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if t.Colon, err = opt(c, punct(":")); err != nil {
		return nil, err
	}
	if t.Colon != nil {
		bs, err := must(c, bounds)
		if err != nil {
			return nil, err
		}
		t.Bounds = &bs
	}
	if t.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	if t.Eq, err = opt(c, punct("=")); err != nil {
		return nil, err
	}
	if t.Eq != nil {
		if t.Value, err = must(c, typ); err != nil {
			return nil, err
		}
	}
	t.Semi, err = must(c, punct(";"))
	return t, err
}

func modItem(c *cursor.Cursor) (ast.Item, error) {
	m := &ast.Mod{}
	var err error
	if m.Unsafe, err = opt(c, keyword("unsafe")); err != nil {
		return nil, err
	}
	if m.Mod, err = keyword("mod")(c); err != nil {
		return nil, err
	}
	if m.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if m.Semi, err = opt(c, punct(";")); err != nil || m.Semi != nil {
		return m, err
	}
	body, err := must(c, itemBlock)
	if err != nil {
		return nil, err
	}
	m.Body = &body
	return m, nil
}

func traitItem(c *cursor.Cursor) (ast.Item, error) {
	t := &ast.Trait{}
	for _, w := range []string{"unsafe", "auto"} {
		kw, err := opt(c, keyword(w))
		if err != nil {
			return nil, err
		}
		if kw != nil {
			t.Quals = append(t.Quals, *kw)
		}
	}
	var err error
	if t.Trait, err = keyword("trait")(c); err != nil {
		return nil, err
	}
	if t.Name, err = must(c, ident); err != nil {
		return nil, err
	}
	if t.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if t.Colon, err = opt(c, punct(":")); err != nil {
		return nil, err
	}
	if t.Colon != nil {
		bs, err := must(c, bounds)
		if err != nil {
			return nil, err
		}
		t.Bounds = &bs
	}
	if t.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	t.Body, err = must(c, itemBlock)
	return t, err
}

func implItem(c *cursor.Cursor) (ast.Item, error) {
	im := &ast.Impl{}
	for _, w := range []string{"default", "unsafe"} {
		kw, err := opt(c, keyword(w))
		if err != nil {
			return nil, err
		}
		if kw != nil {
			im.Quals = append(im.Quals, *kw)
		}
	}
	var err error
	if im.Impl, err = keyword("impl")(c); err != nil {
		return nil, err
	}
	if im.Generics, err = optGenerics(c); err != nil {
		return nil, err
	}
	if im.Const, err = opt(c, keyword("const")); err != nil {
		return nil, err
	}
	if im.Bang, err = opt(c, punct("!")); err != nil {
		return nil, err
	}
	first, err := must(c, typ)
	if err != nil {
		return nil, err
	}
	if im.For, err = opt(c, keyword("for")); err != nil {
		return nil, err
	}
	if im.For != nil {
		im.Trait = first
		if im.Self, err = must(c, typ); err != nil {
			return nil, err
		}
	} else {
		im.Self = first
	}
	if im.Where, err = whereClause(c); err != nil {
		return nil, err
	}
	im.Body, err = must(c, itemBlock)
	return im, err
}

func externCrateItem(c *cursor.Cursor) (ast.Item, error) {
	x := &ast.ExternCrate{}
	var err error
	if x.Extern, err = keyword("extern")(c); err != nil {
		return nil, err
	}
	if x.Crate, err = keyword("crate")(c); err != nil {
		return nil, err
	}
	if x.Name, err = must(c, func(c *cursor.Cursor) (ast.Token, error) {
		return cursor.OneOf(c, ident, keyword("self"))
	}); err != nil {
		return nil, err
	}
	if x.As, err = opt(c, keyword("as")); err != nil {
		return nil, err
	}
	if x.As != nil {
		rename, err := must(c, func(c *cursor.Cursor) (ast.Token, error) {
			return cursor.OneOf(c, ident, keyword("_"))
		})
		if err != nil {
			return nil, err
		}
		x.Rename = &rename
	}
	x.Semi, err = must(c, punct(";"))
	return x, err
}

func externBlockItem(c *cursor.Cursor) (ast.Item, error) {
	x := &ast.ExternBlock{}
	var err error
	if x.Unsafe, err = opt(c, keyword("unsafe")); err != nil {
		return nil, err
	}
	if x.Extern, err = keyword("extern")(c); err != nil {
		return nil, err
	}
	if x.Abi, err = opt(c, literal); err != nil {
		return nil, err
	}
	if !peekPrefix(c, "{") {
		return nil, fail(c, "`{`")
	}
	x.Body, err = itemBlock(c)
	return x, err
}

func macroItem(c *cursor.Cursor) (ast.Item, error) {
	p, err := path(c, modeExpr)
	if err != nil {
		return nil, err
	}
	if !peekPrefix(c, "!") || peekPrefix(c, "!=") {
		return nil, fail(c, "`!`")
	}
	m := &ast.MacroItem{}
	if m.Mac, err = must(c, func(c *cursor.Cursor) (ast.MacroCall, error) { return macroTail(c, p) }); err != nil {
		return nil, err
	}
	if m.Semi, err = opt(c, punct(";")); err != nil {
		return nil, err
	}
	if m.Semi == nil && m.Mac.Tree.Delim != '{' {
		return nil, cursor.AsFatal(fail(c, "`;`"))
	}
	return m, nil
}

// itemBlock parses `{ inner-attrs items }` for modules, traits, impls and
// extern blocks.
func itemBlock(c *cursor.Cursor) (ast.ItemBlock, error) {
	var b ast.ItemBlock
	var err error
	if b.Open, err = punct("{")(c); err != nil {
		return b, err
	}
	if b.Attrs, err = innerAttrs(c); err != nil {
		return b, err
	}
	for {
		done, err := atClose(c, b.Open, "}")
		if err != nil {
			return b, err
		}
		if done {
			break
		}
		it, err := must(c, namedItem)
		if err != nil {
			return b, err
		}
		b.Items = append(b.Items, it)
	}
	b.Close, err = punct("}")(c)
	return b, err
}

// namedItem is an item with its attributes, reported as "expected an item"
// when nothing matches.
func namedItem(c *cursor.Cursor) (ast.Item, error) {
	return cursor.Named("an item", func(c *cursor.Cursor) (ast.Item, error) {
		attrs, err := outerAttrs(c)
		if err != nil {
			return nil, err
		}
		return item(c, attrs, false)
	})(c)
}
