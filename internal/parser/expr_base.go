package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
)

func exprBase(c *cursor.Cursor) (ast.Expr, error) {
	noStruct := c.HasTag(NoStructLiteral)
	allowLet := c.HasTag(AllowLet)
	switch b := peekByte(c); {
	case b == '(':
		return parenExpr(c)
	case b == '[':
		return arrayExpr(c)
	case b == '{':
		blk, err := block(c)
		return &ast.BlockExpr{Block: blk}, err
	case b == '\'':
		if lit, err := opt(c, literal); err != nil || lit != nil {
			if err != nil {
				return nil, err
			}
			return &ast.Lit{Tok: *lit}, nil
		}
		return labeled(c)
	case b >= '0' && b <= '9', b == '"':
		lit, err := literal(c)
		return &ast.Lit{Tok: lit}, err
	case b == '.':
		op, err := punct("..")(c)
		return &ast.RangeFull{Op: op}, err
	case b == '|':
		return closure(c, nil)
	case b == '<', b == ':':
		return pathExpr(c, noStruct)
	case b == 'b', b == 'c', b == 'r':
		if lit, err := opt(c, literal); err != nil || lit != nil {
			if err != nil {
				return nil, err
			}
			return &ast.Lit{Tok: *lit}, nil
		}
	}
	switch peekWord(c) {
	case "":
		return nil, fail(c, "an expression")
	case "true", "false":
		lit, err := literal(c)
		return &ast.Lit{Tok: lit}, err
	case "_":
		tok, err := keyword("_")(c)
		return &ast.Underscore{Tok: tok}, err
	case "let":
		if !allowLet {
			return nil, fail(c, "an expression")
		}
		return letExpr(c)
	case "if":
		return ifExpr(c)
	case "match":
		return matchExpr(c)
	case "while":
		return whileExpr(c, nil)
	case "loop":
		return loopExpr(c, nil)
	case "for":
		return forExpr(c, nil)
	case "unsafe", "const", "try":
		return kwBlock(c)
	case "async", "move", "static":
		return asyncOrClosure(c)
	case "return", "yield", "become":
		return valueJump(c)
	case "break":
		return breakExpr(c)
	case "continue":
		kw, err := keyword("continue")(c)
		if err != nil {
			return nil, err
		}
		label, err := opt(c, lifetime)
		return &ast.Continue{Kw: kw, Label: label}, err
	}
	return pathExpr(c, noStruct)
}

// pathExpr parses a path and what may hang off it: a macro call or a
// struct literal.
func pathExpr(c *cursor.Cursor, noStruct bool) (ast.Expr, error) {
	p, err := path(c, modeExpr)
	if err != nil {
		return nil, err
	}
	if peekPrefix(c, "!") && !peekPrefix(c, "!=") {
		m, err := opt(c, func(c *cursor.Cursor) (ast.MacroCall, error) { return macroTail(c, p) })
		if err != nil {
			return nil, err
		}
		if m != nil {
			return &ast.MacroExpr{Mac: *m}, nil
		}
	}
	if !noStruct && peekPrefix(c, "{") {
		sl, err := opt(c, func(c *cursor.Cursor) (*ast.StructLit, error) { return structLit(c, p) })
		if err != nil {
			return nil, err
		}
		if sl != nil {
			return *sl, nil
		}
	}
	return &ast.PathExpr{Path: p}, nil
}

func structLit(c *cursor.Cursor, p ast.Path) (*ast.StructLit, error) {
	sl := &ast.StructLit{Path: p}
	var err error
	if sl.Open, err = punct("{")(c); err != nil {
		return nil, err
	}
	for !peekPrefix(c, "}") {
		if peekPrefix(c, "..") && !peekPrefix(c, "..=") {
			if sl.Dots, err = opt(c, punct("..")); err != nil {
				return nil, err
			}
			if !peekPrefix(c, "}") {
				if sl.Base, err = must(c, expr); err != nil {
					return nil, err
				}
			}
			break
		}
		f, err := fieldInit(c)
		if err != nil {
			return nil, err
		}
		sl.Fields.Items = append(sl.Fields.Items, f)
		comma, err := opt(c, punct(","))
		if err != nil {
			return nil, err
		}
		if comma == nil {
			break
		}
		sl.Fields.Seps = append(sl.Fields.Seps, *comma)
	}
	sl.Close, err = punct("}")(c)
	return sl, err
}

func fieldInit(c *cursor.Cursor) (ast.FieldInit, error) {
	var f ast.FieldInit
	var err error
	if f.Attrs, err = outerAttrs(c); err != nil {
		return f, err
	}
	if f.Name, err = cursor.OneOf(c, ident, tupleIndex); err != nil {
		return f, err
	}
	if f.Colon, err = opt(c, punct(":")); err != nil {
		return f, err
	}
	if f.Colon == nil {
		if f.Name.Kind != ast.TokIdent {
			return f, fail(c, "`:`")
		}
		return f, nil
	}
	f.Value, err = must(c, expr)
	return f, err
}

// parenExpr is `()`, `(e)` or a tuple.
func parenExpr(c *cursor.Cursor) (ast.Expr, error) {
	d, err := delimited(c, "(", expr, ")")
	if err != nil {
		return nil, err
	}
	if len(d.List.Items) == 1 && !d.List.TrailingSep() {
		return &ast.Paren{Open: d.Open, Inner: d.List.Items[0], Close: d.Close}, nil
	}
	return &ast.Tuple{Elems: d}, nil
}

// arrayExpr is `[a, b]` or `[x; n]`.
func arrayExpr(c *cursor.Cursor) (ast.Expr, error) {
	arr := &ast.Array{}
	var err error
	if arr.Open, err = punct("[")(c); err != nil {
		return nil, err
	}
	if !peekPrefix(c, "]") {
		first, err := must(c, expr)
		if err != nil {
			return nil, err
		}
		arr.Elems.Items = append(arr.Elems.Items, first)
		if arr.Semi, err = opt(c, punct(";")); err != nil {
			return nil, err
		}
		if arr.Semi != nil {
			if arr.Len, err = must(c, expr); err != nil {
				return nil, err
			}
		} else if comma, err := opt(c, punct(",")); err != nil {
			return nil, err
		} else if comma != nil {
			arr.Elems.Seps = append(arr.Elems.Seps, *comma)
			rest, err := must(c, func(c *cursor.Cursor) (ast.Punctuated[ast.ExprID], error) {
				return punctuated(c, expr, "]")
			})
			if err != nil {
				return nil, err
			}
			arr.Elems.Items = append(arr.Elems.Items, rest.Items...)
			arr.Elems.Seps = append(arr.Elems.Seps, rest.Seps...)
		}
	}
	arr.Close, err = closeDelim(c, arr.Open, "]")
	return arr, err
}

// labeled parses `'label: loop/while/for/{}`.
func labeled(c *cursor.Cursor) (ast.Expr, error) {
	name, err := lifetime(c)
	if err != nil {
		return nil, err
	}
	colon, err := punct(":")(c)
	if err != nil {
		return nil, err
	}
	label := &ast.Label{Name: name, Colon: colon}
	switch peekWord(c) {
	case "while":
		return whileExpr(c, label)
	case "loop":
		return loopExpr(c, label)
	case "for":
		return forExpr(c, label)
	}
	blk, err := must(c, block)
	return &ast.BlockExpr{Label: label, Block: blk}, err
}

// kwBlock parses `unsafe {}`, `const {}` and `try {}`.
func kwBlock(c *cursor.Cursor) (ast.Expr, error) {
	kw, err := cursor.OneOf(c, keyword("unsafe"), keyword("const"), keyword("try"))
	if err != nil {
		return nil, err
	}
	if !peekPrefix(c, "{") {
		return nil, fail(c, "`{`")
	}
	blk, err := block(c)
	return &ast.BlockExpr{Kws: []ast.Token{kw}, Block: blk}, err
}

// asyncOrClosure parses `async [move] {}` or a closure with leading
// `static` / `async` / `move`.
func asyncOrClosure(c *cursor.Cursor) (ast.Expr, error) {
	var kws []ast.Token
	for _, w := range []string{"static", "async", "move"} {
		kw, err := opt(c, keyword(w))
		if err != nil {
			return nil, err
		}
		if kw != nil {
			kws = append(kws, *kw)
		}
	}
	if len(kws) == 0 {
		return nil, fail(c, "an expression")
	}
	if c.Text(kws[0].Span()) == "async" && peekPrefix(c, "{") {
		// async [move] block
		blk, err := block(c)
		return &ast.BlockExpr{Kws: kws, Block: blk}, err
	}
	if !peekPrefix(c, "|") {
		return nil, fail(c, "`|`")
	}
	return closure(c, kws)
}

func closure(c *cursor.Cursor, kws []ast.Token) (ast.Expr, error) {
	cl := &ast.Closure{Kws: kws}
	var err error
	if peekPrefix(c, "||") {
		if cl.OrOr, err = opt(c, punct("||")); err != nil {
			return nil, err
		}
	} else {
		open, err := splitPunct("|")(c)
		if err != nil {
			return nil, err
		}
		cl.Open = &open
		if cl.Params, err = must(c, func(c *cursor.Cursor) (ast.Punctuated[ast.ClosureParam], error) {
			return punctuated(c, closureParam, "|")
		}); err != nil {
			return nil, err
		}
		closing, err := must(c, splitPunct("|"))
		if err != nil {
			return nil, err
		}
		cl.Close = &closing
	}
	if cl.Ret, err = retType(c); err != nil {
		return nil, err
	}
	if cl.Ret != nil {
		// an explicit return type needs a block body
		blk, err := must(c, block)
		if err != nil {
			return nil, err
		}
		cl.Body = arena.New[ast.Expr](c.Arena(), &ast.BlockExpr{Block: blk})
		return cl, nil
	}
	cl.Body, err = must(c, expr)
	return cl, err
}

func closureParam(c *cursor.Cursor) (ast.ClosureParam, error) {
	var p ast.ClosureParam
	var err error
	if p.Attrs, err = outerAttrs(c); err != nil {
		return p, err
	}
	if p.Pat, err = closureParamPattern(c); err != nil {
		return p, err
	}
	if p.Colon, err = opt(c, punct(":")); err != nil || p.Colon == nil {
		return p, err
	}
	p.Type, err = must(c, typ)
	return p, err
}

// jumpValue parses the optional operand of return / break / yield.
func jumpValue(c *cursor.Cursor) (ast.ExprID, error) {
	v, err := opt(c, expr)
	if err != nil || v == nil {
		return ast.NoExpr, err
	}
	return *v, nil
}

func valueJump(c *cursor.Cursor) (ast.Expr, error) {
	kw, err := cursor.OneOf(c, keyword("return"), keyword("yield"), keyword("become"))
	if err != nil {
		return nil, err
	}
	v, err := jumpValue(c)
	if err != nil {
		return nil, err
	}
	if c.Text(kw.Span()) == "yield" {
		return &ast.Yield{Kw: kw, Value: v}, nil
	}
	return &ast.Return{Kw: kw, Value: v}, nil
}

func breakExpr(c *cursor.Cursor) (ast.Expr, error) {
	kw, err := keyword("break")(c)
	if err != nil {
		return nil, err
	}
	br := &ast.Break{Kw: kw}
	if br.Label, err = opt(c, lifetime); err != nil {
		return nil, err
	}
	br.Value, err = jumpValue(c)
	return br, err
}

func letExpr(c *cursor.Cursor) (ast.Expr, error) {
	let, err := keyword("let")(c)
	if err != nil {
		return nil, err
	}
	l := &ast.Let{Let: let}
	if l.Pat, err = must(c, pattern); err != nil {
		return nil, err
	}
	if l.Eq, err = must(c, punct("=")); err != nil {
		return nil, err
	}
	l.Value, err = must(c, func(c *cursor.Cursor) (ast.ExprID, error) {
		return cursor.WithTags(c, letCondTags, expr)
	})
	return l, err
}

func ifExpr(c *cursor.Cursor) (ast.Expr, error) {
	kw, err := keyword("if")(c)
	if err != nil {
		return nil, err
	}
	n := &ast.If{If: kw}
	if n.Cond, err = must(c, condExpr); err != nil {
		return nil, err
	}
	if n.Then, err = must(c, block); err != nil {
		return nil, err
	}
	if n.Else, err = opt(c, keyword("else")); err != nil || n.Else == nil {
		return n, err
	}
	if peekWord(c) == "if" {
		next, err := ifExpr(c)
		if err != nil {
			return nil, err
		}
		n.Next = arena.New(c.Arena(), next)
		return n, nil
	}
	blk, err := must(c, block)
	if err != nil {
		return nil, err
	}
	n.Next = arena.New[ast.Expr](c.Arena(), &ast.BlockExpr{Block: blk})
	return n, nil
}

func whileExpr(c *cursor.Cursor, label *ast.Label) (ast.Expr, error) {
	kw, err := keyword("while")(c)
	if err != nil {
		return nil, err
	}
	n := &ast.While{Label: label, While: kw}
	if n.Cond, err = must(c, condExpr); err != nil {
		return nil, err
	}
	n.Body, err = must(c, block)
	return n, err
}

func loopExpr(c *cursor.Cursor, label *ast.Label) (ast.Expr, error) {
	kw, err := keyword("loop")(c)
	if err != nil {
		return nil, err
	}
	n := &ast.Loop{Label: label, Loop: kw}
	n.Body, err = must(c, block)
	return n, err
}

func forExpr(c *cursor.Cursor, label *ast.Label) (ast.Expr, error) {
	kw, err := keyword("for")(c)
	if err != nil {
		return nil, err
	}
	n := &ast.For{Label: label, For: kw}
	if n.Pat, err = must(c, pattern); err != nil {
		return nil, err
	}
	if n.In, err = must(c, keyword("in")); err != nil {
		return nil, err
	}
	if n.Iter, err = must(c, scrutinee); err != nil {
		return nil, err
	}
	n.Body, err = must(c, block)
	return n, err
}

func matchExpr(c *cursor.Cursor) (ast.Expr, error) {
	kw, err := keyword("match")(c)
	if err != nil {
		return nil, err
	}
	m := &ast.Match{Match: kw}
	if m.Scrutinee, err = must(c, scrutinee); err != nil {
		return nil, err
	}
	if m.Open, err = must(c, punct("{")); err != nil {
		return nil, err
	}
	if m.Attrs, err = innerAttrs(c); err != nil {
		return nil, err
	}
	for {
		done, err := atClose(c, m.Open, "}")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		arm, err := must(c, matchArm)
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, arm)
		if arm.Comma == nil && !peekPrefix(c, "}") {
			if blockLikeArm(c, arm) {
				continue
			}
			if _, err := whitespace(c); err != nil {
				return nil, err
			}
			if c.EOF() {
				return nil, c.Unclosed(m.Open.Span(), "}")
			}
			return nil, cursor.AsFatal(c.Expected("`,`", "`}`"))
		}
	}
	m.Close, err = punct("}")(c)
	return m, err
}

func blockLikeArm(c *cursor.Cursor, arm ast.MatchArm) bool {
	return ast.BlockLike(arm.Body.Get(c.Arena()))
}

// atClose reports whether closing is next. The end of input is fatal.
func atClose(c *cursor.Cursor, open ast.Token, closing string) (bool, error) {
	ps, err := cursor.Peek(c, func(c *cursor.Cursor) (byte, error) {
		if _, err := whitespace(c); err != nil {
			return 0, err
		}
		if c.EOF() {
			return 0, c.Unclosed(open.Span(), closing)
		}
		return c.Byte(), nil
	})
	if err != nil {
		return false, err
	}
	return ps.Value() == closing[0], nil
}

func matchArm(c *cursor.Cursor) (ast.MatchArm, error) {
	var arm ast.MatchArm
	var err error
	if arm.Attrs, err = outerAttrs(c); err != nil {
		return arm, err
	}
	if arm.Bar, err = opt(c, punct("|")); err != nil {
		return arm, err
	}
	if arm.Pat, err = pattern(c); err != nil {
		return arm, err
	}
	if arm.If, err = opt(c, keyword("if")); err != nil {
		return arm, err
	}
	if arm.If != nil {
		if arm.Guard, err = must(c, func(c *cursor.Cursor) (ast.ExprID, error) {
			return cursor.WithTag(c, AllowLet, expr)
		}); err != nil {
			return arm, err
		}
	}
	if arm.Arrow, err = punct("=>")(c); err != nil {
		return arm, err
	}
	if arm.Body, _, err = stmtExpr(c); err != nil {
		return arm, cursor.AsFatal(err)
	}
	arm.Comma, err = opt(c, punct(","))
	return arm, err
}
