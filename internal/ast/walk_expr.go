package ast

func (w *walker) exprItem(id *ExprID, sp Spacing) { w.expr(*id, sp) }

func (w *walker) expr(id ExprID, lead Spacing) {
	if !id.IsValid() {
		return
	}
	id.With(w.a, func(e *Expr) {
		w.exprNode(*e, lead)
	})
}

func (w *walker) exprNode(e Expr, lead Spacing) {
	switch n := e.(type) {
	case *Lit:
		w.tok(&n.Tok, lead)
	case *PathExpr:
		w.path(&n.Path, lead)
	case *StructLit:
		w.enter("StructLit")
		w.path(&n.Path, lead)
		empty := len(n.Fields.Items) == 0 && n.Dots == nil
		w.braced(&n.Open, &n.Close, SpaceOne, empty, func(inner Spacing) {
			entries(w, &n.Fields, inner, func(f *FieldInit, sp Spacing) {
				sp = w.attrs(f.Attrs, sp, SpaceAutoOne)
				w.tok(&f.Name, sp)
				if f.Colon != nil {
					w.tok(f.Colon, SpaceNone)
					w.expr(f.Value, SpaceOne)
				}
			})
			if n.Dots != nil {
				w.tok(n.Dots, inner)
				w.expr(n.Base, SpaceNone)
			}
		})
		w.leave()
	case *Paren:
		w.enter("Paren")
		w.tok(&n.Open, lead)
		w.v.Indent()
		w.expr(n.Inner, SpaceAutoNone)
		w.v.Dedent()
		w.tok(&n.Close, SpaceAutoNone)
		w.leave()
	case *Tuple:
		w.enter("Tuple")
		inline(w, &n.Elems.Open, lead, &n.Elems.List, &n.Elems.Close, w.exprItem)
		w.leave()
	case *Array:
		w.enter("Array")
		w.tok(&n.Open, lead)
		w.v.Indent()
		for i := range n.Elems.Items {
			sp := SpaceAutoOne
			if i == 0 {
				sp = SpaceAutoNone
			}
			w.expr(n.Elems.Items[i], sp)
			if i < len(n.Elems.Seps) {
				w.tok(&n.Elems.Seps[i], SpaceNone)
			}
		}
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
			w.expr(n.Len, SpaceOne)
		}
		w.v.Dedent()
		w.tok(&n.Close, SpaceAutoNone)
		w.leave()
	case *BlockExpr:
		w.enter("BlockExpr")
		sp := w.label(n.Label, lead)
		for i := range n.Kws {
			w.tok(&n.Kws[i], sp)
			sp = SpaceOne
		}
		w.block(&n.Block, sp)
		w.leave()
	case *If:
		w.enter("If")
		w.tok(&n.If, lead)
		w.expr(n.Cond, SpaceOne)
		w.block(&n.Then, SpaceOne)
		if n.Else != nil {
			w.tok(n.Else, SpaceOne)
			w.expr(n.Next, SpaceOne)
		}
		w.leave()
	case *Match:
		w.enter("Match")
		w.tok(&n.Match, lead)
		w.expr(n.Scrutinee, SpaceOne)
		empty := len(n.Attrs) == 0 && len(n.Arms) == 0
		w.braced(&n.Open, &n.Close, SpaceOne, empty, func(inner Spacing) {
			w.attrs(n.Attrs, inner, inner)
			for i := range n.Arms {
				w.arm(&n.Arms[i], inner)
			}
		})
		w.leave()
	case *While:
		w.enter("While")
		w.tok(&n.While, w.label(n.Label, lead))
		w.expr(n.Cond, SpaceOne)
		w.block(&n.Body, SpaceOne)
		w.leave()
	case *Loop:
		w.enter("Loop")
		w.tok(&n.Loop, w.label(n.Label, lead))
		w.block(&n.Body, SpaceOne)
		w.leave()
	case *For:
		w.enter("For")
		w.tok(&n.For, w.label(n.Label, lead))
		w.pat(n.Pat, SpaceOne)
		w.tok(&n.In, SpaceOne)
		w.expr(n.Iter, SpaceOne)
		w.block(&n.Body, SpaceOne)
		w.leave()
	case *Closure:
		w.enter("Closure")
		sp := lead
		for i := range n.Kws {
			w.tok(&n.Kws[i], sp)
			sp = SpaceOne
		}
		if n.OrOr != nil {
			w.tok(n.OrOr, sp)
		} else {
			w.tok(n.Open, sp)
			for i := range n.Params.Items {
				p := &n.Params.Items[i]
				psp := SpaceOne
				if i == 0 {
					psp = SpaceNone
				}
				psp = w.attrs(p.Attrs, psp, SpaceOne)
				w.pat(p.Pat, psp)
				if p.Colon != nil {
					w.tok(p.Colon, SpaceNone)
					w.typ(p.Type, SpaceOne)
				}
				if i < len(n.Params.Seps) {
					w.tok(&n.Params.Seps[i], SpaceNone)
				}
			}
			w.tok(n.Close, SpaceNone)
		}
		w.ret(n.Ret)
		w.expr(n.Body, SpaceOne)
		w.leave()
	case *Return:
		w.tok(&n.Kw, lead)
		w.expr(n.Value, SpaceOne)
	case *Yield:
		w.tok(&n.Kw, lead)
		w.expr(n.Value, SpaceOne)
	case *Break:
		w.tok(&n.Kw, lead)
		w.opt(n.Label, SpaceOne)
		w.expr(n.Value, SpaceOne)
	case *Continue:
		w.tok(&n.Kw, lead)
		w.opt(n.Label, SpaceOne)
	case *MacroExpr:
		w.macro(&n.Mac, lead)
	case *RangeFull:
		w.tok(&n.Op, lead)
	case *Let:
		w.enter("Let")
		w.tok(&n.Let, lead)
		w.pat(n.Pat, SpaceOne)
		w.tok(&n.Eq, SpaceOne)
		w.expr(n.Value, SpaceOne)
		w.leave()
	case *Underscore:
		w.tok(&n.Tok, lead)
	case *Unary:
		w.enter("Unary")
		w.tok(&n.Op.Op, lead)
		sp := SpaceNone
		if n.Op.Raw != nil {
			w.tok(n.Op.Raw, SpaceNone)
			sp = SpaceOne
		}
		if n.Op.Mut != nil {
			w.tok(n.Op.Mut, sp)
			sp = SpaceOne
		}
		w.expr(n.Operand, sp)
		w.leave()
	case *Binary:
		w.enter("Binary")
		w.expr(n.Lhs, lead)
		cont := w.broken(&n.Op.Op) || w.broken(w.firstExprTok(n.Rhs))
		if cont {
			w.v.Indent()
		}
		sp := SpaceAutoOne
		if op := w.src.Text(n.Op.Op.Text); op == ".." || op == "..=" {
			// ranges are written tight: `0..n`
			sp = SpaceNone
		}
		w.tok(&n.Op.Op, sp)
		w.expr(n.Rhs, sp)
		if cont {
			w.v.Dedent()
		}
		w.leave()
	case *Call:
		w.enter("Call")
		w.expr(n.Callee, lead)
		inline(w, &n.Args.Open, SpaceNone, &n.Args.List, &n.Args.Close, w.exprItem)
		w.leave()
	case *MethodCall:
		w.enter("MethodCall")
		w.expr(n.Recv, lead)
		w.chained(&n.Dot, func() {
			w.tok(&n.Name, SpaceNone)
			if n.Turbofish != nil {
				w.genericArgs(n.Turbofish)
			}
			inline(w, &n.Args.Open, SpaceNone, &n.Args.List, &n.Args.Close, w.exprItem)
		})
		w.leave()
	case *Field:
		w.enter("Field")
		w.expr(n.Recv, lead)
		w.chained(&n.Dot, func() { w.tok(&n.Name, SpaceNone) })
		w.leave()
	case *Await:
		w.enter("Await")
		w.expr(n.Recv, lead)
		w.chained(&n.Dot, func() { w.tok(&n.Kw, SpaceNone) })
		w.leave()
	case *IndexExpr:
		w.enter("Index")
		w.expr(n.Recv, lead)
		w.tok(&n.Open, SpaceNone)
		w.v.Indent()
		w.expr(n.Index, SpaceAutoNone)
		w.v.Dedent()
		w.tok(&n.Close, SpaceAutoNone)
		w.leave()
	case *Try:
		w.expr(n.Operand, lead)
		w.tok(&n.Q, SpaceNone)
	case *Cast:
		w.enter("Cast")
		w.expr(n.Operand, lead)
		w.tok(&n.As, SpaceOne)
		w.typ(n.Type, SpaceOne)
		w.leave()
	case *RangeFrom:
		w.expr(n.Start, lead)
		w.tok(&n.Op, SpaceNone)
	}
}

// chained lays out `.name...` keeping a broken chain one level deeper.
func (w *walker) chained(dot *Token, rest func()) {
	cont := w.broken(dot)
	if cont {
		w.v.Indent()
	}
	w.tok(dot, SpaceAutoNone)
	rest()
	if cont {
		w.v.Dedent()
	}
}

func (w *walker) arm(a *MatchArm, lead Spacing) {
	w.enter("Arm")
	sp := w.attrs(a.Attrs, lead, SpaceLine)
	sp = w.opt(a.Bar, sp)
	w.pat(a.Pat, sp)
	if a.If != nil {
		w.tok(a.If, SpaceOne)
		w.expr(a.Guard, SpaceOne)
	}
	w.tok(&a.Arrow, SpaceOne)
	w.expr(a.Body, SpaceOne)
	if a.Comma != nil {
		w.tok(a.Comma, SpaceNone)
	}
	w.leave()
}

func (w *walker) block(b *Block, lead Spacing) {
	w.enter("Block")
	empty := len(b.Attrs) == 0 && len(b.Stmts) == 0
	w.braced(&b.Open, &b.Close, lead, empty, func(inner Spacing) {
		w.attrs(b.Attrs, inner, inner)
		for _, s := range b.Stmts {
			w.stmt(s, inner)
		}
	})
	w.leave()
}

func (w *walker) stmt(s Stmt, lead Spacing) {
	switch n := s.(type) {
	case *EmptyStmt:
		w.tok(&n.Semi, lead)
	case *LetStmt:
		w.enter("Let")
		sp := w.attrs(n.Attrs, lead, SpaceLine)
		w.tok(&n.Let, sp)
		w.pat(n.Pat, SpaceOne)
		if n.Colon != nil {
			w.tok(n.Colon, SpaceNone)
			w.typ(n.Type, SpaceOne)
		}
		if n.Eq != nil {
			w.tok(n.Eq, SpaceOne)
			w.expr(n.Init, SpaceOne)
		}
		if n.Else != nil {
			w.tok(n.Else, SpaceOne)
			w.block(n.Diverge, SpaceOne)
		}
		w.tok(&n.Semi, SpaceNone)
		w.leave()
	case *ItemStmt:
		w.item(n.Item, lead)
	case *ExprStmt:
		w.enter("ExprStmt")
		sp := w.attrs(n.Attrs, lead, SpaceLine)
		w.expr(n.Expr, sp)
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
		}
		w.leave()
	}
}

// firstExprTok returns the first token of an expression.
func (w *walker) firstExprTok(id ExprID) *Token {
	for id.IsValid() {
		switch n := id.Get(w.a).(type) {
		case *Lit:
			return &n.Tok
		case *PathExpr:
			return firstPathTok(&n.Path)
		case *StructLit:
			return firstPathTok(&n.Path)
		case *Paren:
			return &n.Open
		case *Tuple:
			return &n.Elems.Open
		case *Array:
			return &n.Open
		case *BlockExpr:
			switch {
			case n.Label != nil:
				return &n.Label.Name
			case len(n.Kws) > 0:
				return &n.Kws[0]
			}
			return &n.Block.Open
		case *If:
			return &n.If
		case *Match:
			return &n.Match
		case *While:
			if n.Label != nil {
				return &n.Label.Name
			}
			return &n.While
		case *Loop:
			if n.Label != nil {
				return &n.Label.Name
			}
			return &n.Loop
		case *For:
			if n.Label != nil {
				return &n.Label.Name
			}
			return &n.For
		case *Closure:
			switch {
			case len(n.Kws) > 0:
				return &n.Kws[0]
			case n.OrOr != nil:
				return n.OrOr
			}
			return n.Open
		case *Return:
			return &n.Kw
		case *Break:
			return &n.Kw
		case *Continue:
			return &n.Kw
		case *Yield:
			return &n.Kw
		case *MacroExpr:
			return firstPathTok(&n.Mac.Path)
		case *RangeFull:
			return &n.Op
		case *Let:
			return &n.Let
		case *Underscore:
			return &n.Tok
		case *Unary:
			return &n.Op.Op
		case *Binary:
			id = n.Lhs
		case *Call:
			id = n.Callee
		case *MethodCall:
			id = n.Recv
		case *Field:
			id = n.Recv
		case *Await:
			id = n.Recv
		case *IndexExpr:
			id = n.Recv
		case *Try:
			id = n.Operand
		case *Cast:
			id = n.Operand
		case *RangeFrom:
			id = n.Start
		default:
			return nil
		}
	}
	return nil
}

func firstPathTok(p *Path) *Token {
	switch {
	case p.QSelf != nil:
		return &p.QSelf.Open
	case p.Leading != nil:
		return p.Leading
	case len(p.Segments) > 0:
		return &p.Segments[0].Name
	}
	return nil
}
