package ast

func (w *walker) typItem(id *TypeID, sp Spacing) { w.typ(*id, sp) }

func (w *walker) typ(id TypeID, lead Spacing) {
	if !id.IsValid() {
		return
	}
	id.With(w.a, func(t *Type) {
		w.typeNode(*t, lead)
	})
}

func (w *walker) typeNode(t Type, lead Spacing) {
	switch n := t.(type) {
	case *PathType:
		w.path(&n.Path, lead)
	case *RefType:
		w.tok(&n.Amp, lead)
		sp := SpaceNone
		if n.Lifetime != nil {
			w.tok(n.Lifetime, SpaceNone)
			sp = SpaceOne
		}
		if n.Mut != nil {
			w.tok(n.Mut, sp)
			sp = SpaceOne
		}
		w.typ(n.Elem, sp)
	case *PtrType:
		w.tok(&n.Star, lead)
		w.tok(&n.Qual, SpaceNone)
		w.typ(n.Elem, SpaceOne)
	case *TupleType:
		inline(w, &n.Elems.Open, lead, &n.Elems.List, &n.Elems.Close, w.typItem)
	case *ParenType:
		w.tok(&n.Open, lead)
		w.typ(n.Inner, SpaceNone)
		w.tok(&n.Close, SpaceNone)
	case *SliceType:
		w.tok(&n.Open, lead)
		w.typ(n.Elem, SpaceNone)
		w.tok(&n.Close, SpaceNone)
	case *ArrayType:
		w.tok(&n.Open, lead)
		w.typ(n.Elem, SpaceNone)
		w.tok(&n.Semi, SpaceNone)
		w.expr(n.Len, SpaceOne)
		w.tok(&n.Close, SpaceNone)
	case *NeverType:
		w.tok(&n.Bang, lead)
	case *InferType:
		w.tok(&n.Tok, lead)
	case *BoundsType:
		sp := w.opt(n.Kw, lead)
		w.bounds(&n.Bounds, sp)
	case *FnPtrType:
		sp := lead
		if n.For != nil {
			w.forLifetimes(n.For, sp)
			sp = SpaceOne
		}
		for i := range n.Quals {
			w.tok(&n.Quals[i], sp)
			sp = SpaceOne
		}
		w.tok(&n.Fn, sp)
		inline(w, &n.Params.Open, SpaceNone, &n.Params.List, &n.Params.Close, func(p *FnPtrParam, sp Spacing) {
			sp = w.attrs(p.Attrs, sp, SpaceOne)
			if p.Dots != nil {
				w.tok(p.Dots, sp)
				return
			}
			if p.Name != nil {
				w.tok(p.Name, sp)
				w.tok(p.Colon, SpaceNone)
				sp = SpaceOne
			}
			w.typ(p.Type, sp)
		})
		w.ret(n.Ret)
	case *MacroType:
		w.macro(&n.Mac, lead)
	}
}
