package ast

func (w *walker) patItem(id *PatID, sp Spacing) { w.pat(*id, sp) }

func (w *walker) pat(id PatID, lead Spacing) {
	if !id.IsValid() {
		return
	}
	id.With(w.a, func(p *Pat) {
		w.patNode(*p, lead)
	})
}

func (w *walker) patNode(p Pat, lead Spacing) {
	switch n := p.(type) {
	case *RefPat:
		w.tok(&n.Amp, lead)
		sp := SpaceNone
		if n.Mut != nil {
			w.tok(n.Mut, SpaceNone)
			sp = SpaceOne
		}
		w.pat(n.Inner, sp)
	case *WildPat:
		w.tok(&n.Tok, lead)
	case *RestPat:
		w.tok(&n.Tok, lead)
	case *LitPat:
		sp := w.opt(n.Minus, lead)
		if n.Minus != nil {
			sp = SpaceNone
		}
		w.tok(&n.Lit, sp)
	case *IdentPat:
		sp := w.opt(n.Ref, lead)
		sp = w.opt(n.Mut, sp)
		w.tok(&n.Name, sp)
	case *TuplePat:
		inline(w, &n.Elems.Open, lead, &n.Elems.List, &n.Elems.Close, w.patItem)
	case *ParenPat:
		w.tok(&n.Open, lead)
		w.pat(n.Inner, SpaceNone)
		w.tok(&n.Close, SpaceNone)
	case *SlicePat:
		inline(w, &n.Elems.Open, lead, &n.Elems.List, &n.Elems.Close, w.patItem)
	case *PathPat:
		w.path(&n.Path, lead)
	case *TupleStructPat:
		w.enter("TupleStructPat")
		w.path(&n.Path, lead)
		inline(w, &n.Elems.Open, SpaceNone, &n.Elems.List, &n.Elems.Close, w.patItem)
		w.leave()
	case *StructPat:
		w.enter("StructPat")
		w.path(&n.Path, lead)
		empty := len(n.Fields.Items) == 0 && n.Dots == nil
		w.braced(&n.Open, &n.Close, SpaceOne, empty, func(inner Spacing) {
			entries(w, &n.Fields, inner, func(f *FieldPat, sp Spacing) {
				sp = w.attrs(f.Attrs, sp, SpaceAutoOne)
				sp = w.opt(f.Ref, sp)
				sp = w.opt(f.Mut, sp)
				w.tok(&f.Name, sp)
				if f.Colon != nil {
					w.tok(f.Colon, SpaceNone)
					w.pat(f.Pat, SpaceOne)
				}
			})
			if n.Dots != nil {
				w.tok(n.Dots, inner)
			}
		})
		w.leave()
	case *MacroPat:
		w.macro(&n.Mac, lead)
	case *BinPat:
		w.pat(n.Lhs, lead)
		switch op := &n.Op.Op; w.src.Text(op.Text) {
		case "|":
			w.tok(op, SpaceAutoOne)
			w.pat(n.Rhs, SpaceOne)
		case "@":
			w.tok(op, SpaceOne)
			w.pat(n.Rhs, SpaceOne)
		default:
			w.tok(op, SpaceNone)
			w.pat(n.Rhs, SpaceNone)
		}
	case *RangeFromPat:
		w.pat(n.Start, lead)
		w.tok(&n.Op, SpaceNone)
	case *RangeToPat:
		w.tok(&n.Op, lead)
		w.pat(n.End, SpaceNone)
	}
}
