package ast

func (w *walker) head(h *ItemHead, lead Spacing) Spacing {
	sp := w.attrs(h.Attrs, lead, SpaceLine)
	if len(h.Attrs) > 0 {
		sp = SpaceLine
	}
	return w.vis(h.Vis, sp)
}

func (w *walker) keywords(kws []Token, sp Spacing) Spacing {
	for i := range kws {
		w.tok(&kws[i], sp)
		sp = SpaceOne
	}
	return sp
}

func (w *walker) item(it Item, lead Spacing) {
	switch n := it.(type) {
	case *Fn:
		w.enter("Fn")
		sp := w.keywords(n.Quals, w.head(&n.ItemHead, lead))
		w.tok(&n.Fn, sp)
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		inline(w, &n.Params.Open, SpaceNone, &n.Params.List, &n.Params.Close, w.param)
		w.ret(n.Ret)
		w.where(n.Where)
		if n.Body != nil {
			w.block(n.Body, w.afterWhere(n.Where))
		}
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
		}
		w.leave()
	case *Struct:
		w.enter("Struct")
		w.tok(&n.Kw, w.head(&n.ItemHead, lead))
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		w.where(n.Where)
		if n.Named != nil {
			w.namedFields(n.Named, w.afterWhere(n.Where))
		}
		if n.Tuple != nil {
			w.tupleFields(n.Tuple)
		}
		w.where(n.TailWhere)
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
		}
		w.leave()
	case *Enum:
		w.enter("Enum")
		w.tok(&n.Enum, w.head(&n.ItemHead, lead))
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		w.where(n.Where)
		w.braced(&n.Open, &n.Close, w.afterWhere(n.Where), len(n.Variants.Items) == 0, func(inner Spacing) {
			entries(w, &n.Variants, inner, w.variant)
		})
		w.leave()
	case *Use:
		w.enter("Use")
		w.tok(&n.Use, w.head(&n.ItemHead, lead))
		w.useTree(&n.Tree, SpaceOne)
		w.tok(&n.Semi, SpaceNone)
		w.leave()
	case *Const:
		w.enter("Const")
		w.tok(&n.Kw, w.head(&n.ItemHead, lead))
		w.opt(n.Mut, SpaceOne)
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		if n.Colon != nil {
			w.tok(n.Colon, SpaceNone)
			w.typ(n.Type, SpaceOne)
		}
		if n.Eq != nil {
			w.tok(n.Eq, SpaceOne)
			w.expr(n.Value, SpaceOne)
		}
		w.tok(&n.Semi, SpaceNone)
		w.leave()
	case *TypeAlias:
		w.enter("TypeAlias")
		w.tok(&n.Type, w.head(&n.ItemHead, lead))
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		if n.Colon != nil {
			w.tok(n.Colon, SpaceNone)
			w.bounds(n.Bounds, SpaceOne)
		}
		w.where(n.Where)
		if n.Eq != nil {
			w.tok(n.Eq, SpaceOne)
			w.typ(n.Value, SpaceOne)
		}
		w.tok(&n.Semi, SpaceNone)
		w.leave()
	case *Mod:
		w.enter("Mod")
		sp := w.opt(n.Unsafe, w.head(&n.ItemHead, lead))
		w.tok(&n.Mod, sp)
		w.tok(&n.Name, SpaceOne)
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
		}
		if n.Body != nil {
			w.itemBlock(n.Body, SpaceOne)
		}
		w.leave()
	case *Trait:
		w.enter("Trait")
		sp := w.keywords(n.Quals, w.head(&n.ItemHead, lead))
		w.tok(&n.Trait, sp)
		w.tok(&n.Name, SpaceOne)
		w.generics(n.Generics, SpaceNone)
		if n.Colon != nil {
			w.tok(n.Colon, SpaceNone)
			w.bounds(n.Bounds, SpaceOne)
		}
		w.where(n.Where)
		w.itemBlock(&n.Body, w.afterWhere(n.Where))
		w.leave()
	case *Impl:
		w.enter("Impl")
		sp := w.keywords(n.Quals, w.head(&n.ItemHead, lead))
		w.tok(&n.Impl, sp)
		w.generics(n.Generics, SpaceNone)
		sp = w.opt(n.Const, SpaceOne)
		if n.Bang != nil {
			w.tok(n.Bang, sp)
			sp = SpaceNone
		}
		if n.Trait.IsValid() {
			w.typ(n.Trait, sp)
			w.tok(n.For, SpaceOne)
			sp = SpaceOne
		}
		w.typ(n.Self, sp)
		w.where(n.Where)
		w.itemBlock(&n.Body, w.afterWhere(n.Where))
		w.leave()
	case *ExternCrate:
		w.enter("ExternCrate")
		w.tok(&n.Extern, w.head(&n.ItemHead, lead))
		w.tok(&n.Crate, SpaceOne)
		w.tok(&n.Name, SpaceOne)
		if n.As != nil {
			w.tok(n.As, SpaceOne)
			w.tok(n.Rename, SpaceOne)
		}
		w.tok(&n.Semi, SpaceNone)
		w.leave()
	case *ExternBlock:
		w.enter("ExternBlock")
		sp := w.opt(n.Unsafe, w.head(&n.ItemHead, lead))
		w.tok(&n.Extern, sp)
		w.opt(n.Abi, SpaceOne)
		w.itemBlock(&n.Body, SpaceOne)
		w.leave()
	case *MacroItem:
		w.enter("MacroItem")
		w.macro(&n.Mac, w.head(&n.ItemHead, lead))
		if n.Semi != nil {
			w.tok(n.Semi, SpaceNone)
		}
		w.leave()
	}
}

// afterWhere is the spacing of the `{` that follows an optional where
// clause: a clause that was broken over lines puts the brace on its own line.
func (w *walker) afterWhere(c *WhereClause) Spacing {
	if c != nil && w.broken(&c.Where) {
		return SpaceLine
	}
	return SpaceOne
}

func (w *walker) itemBlock(b *ItemBlock, lead Spacing) {
	w.enter("ItemBlock")
	empty := len(b.Attrs) == 0 && len(b.Items) == 0
	w.braced(&b.Open, &b.Close, lead, empty, func(inner Spacing) {
		w.attrs(b.Attrs, inner, inner)
		for _, it := range b.Items {
			w.item(it, inner)
		}
	})
	w.leave()
}

func (w *walker) param(p *Param, sp Spacing) {
	sp = w.attrs(p.Attrs, sp, SpaceOne)
	switch {
	case p.Dots != nil:
		w.tok(p.Dots, sp)
	case p.Self != nil:
		s := p.Self
		next := sp
		if s.Amp != nil {
			w.tok(s.Amp, sp)
			next = SpaceNone
		}
		if s.Lifetime != nil {
			w.tok(s.Lifetime, next)
			next = SpaceOne
		}
		if s.Mut != nil {
			w.tok(s.Mut, next)
			next = SpaceOne
		}
		w.tok(&s.Self, next)
		if s.Colon != nil {
			w.tok(s.Colon, SpaceNone)
			w.typ(s.Type, SpaceOne)
		}
	default:
		w.pat(p.Pat, sp)
		if p.Colon != nil {
			w.tok(p.Colon, SpaceNone)
			w.typ(p.Type, SpaceOne)
		}
	}
}

func (w *walker) namedFields(f *NamedFields, lead Spacing) {
	w.braced(&f.Open, &f.Close, lead, len(f.Fields.Items) == 0, func(inner Spacing) {
		entries(w, &f.Fields, inner, func(fd *FieldDef, sp Spacing) {
			sp = w.attrs(fd.Attrs, sp, sp)
			sp = w.vis(fd.Vis, sp)
			w.tok(&fd.Name, sp)
			w.tok(&fd.Colon, SpaceNone)
			w.typ(fd.Type, SpaceOne)
		})
	})
}

func (w *walker) tupleFields(f *TupleFields) {
	inline(w, &f.Open, SpaceNone, &f.Fields, &f.Close, func(tf *TupleField, sp Spacing) {
		sp = w.attrs(tf.Attrs, sp, SpaceAutoOne)
		sp = w.vis(tf.Vis, sp)
		w.typ(tf.Type, sp)
	})
}

func (w *walker) variant(v *Variant, sp Spacing) {
	sp = w.attrs(v.Attrs, sp, sp)
	sp = w.vis(v.Vis, sp)
	w.tok(&v.Name, sp)
	if v.Named != nil {
		w.namedFields(v.Named, SpaceOne)
	}
	if v.Tuple != nil {
		w.tupleFields(v.Tuple)
	}
	if v.Eq != nil {
		w.tok(v.Eq, SpaceOne)
		w.expr(v.Disc, SpaceOne)
	}
}

func (w *walker) useTree(t *UseTree, lead Spacing) {
	sp := lead
	if t.Leading != nil {
		w.tok(t.Leading, sp)
		sp = SpaceNone
	}
	for i := range t.Segments {
		if i > 0 {
			w.tok(&t.Seps[i-1], SpaceNone)
		}
		w.tok(&t.Segments[i], sp)
		sp = SpaceNone
	}
	// separator before `*` or `{`
	if len(t.Seps) == len(t.Segments) && len(t.Seps) > 0 {
		w.tok(&t.Seps[len(t.Seps)-1], SpaceNone)
	}
	if t.Star != nil {
		w.tok(t.Star, sp)
	}
	if g := t.Group; g != nil {
		inline(w, &g.Open, sp, &g.List, &g.Close, func(sub *UseTree, sp Spacing) {
			w.useTree(sub, sp)
		})
	}
	if t.As != nil {
		w.tok(t.As, SpaceOne)
		w.tok(t.Rename, SpaceOne)
	}
}
