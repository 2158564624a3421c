package ast

import (
	"bytes"

	"rustidy/internal/arena"
)

// Walk visits every leaf of f in source order, telling v the spacing each
// token wants. Expression, pattern and type nodes are borrowed from the
// arena while their subtree is visited, so v may rewrite token whitespace.
func Walk(v Visitor, f *File) {
	w := &walker{v: v, a: f.Arena, src: f.Src}
	v.Enter("File")
	lead := SpaceStart
	for i := range f.Attrs {
		w.attr(&f.Attrs[i], lead)
		lead = SpaceLine
	}
	for _, it := range f.Items {
		w.item(it, lead)
		lead = SpaceLine
	}
	v.EOF(&f.EOF)
	v.Leave()
}

// WalkExpr visits the leaves of one expression of f.
func WalkExpr(v Visitor, f *File, id ExprID) {
	w := &walker{v: v, a: f.Arena, src: f.Src}
	w.expr(id, SpaceKeep)
}

type walker struct {
	v   Visitor
	a   *arena.Arena
	src Source
	// verbatim > 0 inside token trees
	verbatim int
}

func (w *walker) tok(t *Token, sp Spacing) {
	if w.verbatim > 0 {
		sp = SpaceKeep
	}
	w.v.Token(t, sp)
}

func (w *walker) opt(t *Token, sp Spacing) Spacing {
	if t == nil {
		return sp
	}
	w.tok(t, sp)
	return SpaceOne
}

func (w *walker) enter(name string) { w.v.Enter(name) }
func (w *walker) leave()            { w.v.Leave() }

// spansLines reports whether the original text between two tokens breaks
// the line.
func (w *walker) spansLines(open, close *Token) bool {
	content := w.src.File.Content
	from, to := open.Text.Span.End, close.Text.Span.Start
	if int(to) > len(content) || from > to {
		return false
	}
	return bytes.IndexByte(content[from:to], '\n') >= 0
}

func (w *walker) broken(t *Token) bool {
	return t != nil && w.src.HasNewline(t.WS)
}

// braced lays out `{ ... }`: empty stays `{}`, a one-line original stays on
// one line, anything else gets one entry per line.
func (w *walker) braced(open, close *Token, lead Spacing, empty bool, body func(inner Spacing)) {
	w.tok(open, lead)
	if empty && !w.src.HasComment(close.WS) {
		w.tok(close, SpaceNone)
		return
	}
	inner, last := SpaceOne, SpaceOne
	if w.spansLines(open, close) {
		inner, last = SpaceLine, SpaceLineOut
	}
	w.v.Indent()
	body(inner)
	w.v.Dedent()
	w.tok(close, last)
}

// inline lays out a delimited list that keeps the original line breaks.
func inline[T any](w *walker, open *Token, lead Spacing, list *Punctuated[T], close *Token, item func(*T, Spacing)) {
	w.tok(open, lead)
	w.v.Indent()
	for i := range list.Items {
		sp := SpaceAutoOne
		if i == 0 {
			sp = SpaceAutoNone
		}
		item(&list.Items[i], sp)
		if i < len(list.Seps) {
			w.tok(&list.Seps[i], SpaceNone)
		}
	}
	w.v.Dedent()
	w.tok(close, SpaceAutoNone)
}

// entries lays out a braced list body: one entry per inner spacing.
func entries[T any](w *walker, list *Punctuated[T], inner Spacing, item func(*T, Spacing)) {
	for i := range list.Items {
		item(&list.Items[i], inner)
		if i < len(list.Seps) {
			w.tok(&list.Seps[i], SpaceNone)
		}
	}
}

func (w *walker) attrs(list []Attr, lead, next Spacing) Spacing {
	for i := range list {
		w.attr(&list[i], lead)
		lead = next
	}
	return lead
}

func (w *walker) attr(a *Attr, lead Spacing) {
	w.enter("Attr")
	w.tok(&a.Pound, lead)
	if a.Bang != nil {
		w.tok(a.Bang, SpaceNone)
	}
	w.tree(&a.Tree, SpaceNone)
	w.leave()
}

func (w *walker) tree(t *TokenTree, lead Spacing) {
	w.tok(&t.Open, lead)
	w.verbatim++
	for i := range t.Items {
		it := &t.Items[i]
		if it.Tree != nil {
			w.tree(it.Tree, SpaceKeep)
			continue
		}
		w.tok(&it.Tok, SpaceKeep)
	}
	w.tok(&t.Close, SpaceKeep)
	w.verbatim--
}

func (w *walker) macro(m *MacroCall, lead Spacing) {
	w.enter("MacroCall")
	w.path(&m.Path, lead)
	w.tok(&m.Bang, SpaceNone)
	sp := SpaceNone
	if m.Name != nil {
		w.tok(m.Name, SpaceOne)
		sp = SpaceOne
	}
	if m.Tree.Delim == '{' {
		sp = SpaceOne
	}
	w.tree(&m.Tree, sp)
	w.leave()
}

func (w *walker) vis(v *Visibility, lead Spacing) Spacing {
	if v == nil {
		return lead
	}
	w.tok(&v.Pub, lead)
	if v.Open != nil {
		w.tok(v.Open, SpaceNone)
		sp := SpaceNone
		if v.In != nil {
			w.tok(v.In, SpaceNone)
			sp = SpaceOne
		}
		if v.Path != nil {
			w.path(v.Path, sp)
		}
		w.tok(v.Close, SpaceNone)
	}
	return SpaceOne
}

func (w *walker) label(l *Label, lead Spacing) Spacing {
	if l == nil {
		return lead
	}
	w.tok(&l.Name, lead)
	w.tok(&l.Colon, SpaceNone)
	return SpaceOne
}

// ---- paths, generics, bounds ----

func (w *walker) path(p *Path, lead Spacing) {
	sp := lead
	if q := p.QSelf; q != nil {
		w.tok(&q.Open, sp)
		w.typ(q.Type, SpaceNone)
		if q.As != nil {
			w.tok(q.As, SpaceOne)
			w.path(q.Trait, SpaceOne)
		}
		w.tok(&q.Close, SpaceNone)
		sp = SpaceNone
	}
	if p.Leading != nil {
		w.tok(p.Leading, sp)
		sp = SpaceNone
	}
	for i := range p.Segments {
		if i > 0 {
			w.tok(&p.Seps[i-1], SpaceNone)
		}
		seg := &p.Segments[i]
		w.tok(&seg.Name, sp)
		sp = SpaceNone
		if seg.Generics != nil {
			w.genericArgs(seg.Generics)
		}
		if seg.FnArgs != nil {
			inline(w, &seg.FnArgs.Params.Open, SpaceNone, &seg.FnArgs.Params.List, &seg.FnArgs.Params.Close, w.typItem)
			w.ret(seg.FnArgs.Ret)
		}
	}
}

func (w *walker) genericArgs(g *GenericArgs) {
	if g.Colons != nil {
		w.tok(g.Colons, SpaceNone)
	}
	inline(w, &g.Open, SpaceNone, &g.Args, &g.Close, func(arg *GenericArg, sp Spacing) {
		switch {
		case arg.Lifetime != nil:
			w.tok(arg.Lifetime, sp)
		case arg.Binding != nil:
			b := arg.Binding
			w.tok(&b.Name, sp)
			if b.Generics != nil {
				w.genericArgs(b.Generics)
			}
			if b.Eq != nil {
				w.tok(b.Eq, SpaceOne)
				w.typ(b.Type, SpaceOne)
			}
			if b.Colon != nil {
				w.tok(b.Colon, SpaceNone)
				w.bounds(b.Bounds, SpaceOne)
			}
		case arg.Const.IsValid():
			w.expr(arg.Const, sp)
		default:
			w.typ(arg.Type, sp)
		}
	})
}

func (w *walker) ret(r *RetType) {
	if r == nil {
		return
	}
	w.tok(&r.Arrow, SpaceOne)
	w.typ(r.Type, SpaceOne)
}

func (w *walker) bounds(b *Bounds, lead Spacing) {
	if b == nil {
		return
	}
	sp := lead
	for i := range b.Items {
		if i > 0 {
			w.tok(&b.Plus[i-1], SpaceOne)
			sp = SpaceOne
		}
		w.bound(&b.Items[i], sp)
	}
	// trailing `+`
	if len(b.Plus) == len(b.Items) && len(b.Plus) > 0 {
		w.tok(&b.Plus[len(b.Plus)-1], SpaceOne)
	}
}

func (w *walker) bound(b *Bound, sp Spacing) {
	if b.Lifetime != nil {
		w.tok(b.Lifetime, sp)
		return
	}
	if b.Open != nil {
		w.tok(b.Open, sp)
		sp = SpaceNone
	}
	if b.Tilde != nil {
		w.tok(b.Tilde, sp)
		sp = SpaceNone
	}
	if b.Const != nil {
		w.tok(b.Const, sp)
		sp = SpaceOne
	}
	if b.Question != nil {
		w.tok(b.Question, sp)
		sp = SpaceNone
	}
	if b.For != nil {
		w.forLifetimes(b.For, sp)
		sp = SpaceOne
	}
	w.path(&b.Path, sp)
	if b.Close != nil {
		w.tok(b.Close, SpaceNone)
	}
}

func (w *walker) forLifetimes(f *ForLifetimes, lead Spacing) {
	w.tok(&f.For, lead)
	w.generics(&f.Params, SpaceNone)
}

func (w *walker) generics(g *Generics, lead Spacing) {
	if g == nil {
		return
	}
	inline(w, &g.Open, lead, &g.Params, &g.Close, func(p *GenericParam, sp Spacing) {
		sp = w.attrs(p.Attrs, sp, SpaceOne)
		sp = w.opt(p.Const, sp)
		w.tok(&p.Name, sp)
		if p.Colon != nil {
			w.tok(p.Colon, SpaceNone)
			if p.Type.IsValid() {
				w.typ(p.Type, SpaceOne)
			} else {
				w.bounds(p.Bounds, SpaceOne)
			}
		}
		if p.Eq != nil {
			w.tok(p.Eq, SpaceOne)
			if p.DefaultExpr.IsValid() {
				w.expr(p.DefaultExpr, SpaceOne)
			} else {
				w.typ(p.Default, SpaceOne)
			}
		}
	})
}

func (w *walker) where(c *WhereClause) {
	if c == nil {
		return
	}
	w.enter("Where")
	w.tok(&c.Where, SpaceAutoOne)
	w.v.Indent()
	for i := range c.Preds.Items {
		p := &c.Preds.Items[i]
		sp := SpaceAutoOne
		if p.For != nil {
			w.forLifetimes(p.For, sp)
			sp = SpaceOne
		}
		if p.Lifetime != nil {
			w.tok(p.Lifetime, sp)
		} else {
			w.typ(p.Type, sp)
		}
		w.tok(&p.Colon, SpaceNone)
		w.bounds(&p.Bounds, SpaceOne)
		if i < len(c.Preds.Seps) {
			w.tok(&c.Preds.Seps[i], SpaceNone)
		}
	}
	w.v.Dedent()
	w.leave()
}
