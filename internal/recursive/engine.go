package recursive

import (
	"errors"
	"math"
	"slices"

	"rustidy/internal/cursor"
	"rustidy/internal/source"
)

// term is one operand of a chain before folding.
type term[P, B, S any] struct {
	prefixes []P
	base     B
	suffixes []S
}

// pair is a finished term and the infix that follows it. cp is the cursor
// state before the infix was parsed, for backing off.
type pair[P, B, S, I any] struct {
	term term[P, B, S]
	op   I
	cp   cursor.Checkpoint
}

type engine[R, P, B, S, I any] struct {
	c      *cursor.Cursor
	f      *Family[R, P, B, S, I]
	tags   []cursor.Tag
	prefix cursor.Parser[P]
	base   cursor.Parser[B]
	suffix cursor.Parser[S]
	infix  cursor.Parser[I]

	// lookahead results not yet taken by a term
	prefixMemo memo[P]
	baseMemo   memo[B]

	// failures of the last prefix/base attempt
	prefixErr, baseErr error
}

// peeked is one lookahead result at pos: a live peek or the failure.
type peeked[T any] struct {
	pos source.Pos
	ps  *cursor.PeekState[T]
	err error
}

// memo keeps lookahead results so the term that starts at the same position
// commits the peek instead of parsing that input a second time.
type memo[T any] []peeked[T]

func (m memo[T]) index(pos source.Pos) int {
	for i := range m {
		if m[i].pos == pos {
			return i
		}
	}
	return -1
}

// look peeks p at pos unless a result for pos is already held.
func (m *memo[T]) look(c *cursor.Cursor, pos source.Pos, p cursor.Parser[T]) peeked[T] {
	if i := m.index(pos); i >= 0 {
		return (*m)[i]
	}
	ps, err := cursor.PeekAt(c, pos, p)
	r := peeked[T]{pos: pos, ps: ps, err: err}
	*m = append(*m, r)
	return r
}

// take hands over the result held for the cursor position, or peeks p there.
func (m *memo[T]) take(c *cursor.Cursor, p cursor.Parser[T]) (*cursor.PeekState[T], error) {
	if i := m.index(c.Pos()); i >= 0 {
		r := (*m)[i]
		*m = slices.Delete(*m, i, i+1)
		return r.ps, r.err
	}
	return cursor.Peek(c, p)
}

func (m *memo[T]) drop(c *cursor.Cursor) {
	for _, r := range *m {
		cursor.Discard(c, r.ps)
	}
	*m = (*m)[:0]
}

// Parse reads one maximal member of family f at the cursor.
func Parse[R, P, B, S, I any](c *cursor.Cursor, f *Family[R, P, B, S, I]) (R, error) {
	return ParseFrom(c, f, nil)
}

// ParseFrom is Parse for a caller that has already peeked the first Base at
// the cursor: first is committed as the chain's first Base, not parsed
// again. A nil first behaves like Parse.
func ParseFrom[R, P, B, S, I any](c *cursor.Cursor, f *Family[R, P, B, S, I], first *cursor.PeekState[B]) (R, error) {
	var zero R
	if err := c.Enter(); err != nil {
		cursor.Discard(c, first)
		return zero, err
	}
	defer c.Leave()

	tags := c.VisibleTags()
	e := &engine[R, P, B, S, I]{
		c:      c,
		f:      f,
		tags:   tags,
		prefix: scoped(tags, f.Prefix),
		base:   scoped(tags, f.Base),
		suffix: scoped(tags, f.Suffix),
		infix:  scoped(tags, f.Infix),
	}
	if first != nil {
		e.baseMemo = memo[B]{{pos: c.Pos(), ps: first}}
	}
	defer e.baseMemo.drop(c)
	defer e.prefixMemo.drop(c)
	return e.run()
}

// Parser adapts the family to the uniform parser contract.
func (f *Family[R, P, B, S, I]) Parser() cursor.Parser[R] {
	return func(c *cursor.Cursor) (R, error) {
		return Parse(c, f)
	}
}

// scoped re-asserts the chain's tags at whatever position p starts.
func scoped[T any](tags []cursor.Tag, p cursor.Parser[T]) cursor.Parser[T] {
	if len(tags) == 0 {
		return p
	}
	return func(c *cursor.Cursor) (T, error) {
		return cursor.WithTags(c, tags, p)
	}
}

func (e *engine[R, P, B, S, I]) run() (R, error) {
	var zero R
	start := e.c.Pos()
	var pairs []pair[P, B, S, I]
	var last term[P, B, S]
	for {
		t, ok, err := e.term()
		if err != nil {
			return zero, err
		}
		if !ok {
			if len(pairs) == 0 {
				return zero, e.mismatch(start)
			}
			// the infix wanted a right operand and there is none: drop it
			p := pairs[len(pairs)-1]
			pairs = pairs[:len(pairs)-1]
			e.prefixMemo.drop(e.c)
			e.baseMemo.drop(e.c)
			e.c.Rewind(p.cp)
			last = p.term
			break
		}
		op, found, cp, err := e.suffixes(&t)
		if err != nil {
			return zero, err
		}
		if !found {
			last = t
			break
		}
		pairs = append(pairs, pair[P, B, S, I]{term: t, op: op, cp: cp})
	}
	return e.fold(pairs, last), nil
}

// term accumulates prefixes and exactly one base. ok is false when neither
// a prefix nor a base matches.
func (e *engine[R, P, B, S, I]) term() (t term[P, B, S], ok bool, err error) {
	c := e.c
	for {
		pPS, pErr := e.prefixMemo.take(c, e.prefix)
		if cursor.IsFatal(pErr) {
			return t, false, pErr
		}
		bPS, bErr := e.baseMemo.take(c, e.base)
		if cursor.IsFatal(bErr) {
			cursor.Discard(c, pPS)
			return t, false, bErr
		}
		switch {
		case pPS != nil && bPS != nil:
			// a real base is never directly followed by another base
			if e.startsBase(bPS.End()) {
				cursor.Discard(c, bPS)
				t.prefixes = append(t.prefixes, cursor.SetPeeked(c, pPS))
				continue
			}
			cursor.Discard(c, pPS)
			t.base = cursor.SetPeeked(c, bPS)
			return t, true, nil
		case pPS != nil:
			t.prefixes = append(t.prefixes, cursor.SetPeeked(c, pPS))
		case bPS != nil:
			t.base = cursor.SetPeeked(c, bPS)
			return t, true, nil
		default:
			e.prefixErr, e.baseErr = pErr, bErr
			return t, false, nil
		}
	}
}

// suffixes accumulates suffixes into t and stops at the first true infix.
func (e *engine[R, P, B, S, I]) suffixes(t *term[P, B, S]) (op I, found bool, cp cursor.Checkpoint, err error) {
	c := e.c
	for {
		cp = c.Checkpoint()
		sPS, sErr := cursor.Peek(c, e.suffix)
		if cursor.IsFatal(sErr) {
			return op, false, cp, sErr
		}
		iPS, iErr := cursor.Peek(c, e.infix)
		if cursor.IsFatal(iErr) {
			cursor.Discard(c, sPS)
			return op, false, cp, iErr
		}
		switch {
		case sPS != nil && iPS != nil:
			end := iPS.End()
			if (e.startsBase(end) || e.startsPrefix(end)) && !e.guard(end) {
				cursor.Discard(c, sPS)
				return cursor.SetPeeked(c, iPS), true, cp, nil
			}
			cursor.Discard(c, iPS)
			t.suffixes = append(t.suffixes, cursor.SetPeeked(c, sPS))
		case sPS != nil:
			t.suffixes = append(t.suffixes, cursor.SetPeeked(c, sPS))
		case iPS != nil:
			return cursor.SetPeeked(c, iPS), true, cp, nil
		default:
			return op, false, cp, nil
		}
	}
}

// startsBase reports whether a base parses at pos. A fatal failure counts:
// some construct definitely starts there. The result stays in baseMemo for
// the term that starts at pos.
func (e *engine[R, P, B, S, I]) startsBase(pos source.Pos) bool {
	r := e.baseMemo.look(e.c, pos, e.base)
	return r.ps != nil || cursor.IsFatal(r.err)
}

func (e *engine[R, P, B, S, I]) startsPrefix(pos source.Pos) bool {
	r := e.prefixMemo.look(e.c, pos, e.prefix)
	return r.ps != nil || cursor.IsFatal(r.err)
}

func (e *engine[R, P, B, S, I]) guard(infixEnd source.Pos) bool {
	if e.f.SuffixGuard == nil {
		return false
	}
	keep, _ := cursor.WithTags(e.c, e.tags, func(c *cursor.Cursor) (bool, error) {
		return e.f.SuffixGuard(c, infixEnd), nil
	})
	return keep
}

// reduce folds prefixes (innermost last declared) around the base, then the
// suffixes left to right.
func (e *engine[R, P, B, S, I]) reduce(t term[P, B, S]) R {
	c, f := e.c, e.f
	r := f.FromBase(c, t.base)
	i := 0
	if f.SuffixBindsTighter != nil {
		for i < len(t.suffixes) && f.SuffixBindsTighter(t.suffixes[i]) {
			r = f.ApplySuffix(c, r, t.suffixes[i])
			i++
		}
	}
	for j := len(t.prefixes) - 1; j >= 0; j-- {
		r = f.ApplyPrefix(c, t.prefixes[j], r)
	}
	for ; i < len(t.suffixes); i++ {
		r = f.ApplySuffix(c, r, t.suffixes[i])
	}
	return r
}

// unbreakable is the level of a plain prefix written outside a leveled one.
const unbreakable = Level(math.MaxInt)

// pending is an operator waiting on the fold stack: an infix, or a prefix
// that carries a level of its own.
type pending[P, I any] struct {
	infix  I
	prefix P
	unary  bool
	level  Level
}

// fold joins (term infix)* term with an operator stack, so chain length
// does not grow the call stack. Leveled prefixes and suffixes take part in
// the stack like infixes do.
func (e *engine[R, P, B, S, I]) fold(pairs []pair[P, B, S, I], last term[P, B, S]) R {
	c, f := e.c, e.f
	operands := make([]R, 0, len(pairs)+1)
	ops := make([]pending[P, I], 0, len(pairs))
	apply := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		n := len(operands)
		if op.unary {
			operands[n-1] = f.ApplyPrefix(c, op.prefix, operands[n-1])
			return
		}
		operands = append(operands[:n-2], f.Join(c, operands[n-2], op.infix, operands[n-1]))
	}
	// reduce every pending operator binding tighter than level
	reduceAbove := func(level Level, same bool) {
		for len(ops) > 0 {
			top := ops[len(ops)-1].level
			if top < level || (top == level && !same) {
				return
			}
			apply()
		}
	}
	push := func(t term[P, B, S]) {
		k := 0
		for i, p := range t.prefixes {
			if _, ok := e.prefixLevel(p); ok {
				k = i + 1
			}
		}
		for _, p := range t.prefixes[:k] {
			level, ok := e.prefixLevel(p)
			if !ok {
				level = unbreakable
			}
			ops = append(ops, pending[P, I]{prefix: p, unary: true, level: level})
		}
		t.prefixes = t.prefixes[k:]

		n := len(t.suffixes)
		for i, s := range t.suffixes {
			if _, ok := e.suffixLevel(s); ok {
				n = i
				break
			}
		}
		rest := t.suffixes[n:]
		t.suffixes = t.suffixes[:n]
		operands = append(operands, e.reduce(t))
		for _, s := range rest {
			if level, ok := e.suffixLevel(s); ok {
				reduceAbove(level, false)
			}
			top := len(operands) - 1
			operands[top] = f.ApplySuffix(c, operands[top], s)
		}
	}
	for _, p := range pairs {
		push(p.term)
		assoc, level := f.Class(p.op)
		reduceAbove(level, assoc != Right)
		ops = append(ops, pending[P, I]{infix: p.op, level: level})
	}
	push(last)
	for len(ops) > 0 {
		apply()
	}
	return operands[0]
}

func (e *engine[R, P, B, S, I]) prefixLevel(p P) (Level, bool) {
	if e.f.PrefixLevel == nil {
		return 0, false
	}
	return e.f.PrefixLevel(p)
}

func (e *engine[R, P, B, S, I]) suffixLevel(s S) (Level, bool) {
	if e.f.SuffixLevel == nil {
		return 0, false
	}
	return e.f.SuffixLevel(s)
}

// mismatch reports the total failure of a chain start.
func (e *engine[R, P, B, S, I]) mismatch(start source.Pos) error {
	c := e.c
	out := &cursor.Error{
		Kind:     cursor.KindAggregate,
		Span:     c.SpanFrom(start),
		Pos:      c.Pos(),
		Expected: []string{PrefixRole, BaseRole, SuffixRole, InfixRole},
	}
	for _, err := range []error{e.prefixErr, e.baseErr} {
		var pe *cursor.Error
		if !errors.As(err, &pe) {
			continue
		}
		out.Causes = append(out.Causes, pe)
		if pe.Pos >= out.Pos {
			out.Pos = pe.Pos
			out.Found = pe.Found
		}
	}
	if out.Span.End < out.Pos {
		out.Span.End = out.Pos
	}
	return out
}
