package cursor

import (
	"errors"
	"fmt"

	"rustidy/internal/arena"
	"rustidy/internal/source"
)

// Parser builds a T from the current position.
type Parser[T any] func(c *Cursor) (T, error)

// Parse runs p and widens a failure's span to start at the entry position.
// On error the cursor stays where p stopped.
func Parse[T any](c *Cursor, p Parser[T]) (T, error) {
	start := c.pos
	v, err := p(c)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && pe.Span.Start > start {
			pe.Span.Start = start
		}
		return v, err
	}
	return v, nil
}

// TryParse runs p; on a non-fatal failure it rewinds the position, drops the
// arena slots and synthesized slices p created and pops leaked tags.
// Fatal failures pass through with the cursor at the failure point.
func TryParse[T any](c *Cursor, p Parser[T]) (T, error) {
	st := c.save()
	v, err := p(c)
	if err == nil {
		return v, nil
	}
	c.popTags(st.tags)
	if IsFatal(err) {
		return v, err
	}
	c.restore(st)
	var zero T
	return zero, err
}

// PeekState is a parsed-but-not-committed result of Peek.
type PeekState[T any] struct {
	value    T
	start    source.Pos
	end      source.Pos
	from, to arena.Mark
	live     bool
}

// End returns the position the parse would leave the cursor at.
func (ps *PeekState[T]) End() source.Pos { return ps.end }

// Value returns the peeked value without committing it.
func (ps *PeekState[T]) Value() T { return ps.value }

// Peek runs p and rewinds unconditionally. A successful result can later be
// committed with SetPeeked or released with Discard.
func Peek[T any](c *Cursor, p Parser[T]) (*PeekState[T], error) {
	st := c.save()
	v, err := p(c)
	if err != nil {
		c.popTags(st.tags)
		if IsFatal(err) {
			return nil, err
		}
		c.restore(st)
		return nil, err
	}
	ps := &PeekState[T]{
		value: v,
		start: st.pos,
		end:   c.pos,
		from:  st.mark,
		to:    c.arena.Mark(),
		live:  true,
	}
	c.pos = st.pos
	c.popTags(st.tags)
	return ps, nil
}

// SetPeeked commits ps without re-parsing. The cursor must still be where the
// peek started.
func SetPeeked[T any](c *Cursor, ps *PeekState[T]) T {
	if !ps.live {
		panic(errors.New("cursor: peek state already used"))
	}
	if c.pos != ps.start {
		panic(fmt.Errorf("cursor: peek started at %d, cursor is at %d", ps.start, c.pos))
	}
	ps.live = false
	c.pos = ps.end
	return ps.value
}

// Discard releases the arena slots allocated by the peeked parse.
func Discard[T any](c *Cursor, ps *PeekState[T]) {
	if ps == nil || !ps.live {
		return
	}
	ps.live = false
	c.arena.ReleaseRange(ps.from, ps.to)
	var zero T
	ps.value = zero
}

// OneOf tries each alternative in order and returns the first success. A fatal
// failure wins immediately; otherwise the failures are aggregated.
func OneOf[T any](c *Cursor, alts ...Parser[T]) (T, error) {
	start := c.pos
	var errs []*Error
	for _, alt := range alts {
		v, err := TryParse(c, alt)
		if err == nil {
			return v, nil
		}
		if IsFatal(err) {
			return v, err
		}
		var pe *Error
		if !errors.As(err, &pe) {
			return v, err
		}
		errs = append(errs, pe)
	}
	var zero T
	return zero, Aggregate(c.SpanFrom(start), errs)
}

// Named wraps a non-fatal failure of p into a single "expected name" line.
// The wrapped error keeps the original failure point.
func Named[T any](name string, p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		start := c.pos
		v, err := p(c)
		if err == nil || IsFatal(err) {
			return v, err
		}
		pos := c.pos
		var causes []*Error
		var pe *Error
		if errors.As(err, &pe) {
			pos = pe.Pos
			causes = []*Error{pe}
		}
		return v, &Error{
			Kind:     KindExpected,
			Span:     source.Span{File: c.file.ID, Start: start, End: pos},
			Pos:      pos,
			Expected: []string{name},
			Found:    foundAt(c, pos),
			Causes:   causes,
		}
	}
}

func foundAt(c *Cursor, pos source.Pos) string {
	saved := c.pos
	c.pos = pos
	defer func() { c.pos = saved }()
	return c.found()
}

// PeekAt peeks p as if the cursor were at pos. The cursor does not move.
func PeekAt[T any](c *Cursor, pos source.Pos, p Parser[T]) (*PeekState[T], error) {
	saved := c.pos
	c.pos = pos
	defer func() { c.pos = saved }()
	return Peek(c, p)
}

// Must runs p and turns a non-fatal failure into a fatal one. Grammar code
// uses it once a unique token has committed the production.
func Must[T any](c *Cursor, p Parser[T]) (T, error) {
	v, err := p(c)
	if err != nil {
		return v, AsFatal(err)
	}
	return v, nil
}

// Optional runs p speculatively; a non-fatal failure yields ok == false.
func Optional[T any](c *Cursor, p Parser[T]) (v T, ok bool, err error) {
	v, err = TryParse(c, p)
	if err == nil {
		return v, true, nil
	}
	if IsFatal(err) {
		return v, false, err
	}
	return v, false, nil
}
