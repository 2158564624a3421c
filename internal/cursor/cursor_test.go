package cursor

import (
	"errors"
	"strings"
	"testing"

	"rustidy/internal/arena"
	"rustidy/internal/source"
)

func newCursor(t *testing.T, src string) *Cursor {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	return New(fs.Get(id), nil, nil)
}

func lit(s string) Parser[string] {
	return func(c *Cursor) (string, error) {
		if _, ok := c.Eat(s); !ok {
			return "", c.Expected("`" + s + "`")
		}
		return s, nil
	}
}

func alloc(s string) Parser[arena.Index[string]] {
	return func(c *Cursor) (arena.Index[string], error) {
		if _, ok := c.Eat(s); !ok {
			return arena.Index[string]{}, c.Expected(s)
		}
		return arena.New(c.Arena(), s), nil
	}
}

func TestEatAndSpans(t *testing.T) {
	c := newCursor(t, "fn  main")
	span, ok := c.Eat("fn")
	if !ok || span.Start != 0 || span.End != 2 {
		t.Fatalf("Eat(fn) = %v, %v", span, ok)
	}
	ws := c.EatFunc(func(r rune) bool { return r == ' ' })
	if ws.Len() != 2 {
		t.Fatalf("whitespace len = %d, want 2", ws.Len())
	}
	if _, ok := c.Eat("fn"); ok {
		t.Fatalf("Eat must not match at %d", c.Pos())
	}
	if got := c.Text(c.Advance(4)); got != "main" {
		t.Fatalf("Advance text = %q", got)
	}
	if !c.EOF() || c.Byte() != 0 {
		t.Fatalf("expected EOF")
	}
}

func TestTryParseRewinds(t *testing.T) {
	c := newCursor(t, "ab")
	p := func(c *Cursor) (string, error) {
		c.Eat("a")
		arena.New(c.Arena(), 1)
		c.Synthesize(c.Here(), " ")
		return "", c.Expected("`c`")
	}
	_, err := TryParse(c, WrapTag("x", p))
	if err == nil {
		t.Fatalf("expected failure")
	}
	if c.Pos() != 0 {
		t.Fatalf("pos = %d, want 0", c.Pos())
	}
	if c.Arena().Live() != 0 {
		t.Fatalf("arena live = %d, want 0", c.Arena().Live())
	}
	if c.Replacements().Len() != 0 {
		t.Fatalf("replacements not truncated")
	}
	if len(c.tags) != 0 {
		t.Fatalf("tags leaked: %v", c.tags)
	}
}

// WrapTag is a test helper pushing a tag around p.
func WrapTag[T any](tag Tag, p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) { return WithTag(c, tag, p) }
}

func TestTryParseFatalKeepsPosition(t *testing.T) {
	c := newCursor(t, "match x")
	p := func(c *Cursor) (string, error) {
		c.Eat("match")
		return Must(c, lit("{"))
	}
	_, err := TryParse(c, p)
	if !IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if c.Pos() != 5 {
		t.Fatalf("pos = %d, want 5", c.Pos())
	}
}

func TestOneOf(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		c := newCursor(t, "&&x")
		got, err := OneOf(c, lit("&&"), lit("&"))
		if err != nil || got != "&&" {
			t.Fatalf("OneOf = %q, %v", got, err)
		}
	})
	t.Run("aggregate", func(t *testing.T) {
		c := newCursor(t, "z")
		_, err := OneOf(c, lit("a"), lit("b"))
		var pe *Error
		if !errors.As(err, &pe) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if pe.Kind != KindAggregate {
			t.Fatalf("kind = %v, want aggregate", pe.Kind)
		}
		if !strings.Contains(pe.Error(), "expected one of: `a`, `b`") {
			t.Fatalf("message = %q", pe.Error())
		}
	})
	t.Run("fatal short-circuits", func(t *testing.T) {
		c := newCursor(t, "ab")
		calls := 0
		fatal := func(c *Cursor) (string, error) {
			calls++
			c.Eat("a")
			return "", AsFatal(c.Expected("`c`"))
		}
		second := func(c *Cursor) (string, error) {
			calls++
			return lit("ab")(c)
		}
		if _, err := OneOf(c, fatal, second); !IsFatal(err) {
			t.Fatalf("expected fatal, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("second alternative must not run")
		}
	})
}

func TestNamed(t *testing.T) {
	c := newCursor(t, "?")
	_, err := Named("an expression", lit("x"))(c)
	if err == nil || err.Error() != "expected an expression, found `?`" {
		t.Fatalf("Named error = %v", err)
	}
}

func TestPeekCommitAndDiscard(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		c := newCursor(t, "abc")
		ps, err := Peek(c, alloc("ab"))
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		if c.Pos() != 0 || ps.End() != 2 {
			t.Fatalf("pos = %d end = %d", c.Pos(), ps.End())
		}
		idx := SetPeeked(c, ps)
		if c.Pos() != 2 || idx.Get(c.Arena()) != "ab" {
			t.Fatalf("SetPeeked did not commit")
		}
	})
	t.Run("discard", func(t *testing.T) {
		c := newCursor(t, "abc")
		keep := arena.New(c.Arena(), "keep")
		ps, err := Peek(c, alloc("ab"))
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		Discard(c, ps)
		if c.Arena().Live() != 1 || !keep.Alive(c.Arena()) {
			t.Fatalf("Discard released the wrong slots")
		}
	})
	t.Run("failure rewinds", func(t *testing.T) {
		c := newCursor(t, "abc")
		if _, err := Peek(c, alloc("x")); err == nil {
			t.Fatalf("expected failure")
		}
		if c.Pos() != 0 {
			t.Fatalf("pos = %d", c.Pos())
		}
	})
}

func TestTagsAreScopedToPosition(t *testing.T) {
	c := newCursor(t, "ab")
	const noStruct Tag = "no-struct"
	var atPush, afterAdvance bool
	_, _ = WithTag(c, noStruct, func(c *Cursor) (struct{}, error) {
		atPush = c.HasTag(noStruct)
		c.Advance(1)
		afterAdvance = c.HasTag(noStruct)
		return struct{}{}, nil
	})
	if !atPush {
		t.Fatalf("tag must be visible at its push position")
	}
	if afterAdvance {
		t.Fatalf("tag must be invisible after advancing")
	}
	if len(c.tags) != 0 {
		t.Fatalf("tag not popped")
	}
}

func TestTagsPoppedOnPanic(t *testing.T) {
	c := newCursor(t, "a")
	func() {
		defer func() { _ = recover() }()
		_, _ = WithTag(c, "t", func(*Cursor) (int, error) { panic("boom") })
	}()
	if len(c.tags) != 0 {
		t.Fatalf("tag not popped after panic")
	}
}

func TestDepthGuard(t *testing.T) {
	c := newCursor(t, "")
	c.MaxDepth = 3
	for range 3 {
		if err := c.Enter(); err != nil {
			t.Fatalf("Enter: %v", err)
		}
	}
	err := c.Enter()
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindTooDeep || !pe.Fatal {
		t.Fatalf("expected fatal too-deep error, got %v", err)
	}
}

func TestAggregateKeepsFurthest(t *testing.T) {
	near := &Error{Kind: KindExpected, Pos: 1, Expected: []string{"a"}}
	far := &Error{Kind: KindExpected, Pos: 4, Expected: []string{"b"}}
	got := Aggregate(source.Span{}, []*Error{near, far})
	if got != far {
		t.Fatalf("Aggregate should return the single furthest failure")
	}
}
