package arena

import (
	"errors"
	"testing"
)

type pair struct {
	left  Index[pair]
	value int
}

func (p pair) CloneIn(a *Arena) pair {
	if p.left.IsValid() {
		p.left = p.left.Clone(a)
	}
	return p
}

func expectViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %s violation, got none", op)
		}
		var v *Violation
		err, ok := r.(error)
		if !ok || !errors.As(err, &v) {
			t.Fatalf("expected *Violation, got %T: %v", r, r)
		}
		if v.Op != op {
			t.Fatalf("violation op = %q, want %q", v.Op, op)
		}
	}()
	fn()
}

func TestNewGetTake(t *testing.T) {
	a := NewArena(4)
	i := New(a, 7)
	j := New(a, "seven")

	if got := i.Get(a); got != 7 {
		t.Fatalf("Get = %d, want 7", got)
	}
	if got := j.Get(a); got != "seven" {
		t.Fatalf("Get = %q, want seven", got)
	}
	if a.Live() != 2 {
		t.Fatalf("Live = %d, want 2", a.Live())
	}
	if got := i.Take(a); got != 7 {
		t.Fatalf("Take = %d, want 7", got)
	}
	if i.Alive(a) {
		t.Fatalf("slot still alive after Take")
	}
	if a.Live() != 1 {
		t.Fatalf("Live = %d, want 1", a.Live())
	}
}

func TestWithMutates(t *testing.T) {
	a := NewArena(0)
	i := New(a, 1)
	i.With(a, func(v *int) { *v += 41 })
	if got := i.Get(a); got != 42 {
		t.Fatalf("Get after With = %d, want 42", got)
	}
}

func TestViolations(t *testing.T) {
	t.Run("double take", func(t *testing.T) {
		a := NewArena(0)
		i := New(a, 1)
		New(a, 2)
		i.Take(a)
		expectViolation(t, "take", func() { i.Take(a) })
	})
	t.Run("get after release", func(t *testing.T) {
		a := NewArena(0)
		m := a.Mark()
		i := New(a, 1)
		a.ReleaseSince(m)
		expectViolation(t, "get", func() { i.Get(a) })
	})
	t.Run("stale index after slot reuse", func(t *testing.T) {
		a := NewArena(0)
		i := New(a, 1)
		i.Take(a)
		New(a, 2)
		expectViolation(t, "get", func() { i.Get(a) })
	})
	t.Run("re-entrant borrow", func(t *testing.T) {
		a := NewArena(0)
		i := New(a, 1)
		expectViolation(t, "borrow", func() {
			i.With(a, func(*int) {
				i.With(a, func(*int) {})
			})
		})
		// the outer borrow is released even after a panic
		i.With(a, func(v *int) { *v = 3 })
	})
	t.Run("read while borrowed", func(t *testing.T) {
		a := NewArena(0)
		i := New(a, 1)
		expectViolation(t, "get", func() {
			i.With(a, func(*int) { i.Get(a) })
		})
	})
	t.Run("wrong type", func(t *testing.T) {
		a := NewArena(0)
		i := New(a, 1)
		wrong := Index[string](i)
		expectViolation(t, "get", func() { wrong.Get(a) })
	})
	t.Run("zero index", func(t *testing.T) {
		a := NewArena(0)
		var i Index[int]
		expectViolation(t, "get", func() { i.Get(a) })
	})
}

func TestReleaseSinceReclaimsTail(t *testing.T) {
	a := NewArena(0)
	keep := New(a, 1)

	for range 100 {
		m := a.Mark()
		New(a, 2)
		New(a, 3)
		if n := a.ReleaseSince(m); n != 2 {
			t.Fatalf("ReleaseSince dropped %d, want 2", n)
		}
	}
	New(a, 4)

	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (dead tail must be truncated)", a.Len())
	}
	if a.Live() != 2 {
		t.Fatalf("Live = %d, want 2", a.Live())
	}
	if keep.Get(a) != 1 {
		t.Fatalf("kept node corrupted")
	}
}

func TestReleaseRangeKeepsLaterSlots(t *testing.T) {
	a := NewArena(0)
	from := a.Mark()
	x := New(a, 1)
	to := a.Mark()
	y := New(a, 2)

	if n := a.ReleaseRange(from, to); n != 1 {
		t.Fatalf("ReleaseRange dropped %d, want 1", n)
	}
	if x.Alive(a) {
		t.Fatalf("x should be released")
	}
	if !y.Alive(a) || y.Get(a) != 2 {
		t.Fatalf("y should survive")
	}
	// x's slot is not at the tail, so it stays as a hole
	New(a, 3)
	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}
}

func TestReleaseBorrowedPanics(t *testing.T) {
	a := NewArena(0)
	m := a.Mark()
	i := New(a, 1)
	expectViolation(t, "release", func() {
		i.With(a, func(*int) { a.ReleaseSince(m) })
	})
}

func TestCloneIsDeep(t *testing.T) {
	a := NewArena(0)
	leaf := New(a, pair{value: 1})
	root := New(a, pair{left: leaf, value: 2})

	cp := root.Clone(a)
	if cp == root {
		t.Fatalf("clone must use a new slot")
	}
	cpLeft := cp.Get(a).left
	if cpLeft == leaf {
		t.Fatalf("clone must not share child slots")
	}
	cpLeft.With(a, func(p *pair) { p.value = 10 })
	if leaf.Get(a).value != 1 {
		t.Fatalf("original child changed through clone")
	}
	if a.Live() != 4 {
		t.Fatalf("Live = %d, want 4", a.Live())
	}
}
