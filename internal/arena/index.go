package arena

// Index is a handle to one slot holding a T. It is cheap to copy but has
// unique-ownership semantics: Clone makes a new slot, it never shares one.
type Index[T any] struct {
	slot uint32
	gen  uint64
}

// Cloner lets a payload deep-copy the nodes it owns into fresh slots.
type Cloner[T any] interface {
	CloneIn(a *Arena) T
}

// New allocates a slot owning v.
func New[T any](a *Arena, v T) Index[T] {
	p := new(T)
	*p = v
	pos, gen := a.alloc(p)
	return Index[T]{slot: pos, gen: gen}
}

// IsValid reports whether the index was produced by New.
func (i Index[T]) IsValid() bool { return i.gen != 0 }

// Alive reports whether the slot still owns a node.
func (i Index[T]) Alive(a *Arena) bool {
	if i.gen == 0 || int(i.slot) >= len(a.slots) {
		return false
	}
	s := a.slots[i.slot]
	return s.gen == i.gen && s.state != slotDead
}

func (i Index[T]) ptr(a *Arena, op string) (*slot, *T) {
	s := a.lookup(op, i.slot, i.gen)
	p, ok := s.value.(*T)
	if !ok {
		panic(violation(op, int(i.slot), "type mismatch"))
	}
	return s, p
}

// Get returns a copy of the node. The slot must not be borrowed.
func (i Index[T]) Get(a *Arena) T {
	s, p := i.ptr(a, "get")
	if s.state == slotBorrowed {
		panic(violation("get", int(i.slot), "slot is borrowed"))
	}
	return *p
}

// With gives fn exclusive access to the node for the duration of the call.
func (i Index[T]) With(a *Arena, fn func(v *T)) {
	s, p := i.ptr(a, "borrow")
	if s.state == slotBorrowed {
		panic(violation("borrow", int(i.slot), "slot is already borrowed"))
	}
	s.state = slotBorrowed
	defer func() {
		// the table may have grown while fn ran
		a.slots[i.slot].state = slotLive
	}()
	fn(p)
}

// Take moves the node out of the arena and frees the slot. The index must not
// be used afterwards.
func (i Index[T]) Take(a *Arena) T {
	s, p := i.ptr(a, "take")
	if s.state == slotBorrowed {
		panic(violation("take", int(i.slot), "slot is borrowed"))
	}
	v := *p
	a.kill(s)
	return v
}

// Clone deep-copies the node into a new slot.
func (i Index[T]) Clone(a *Arena) Index[T] {
	v := i.Get(a)
	if c, ok := any(v).(Cloner[T]); ok {
		v = c.CloneIn(a)
	}
	return New(a, v)
}
