package arena

import (
	"fmt"

	"fortio.org/safecast"
)

type slotState uint8

const (
	slotDead slotState = iota
	slotLive
	slotBorrowed
)

type slot struct {
	value any // *T
	gen   uint64
	state slotState
}

// Arena is a growable slot table. The zero value is ready to use.
type Arena struct {
	slots []slot
	gen   uint64 // последнее выданное поколение
	live  int
}

// Mark is an allocation watermark; every slot allocated after Mark() has a
// generation >= the returned value.
type Mark uint64

// NewArena creates an arena with room for capHint slots.
func NewArena(capHint uint) *Arena {
	return &Arena{slots: make([]slot, 0, capHint)}
}

// Live returns the number of slots that currently own a node.
func (a *Arena) Live() int { return a.live }

// Len returns the size of the slot table, dead slots included.
func (a *Arena) Len() int { return len(a.slots) }

// Mark reclaims the dead tail and returns the current watermark.
func (a *Arena) Mark() Mark {
	a.reclaim()
	return Mark(a.gen + 1)
}

// ReleaseSince drops every live slot allocated at or after m and returns how
// many were dropped.
func (a *Arena) ReleaseSince(m Mark) int {
	return a.ReleaseRange(m, Mark(a.gen+1))
}

// ReleaseRange drops every live slot whose generation lies in [from, to).
func (a *Arena) ReleaseRange(from, to Mark) int {
	dropped := 0
	for i := len(a.slots) - 1; i >= 0; i-- {
		s := &a.slots[i]
		if s.gen < uint64(from) {
			break
		}
		if s.gen >= uint64(to) {
			continue
		}
		switch s.state {
		case slotLive:
			a.kill(s)
			dropped++
		case slotBorrowed:
			panic(violation("release", i, "slot is borrowed"))
		}
	}
	return dropped
}

func (a *Arena) kill(s *slot) {
	s.value = nil
	s.state = slotDead
	a.live--
}

// reclaim truncates contiguous dead slots at the end of the table.
func (a *Arena) reclaim() {
	n := len(a.slots)
	for n > 0 && a.slots[n-1].state == slotDead {
		n--
	}
	if n == len(a.slots) {
		return
	}
	clear(a.slots[n:])
	a.slots = a.slots[:n]
}

func (a *Arena) alloc(value any) (uint32, uint64) {
	a.reclaim()
	pos, err := safecast.Conv[uint32](len(a.slots))
	if err != nil {
		panic(fmt.Errorf("arena slot table overflow: %w", err))
	}
	a.gen++
	a.slots = append(a.slots, slot{value: value, gen: a.gen, state: slotLive})
	a.live++
	return pos, a.gen
}

// lookup returns the slot for (pos, gen) or panics when the index is stale.
func (a *Arena) lookup(op string, pos uint32, gen uint64) *slot {
	if gen == 0 {
		panic(violation(op, int(pos), "invalid index"))
	}
	if int(pos) >= len(a.slots) || a.slots[pos].gen != gen || a.slots[pos].state == slotDead {
		panic(violation(op, int(pos), "slot was released"))
	}
	return &a.slots[pos]
}

// Violation is the panic value for arena misuse.
type Violation struct {
	Op     string
	Slot   int
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("arena: %s on slot %d: %s", v.Op, v.Slot, v.Reason)
}

func violation(op string, pos int, reason string) *Violation {
	return &Violation{Op: op, Slot: pos, Reason: reason}
}
