package cursor

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"rustidy/internal/arena"
	"rustidy/internal/source"
)

// DefaultMaxDepth bounds engine nesting when the caller does not set one.
const DefaultMaxDepth = 256

// Cursor представляет собой позицию в файле плюс всё состояние одного разбора:
// стек тегов, арену узлов и таблицу синтезированных фрагментов.
type Cursor struct {
	file  *source.File
	src   []byte
	pos   source.Pos
	limit source.Pos

	tags  []tagEntry
	arena *arena.Arena
	repl  *source.Replacements

	depth    int
	MaxDepth int
}

// New creates a cursor at the start of f. A nil arena or replacement table is
// replaced with a fresh one.
func New(f *source.File, a *arena.Arena, r *source.Replacements) *Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	if a == nil {
		a = arena.NewArena(uint(len(f.Content) / 4))
	}
	if r == nil {
		r = &source.Replacements{}
	}
	return &Cursor{
		file:     f,
		src:      f.Content,
		limit:    source.Pos(limit),
		arena:    a,
		repl:     r,
		MaxDepth: DefaultMaxDepth,
	}
}

func (c *Cursor) File() *source.File                 { return c.file }
func (c *Cursor) Arena() *arena.Arena                { return c.arena }
func (c *Cursor) Replacements() *source.Replacements { return c.repl }
func (c *Cursor) Pos() source.Pos                    { return c.pos }

// EOF проверяет, достигнут ли конец файла
func (c *Cursor) EOF() bool {
	return c.pos >= c.limit
}

// Rest returns the unread input. The slice must not be modified.
func (c *Cursor) Rest() []byte {
	return c.src[c.pos:c.limit]
}

// Byte returns the current byte or 0 at EOF.
func (c *Cursor) Byte() byte {
	return c.ByteAt(0)
}

// ByteAt returns the byte n positions ahead, or 0 past EOF.
func (c *Cursor) ByteAt(n int) byte {
	i := int(c.pos) + n
	if i < 0 || i >= int(c.limit) {
		return 0
	}
	return c.src[i]
}

// Rune decodes the current rune; size is 0 at EOF.
func (c *Cursor) Rune() (r rune, size int) {
	if c.EOF() {
		return 0, 0
	}
	return utf8.DecodeRune(c.Rest())
}

// HasPrefix reports whether the unread input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	rest := c.Rest()
	return len(rest) >= len(s) && string(rest[:len(s)]) == s
}

// Advance consumes n bytes and returns the span they cover.
func (c *Cursor) Advance(n int) source.Span {
	start := c.pos
	end := int(c.pos) + n
	if n < 0 || end > int(c.limit) {
		panic(fmt.Errorf("cursor: advance %d past end of input at %d", n, c.pos))
	}
	c.pos = source.Pos(end)
	return c.SpanFrom(start)
}

// Eat consumes s if the input starts with it.
func (c *Cursor) Eat(s string) (source.Span, bool) {
	if !c.HasPrefix(s) {
		return source.Span{}, false
	}
	return c.Advance(len(s)), true
}

// EatFunc consumes the longest run of runes satisfying fn.
func (c *Cursor) EatFunc(fn func(r rune) bool) source.Span {
	start := c.pos
	for !c.EOF() {
		r, size := c.Rune()
		if !fn(r) {
			break
		}
		c.pos += source.Pos(size)
	}
	return c.SpanFrom(start)
}

// IndexFrom returns the offset of needle from the current position, or -1.
func (c *Cursor) IndexFrom(needle string) int {
	return bytes.Index(c.Rest(), []byte(needle))
}

// SpanFrom returns the span from start to the current position.
func (c *Cursor) SpanFrom(start source.Pos) source.Span {
	return source.Span{File: c.file.ID, Start: start, End: c.pos}
}

// SliceFrom returns an original-bytes slice from start to the current position.
func (c *Cursor) SliceFrom(start source.Pos) source.Slice {
	return source.Slice{Span: c.SpanFrom(start)}
}

// Here is an empty span at the current position.
func (c *Cursor) Here() source.Span {
	return c.SpanFrom(c.pos)
}

// Text returns the source text of span.
func (c *Cursor) Text(span source.Span) string {
	return span.Text(c.file)
}

// Synthesize stores text as the replacement for span.
func (c *Cursor) Synthesize(span source.Span, text string) source.Slice {
	return source.Slice{Span: span, Repl: c.repl.Add(text)}
}

// Enter accounts for one more level of engine nesting.
func (c *Cursor) Enter() error {
	limit := c.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if c.depth >= limit {
		return &Error{
			Kind:  KindTooDeep,
			Span:  c.Here(),
			Pos:   c.pos,
			Msg:   fmt.Sprintf("expression nesting exceeds %d levels", limit),
			Fatal: true,
		}
	}
	c.depth++
	return nil
}

// Leave undoes Enter.
func (c *Cursor) Leave() {
	if c.depth > 0 {
		c.depth--
	}
}

// Depth returns the current engine nesting.
func (c *Cursor) Depth() int { return c.depth }

// state is everything TryParse restores on a non-fatal failure.
type state struct {
	pos   source.Pos
	tags  int
	repls int
	mark  arena.Mark
}

func (c *Cursor) save() state {
	return state{
		pos:   c.pos,
		tags:  len(c.tags),
		repls: c.repl.Len(),
		mark:  c.arena.Mark(),
	}
}

func (c *Cursor) restore(s state) {
	c.pos = s.pos
	c.popTags(s.tags)
	c.repl.Truncate(s.repls)
	c.arena.ReleaseSince(s.mark)
}

// Checkpoint is a saved cursor state for Rewind.
type Checkpoint struct{ st state }

// Checkpoint records the position, tag depth, replacement count and arena mark.
func (c *Cursor) Checkpoint() Checkpoint {
	return Checkpoint{st: c.save()}
}

// Rewind returns to cp and drops every arena slot and synthesized slice
// created since.
func (c *Cursor) Rewind(cp Checkpoint) {
	c.restore(cp.st)
}
