package cursor

import "rustidy/internal/source"

// Tag is a named condition that disables an alternative at one position.
// It is visible only while the cursor sits exactly where it was pushed.
type Tag string

type tagEntry struct {
	tag Tag
	pos source.Pos
}

// HasTag reports whether tag was pushed at the current position.
func (c *Cursor) HasTag(tag Tag) bool {
	for i := len(c.tags) - 1; i >= 0; i-- {
		e := c.tags[i]
		if e.pos == c.pos && e.tag == tag {
			return true
		}
	}
	return false
}

// VisibleTags returns the tags visible at the current position, bottom first.
func (c *Cursor) VisibleTags() []Tag {
	var out []Tag
	for _, e := range c.tags {
		if e.pos == c.pos {
			out = append(out, e.tag)
		}
	}
	return out
}

func (c *Cursor) popTags(n int) {
	if n < len(c.tags) {
		c.tags = c.tags[:n]
	}
}

// WithTag runs p with tag pushed at the current position.
func WithTag[T any](c *Cursor, tag Tag, p Parser[T]) (T, error) {
	return WithTags(c, []Tag{tag}, p)
}

// WithTags pushes every tag at the current position, runs p and pops them on
// every exit path, panics included.
func WithTags[T any](c *Cursor, tags []Tag, p Parser[T]) (T, error) {
	n := len(c.tags)
	for _, t := range tags {
		c.tags = append(c.tags, tagEntry{tag: t, pos: c.pos})
	}
	defer c.popTags(n)
	return p(c)
}
