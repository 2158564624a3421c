package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"rustidy/internal/ast"
	"rustidy/internal/source"
)

// CheckRoundTrip verifies that printing an untouched tree gives back the
// (normalized) file content byte for byte.
func CheckRoundTrip(f *ast.File) error {
	if f == nil || f.Src.File == nil {
		return fmt.Errorf("nil file")
	}
	got := f.Print()
	want := string(f.Src.File.Content)
	if got == want {
		return nil
	}
	i := 0
	for i < len(got) && i < len(want) && got[i] == want[i] {
		i++
	}
	return fmt.Errorf("round trip differs at byte %d: got %q, want %q", i, clip(got, i), clip(want, i))
}

// CheckTreeInvariants runs the structural invariants on a parsed file:
// 1) leaves tile the file: every whitespace leaf starts where the previous
// token ended, and every token starts where its whitespace ended
// 2) sibling nodes (spans covering their leaves) come in order and do not overlap
// 3) Enter/Leave and Indent/Dedent calls are balanced
//
// Spans of synthesized slices still point at the text they replace, so the
// checks hold after formatting too.
func CheckTreeInvariants(f *ast.File) error {
	if f == nil || f.Src.File == nil {
		return fmt.Errorf("nil file")
	}
	end, err := safecast.Conv[uint32](len(f.Src.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	c := &checker{fileID: f.Src.File.ID, end: source.Pos(end)}
	ast.Walk(c, f)
	if c.err != nil {
		return c.err
	}
	if c.depth != 0 {
		return fmt.Errorf("unbalanced indentation: %d levels left open", c.depth)
	}
	if len(c.stack) != 0 {
		return fmt.Errorf("unbalanced nodes: %d left open", len(c.stack))
	}
	return nil
}

type node struct {
	name string
	span source.Span
	seen bool
	// end of the last closed child
	lastChild source.Pos
}

type checker struct {
	fileID source.FileID
	end    source.Pos
	pos    source.Pos
	stack  []node
	depth  int
	err    error
}

func (c *checker) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *checker) Enter(name string) {
	c.stack = append(c.stack, node{name: name})
}

func (c *checker) Leave() {
	if len(c.stack) == 0 {
		c.fail("Leave without Enter")
		return
	}
	n := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if !n.seen || len(c.stack) == 0 {
		return
	}
	parent := &c.stack[len(c.stack)-1]
	if n.span.Start < parent.lastChild {
		c.fail("%s %v overlaps its previous sibling (ends at %d)", n.name, n.span, parent.lastChild)
	}
	parent.lastChild = n.span.End
	c.cover(parent, n.span)
}

func (c *checker) cover(n *node, sp source.Span) {
	if !n.seen {
		n.span = sp
		n.seen = true
		return
	}
	n.span = n.span.Cover(sp)
}

func (c *checker) Token(t *ast.Token, _ ast.Spacing) {
	c.leaf("whitespace", t.WS.Slice.Span)
	c.leaf("token", t.Text.Span)
	if len(c.stack) > 0 {
		c.cover(&c.stack[len(c.stack)-1], t.Text.Span)
	}
}

func (c *checker) leaf(what string, sp source.Span) {
	if sp.File != c.fileID {
		c.fail("%s %v belongs to file %d, want %d", what, sp, sp.File, c.fileID)
	}
	if sp.Start != c.pos {
		c.fail("%s %v does not start where the previous leaf ended (%d)", what, sp, c.pos)
	}
	if sp.End < sp.Start || sp.End > c.end {
		c.fail("%s %v is out of bounds (file length %d)", what, sp, c.end)
	}
	c.pos = sp.End
}

func (c *checker) Indent() { c.depth++ }

func (c *checker) Dedent() {
	c.depth--
	if c.depth < 0 {
		c.fail("Dedent below zero")
	}
}

func (c *checker) EOF(ws *ast.Whitespace) {
	c.leaf("trailing whitespace", ws.Slice.Span)
	if c.pos != c.end {
		c.fail("leaves end at %d, file length %d", c.pos, c.end)
	}
}

func clip(s string, at int) string {
	const width = 20
	from := max(at-width, 0)
	to := min(at+width, len(s))
	return s[from:to]
}
