package recursive

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"rustidy/internal/arena"
	"rustidy/internal/cursor"
	"rustidy/internal/source"
)

const (
	tagNoBlock         cursor.Tag = "no-block"
	tagNoTrailingBlock cursor.Tag = "no-trailing-block"
)

type node struct {
	op   string
	kids []*node
}

func (n *node) String() string {
	if len(n.kids) == 0 {
		return n.op
	}
	parts := []string{n.op}
	for _, k := range n.kids {
		parts = append(parts, k.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type toyFamily = Family[*node, string, arena.Index[string], string, string]

func skipSpace(c *cursor.Cursor) {
	c.EatFunc(unicode.IsSpace)
}

func eatAny(c *cursor.Cursor, what string, ops ...string) (string, error) {
	skipSpace(c)
	for _, op := range ops {
		if _, ok := c.Eat(op); ok {
			return op, nil
		}
	}
	return "", c.Expected(what)
}

func newToy(tight bool) *toyFamily {
	f := &toyFamily{Name: "toy"}
	f.Prefix = func(c *cursor.Cursor) (string, error) {
		return eatAny(c, "prefix", "&&", "&", "-", "..")
	}
	f.Base = func(c *cursor.Cursor) (arena.Index[string], error) {
		noBlock := c.HasTag(tagNoBlock)
		skipSpace(c)
		start := c.Pos()
		switch b := c.Byte(); {
		case b >= '0' && b <= '9':
			c.EatFunc(unicode.IsDigit)
		case b >= 'a' && b <= 'z':
			c.EatFunc(unicode.IsLetter)
		case c.HasPrefix(".."):
			c.Advance(2)
		case b == '{':
			if noBlock {
				return arena.Index[string]{}, c.Expected("base")
			}
			open := c.Advance(1)
			skipSpace(c)
			if _, ok := c.Eat("}"); !ok {
				return arena.Index[string]{}, c.Unclosed(open, "}")
			}
			return arena.New(c.Arena(), "{}"), nil
		case b == '(':
			open := c.Advance(1)
			inner, err := Parse(c, f)
			if err != nil {
				return arena.Index[string]{}, err
			}
			skipSpace(c)
			if _, ok := c.Eat(")"); !ok {
				return arena.Index[string]{}, c.Unclosed(open, ")")
			}
			return arena.New(c.Arena(), inner.String()), nil
		default:
			return arena.Index[string]{}, c.Expected("base")
		}
		return arena.New(c.Arena(), c.Text(c.SpanFrom(start))), nil
	}
	f.Suffix = func(c *cursor.Cursor) (string, error) {
		return eatAny(c, "suffix", "?", "..")
	}
	f.Infix = func(c *cursor.Cursor) (string, error) {
		return eatAny(c, "infix", "&&", "..", "+", "-", "*", "=")
	}
	f.FromBase = func(c *cursor.Cursor, b arena.Index[string]) *node {
		return &node{op: b.Get(c.Arena())}
	}
	f.ApplyPrefix = func(_ *cursor.Cursor, p string, operand *node) *node {
		return &node{op: "pre" + p, kids: []*node{operand}}
	}
	f.ApplySuffix = func(_ *cursor.Cursor, operand *node, s string) *node {
		return &node{op: "post" + s, kids: []*node{operand}}
	}
	f.Join = func(_ *cursor.Cursor, lhs *node, op string, rhs *node) *node {
		return &node{op: op, kids: []*node{lhs, rhs}}
	}
	f.Class = func(op string) (Assoc, Level) {
		switch op {
		case "=":
			return Right, 1
		case "..":
			return Left, 2
		case "&&":
			return Left, 3
		case "+", "-":
			return Left, 4
		default:
			return Left, 5
		}
	}
	f.SuffixGuard = func(c *cursor.Cursor, infixEnd source.Pos) bool {
		if !c.HasTag(tagNoTrailingBlock) {
			return false
		}
		rest := strings.TrimLeft(string(c.File().Content[infixEnd:]), " ")
		return strings.HasPrefix(rest, "{")
	}
	if tight {
		f.SuffixBindsTighter = func(s string) bool { return s == "?" }
	}
	return f
}

// leveledRanges makes prefix and suffix `..` bind at the level of infix `..`.
func leveledRanges(f *toyFamily) *toyFamily {
	f.PrefixLevel = func(p string) (Level, bool) { return 2, p == ".." }
	f.SuffixLevel = func(s string) (Level, bool) { return 2, s == ".." }
	return f
}

func toyCursor(src string) *cursor.Cursor {
	fs := source.NewFileSet()
	id := fs.AddVirtual("toy", []byte(src))
	return cursor.New(fs.Get(id), nil, nil)
}

func parseToy(t *testing.T, src string, tags ...cursor.Tag) (*node, *cursor.Cursor) {
	t.Helper()
	c := toyCursor(src)
	n, err := cursor.WithTags(c, tags, newToy(false).Parser())
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return n, c
}

func TestEngineShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tags []cursor.Tag
		want string
		rest string
	}{
		{name: "precedence", src: "1 + 2 * 3", want: "(+ 1 (* 2 3))"},
		{name: "left assoc", src: "1 - 2 - 3", want: "(- (- 1 2) 3)"},
		{name: "tighter first", src: "1 * 2 + 3", want: "(+ (* 1 2) 3)"},
		{name: "right assoc", src: "a = b = c", want: "(= a (= b c))"},
		{name: "unary minus", src: "-1 - -2", want: "(- (pre- 1) (pre- 2))"},
		{name: "double reference prefix", src: "&&x", want: "(pre&& x)"},
		{name: "lazy and is infix", src: "a && b", want: "(&& a b)"},
		{name: "full range base", src: "..", want: ".."},
		{name: "range-to prefix", src: "..5", want: "(pre.. 5)"},
		{name: "range-from suffix", src: "0..", want: "(post.. 0)"},
		{name: "range infix", src: "0..5", want: "(.. 0 5)"},
		{name: "range with block operand", src: "0.. {}", want: "(.. 0 {})"},
		{name: "trailing block guard", src: "0.. {}", tags: []cursor.Tag{tagNoTrailingBlock}, want: "(post.. 0)", rest: " {}"},
		{name: "dangling infix backs off", src: "1 +", want: "1", rest: " +"},
		{name: "tag reasserted on right operand", src: "1 + {}", tags: []cursor.Tag{tagNoBlock}, want: "1", rest: " + {}"},
		{name: "delimiter resets tags", src: "(1 + {})", tags: []cursor.Tag{tagNoBlock}, want: "(+ 1 {})"},
		{name: "suffix folds atop prefix", src: "-a?", want: "(post? (pre- a))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c := parseToy(t, tt.src, tt.tags...)
			if got := n.String(); got != tt.want {
				t.Fatalf("parse %q = %s, want %s", tt.src, got, tt.want)
			}
			if rest := string(c.Rest()); rest != tt.rest {
				t.Fatalf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestSuffixBindsTighter(t *testing.T) {
	c := toyCursor("-a?")
	n, err := Parse(c, newToy(true))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := n.String(); got != "(pre- (post? a))" {
		t.Fatalf("got %s", got)
	}
}

func TestTotalMismatch(t *testing.T) {
	c := toyCursor(" )")
	_, err := Parse(c, newToy(false))
	var pe *cursor.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *cursor.Error, got %v", err)
	}
	if pe.Fatal {
		t.Fatalf("mismatch must not be fatal")
	}
	want := "expected one of: a prefix operator, a base term, a postfix operator, a binary operator"
	if !strings.HasPrefix(pe.Error(), want) {
		t.Fatalf("message = %q", pe.Error())
	}
	if pe.Pos != 1 {
		t.Fatalf("pos = %d, want 1", pe.Pos)
	}
}

func TestFatalPropagates(t *testing.T) {
	c := toyCursor("1 + {")
	_, err := Parse(c, newToy(false))
	if !cursor.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	var pe *cursor.Error
	if !errors.As(err, &pe) || pe.Kind != cursor.KindUnclosed {
		t.Fatalf("expected unclosed delimiter, got %v", err)
	}
}

func TestDepthLimit(t *testing.T) {
	c := toyCursor("((((1))))")
	c.MaxDepth = 3
	_, err := Parse(c, newToy(false))
	var pe *cursor.Error
	if !errors.As(err, &pe) || pe.Kind != cursor.KindTooDeep || !pe.Fatal {
		t.Fatalf("expected fatal too-deep error, got %v", err)
	}
}

func TestLongChainIsIterative(t *testing.T) {
	const n = 5000
	src := strings.Repeat("1+", n) + "1"
	c := toyCursor(src)
	c.MaxDepth = 2
	root, err := Parse(c, newToy(false))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	depth := 0
	for cur := root; len(cur.kids) == 2; cur = cur.kids[0] {
		depth++
	}
	if depth != n {
		t.Fatalf("left spine depth = %d, want %d", depth, n)
	}
}

func TestArenaReclamation(t *testing.T) {
	f := newToy(false)
	direct := toyCursor("1 + 2 * 3")
	if _, err := Parse(direct, f); err != nil {
		t.Fatalf("parse: %v", err)
	}

	c := toyCursor("1 + 2 * 3")
	failing := func(c *cursor.Cursor) (*node, error) {
		if _, err := Parse(c, f); err != nil {
			return nil, err
		}
		return nil, c.Expected("`;`")
	}
	for range 50 {
		if _, err := cursor.TryParse(c, failing); err == nil {
			t.Fatalf("expected failure")
		}
	}
	if _, err := Parse(c, f); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := c.Arena().Live(), direct.Arena().Live(); got != want {
		t.Fatalf("live slots = %d, want %d", got, want)
	}
	if got, want := c.Arena().Len(), direct.Arena().Len(); got != want {
		t.Fatalf("slot table = %d, want %d", got, want)
	}
}

func TestLeveledPrefixAndSuffix(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2..", "(post.. (+ 1 2))"},
		{"a && b..", "(post.. (&& a b))"},
		{"a = b..", "(= a (post.. b))"},
		{"-a..", "(post.. (pre- a))"},
		{"..1 + 2", "(pre.. (+ 1 2))"},
		{"..a = b", "(= (pre.. a) b)"},
		{"a = ..b * c", "(= a (pre.. (* b c)))"},
		{"-..a + b", "(pre- (pre.. (+ a b)))"},
		{"..", ".."},
		{"0..5", "(.. 0 5)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(toyCursor(tt.src), leveledRanges(newToy(false)))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := n.String(); got != tt.want {
				t.Fatalf("parse %q = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestLookaheadIsReused(t *testing.T) {
	const depth = 24
	tests := map[string]string{
		"suffix or infix": strings.Repeat("x..(", depth) + "x" + strings.Repeat(")", depth),
		"prefix or base":  strings.Repeat("..(", depth) + "x" + strings.Repeat(")", depth),
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			f := newToy(false)
			calls := 0
			base := f.Base
			f.Base = func(c *cursor.Cursor) (arena.Index[string], error) {
				calls++
				return base(c)
			}
			c := toyCursor(src)
			if _, err := Parse(c, f); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(c.Rest()) != 0 {
				t.Fatalf("rest = %q", c.Rest())
			}
			// two base attempts per level: the operand and the lookahead past it
			if calls > 3*(depth+1) {
				t.Fatalf("base ran %d times for depth %d", calls, depth)
			}
		})
	}
}

func TestParseFromCommitsFirstBase(t *testing.T) {
	f := newToy(false)
	c := toyCursor("(1 + 2)? * 3")
	first, err := cursor.Peek(c, f.Base)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	calls := 0
	base := f.Base
	f.Base = func(c *cursor.Cursor) (arena.Index[string], error) {
		calls++
		return base(c)
	}
	n, err := ParseFrom(c, f, first)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := n.String(); got != "(* (post? (+ 1 2)) 3)" {
		t.Fatalf("got %s", got)
	}
	if calls != 1 {
		t.Fatalf("base ran %d times, want once for 3", calls)
	}
}

func TestUnusedLookaheadIsReleased(t *testing.T) {
	// the guard keeps `..` a suffix, so the peeked block is never taken
	direct := toyCursor("0..")
	if _, err := Parse(direct, newToy(false)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := toyCursor("0.. {}")
	if _, err := cursor.WithTags(c, []cursor.Tag{tagNoTrailingBlock}, newToy(false).Parser()); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := c.Arena().Live(), direct.Arena().Live(); got != want {
		t.Fatalf("live slots = %d, want %d", got, want)
	}
}
