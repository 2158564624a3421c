package recursive

import (
	"rustidy/internal/cursor"
	"rustidy/internal/source"
)

// Assoc is the associativity class of an infix operator.
type Assoc uint8

const (
	Left Assoc = iota
	Right
	// Fully associative operators fold pairwise in encounter order.
	Fully
)

func (a Assoc) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case Fully:
		return "fully"
	default:
		return "assoc?"
	}
}

// Level orders infix families; a higher level binds tighter.
type Level int

// Family declares one recursive grammar: R is the shared root type, P/B/S/I
// are the role-specific views.
type Family[R, P, B, S, I any] struct {
	// Name is used for "expected <Name>" wrapping by callers; the engine
	// only uses it in trace output.
	Name string

	Prefix cursor.Parser[P]
	Base   cursor.Parser[B]
	Suffix cursor.Parser[S]
	Infix  cursor.Parser[I]

	FromBase    func(c *cursor.Cursor, b B) R
	ApplyPrefix func(c *cursor.Cursor, p P, operand R) R
	ApplySuffix func(c *cursor.Cursor, operand R, s S) R
	Join        func(c *cursor.Cursor, lhs R, op I, rhs R) R
	Class       func(op I) (Assoc, Level)

	// SuffixGuard is asked when both a Suffix and a true Infix match at the
	// same position; returning true keeps the Suffix. infixEnd is where the
	// Infix would stop. Chain tags are in force while it runs.
	SuffixGuard func(c *cursor.Cursor, infixEnd source.Pos) bool

	// SuffixBindsTighter marks suffixes that apply to the Base before the
	// term's prefixes. Without it every suffix folds atop the prefixes.
	SuffixBindsTighter func(s S) bool

	// PrefixLevel and SuffixLevel give a prefix or suffix a binding level
	// like an infix has. A leveled prefix takes everything to its right
	// that binds tighter than its level (`..a + b` is `..(a + b)`), a
	// leveled suffix everything to its left (`a + b..` is `(a + b)..`).
	PrefixLevel func(p P) (Level, bool)
	SuffixLevel func(s S) (Level, bool)
}

// Role names used in total-mismatch errors.
const (
	PrefixRole = "a prefix operator"
	BaseRole   = "a base term"
	SuffixRole = "a postfix operator"
	InfixRole  = "a binary operator"
)
