package ast

import "rustidy/internal/arena"

// Pat is the root of the pattern family.
type Pat interface {
	patNode()
}

// PatAs returns the node behind id when it has type T.
func PatAs[T Pat](a *arena.Arena, id PatID) (T, bool) {
	v, ok := id.Get(a).(T)
	return v, ok
}

// PatPrefix is `&`, `&&`, `&mut` or a `..=` range-to before its operand.
type PatPrefix struct {
	Op  Token
	Mut *Token
}

// PatOp is an infix pattern operator: `|`, `@`, `..=`, `..`, `...`.
type PatOp struct {
	Op Token
}

type (
	RefPat struct {
		Amp   Token
		Mut   *Token
		Inner PatID
	}
	WildPat struct {
		Tok Token
	}
	RestPat struct {
		Tok Token
	}
	LitPat struct {
		Minus *Token
		Lit   Token
	}
	IdentPat struct {
		Ref  *Token
		Mut  *Token
		Name Token
	}
	TuplePat struct {
		Elems Delimited[PatID]
	}
	ParenPat struct {
		Open  Token
		Inner PatID
		Close Token
	}
	SlicePat struct {
		Elems Delimited[PatID]
	}
	PathPat struct {
		Path Path
	}
	TupleStructPat struct {
		Path  Path
		Elems Delimited[PatID]
	}
	StructPat struct {
		Path   Path
		Open   Token
		Fields Punctuated[FieldPat]
		Dots   *Token
		Close  Token
	}
	MacroPat struct {
		Mac MacroCall
	}
	BinPat struct {
		Lhs PatID
		Op  PatOp
		Rhs PatID
	}
	RangeFromPat struct {
		Start PatID
		Op    Token
	}
	RangeToPat struct {
		Op  Token
		End PatID
	}
)

// FieldPat is `name: pat` or the shorthand `ref mut name`.
type FieldPat struct {
	Attrs []Attr
	Name  Token
	Colon *Token
	Pat   PatID
	// shorthand form
	Ref *Token
	Mut *Token
}

func (*RefPat) patNode()         {}
func (*WildPat) patNode()        {}
func (*RestPat) patNode()        {}
func (*LitPat) patNode()         {}
func (*IdentPat) patNode()       {}
func (*TuplePat) patNode()       {}
func (*ParenPat) patNode()       {}
func (*SlicePat) patNode()       {}
func (*PathPat) patNode()        {}
func (*TupleStructPat) patNode() {}
func (*StructPat) patNode()      {}
func (*MacroPat) patNode()       {}
func (*BinPat) patNode()         {}
func (*RangeFromPat) patNode()   {}
func (*RangeToPat) patNode()     {}
