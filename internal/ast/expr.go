package ast

import (
	"rustidy/internal/arena"
)

// Expr is the root of the expression family. Every concrete node is a
// pointer type; ExprAs recovers it.
type Expr interface {
	exprNode()
}

// ExprAs returns the node behind id when it has type T.
func ExprAs[T Expr](a *arena.Arena, id ExprID) (T, bool) {
	v, ok := id.Get(a).(T)
	return v, ok
}

// Postfix is a suffix waiting for its operand.
type Postfix interface {
	Expr
	WithOperand(operand ExprID) Expr
}

// UnaryOp is a prefix operator before its operand is known.
type UnaryOp struct {
	Op  Token // `-` `!` `*` `&` `&&` `..` `..=`
	Raw *Token
	Mut *Token // `&mut`, `&raw const`
}

// BinOp is an infix operator.
type BinOp struct {
	Op Token
}

type (
	Lit struct {
		Tok Token
	}
	PathExpr struct {
		Path Path
	}
	StructLit struct {
		Path   Path
		Open   Token
		Fields Punctuated[FieldInit]
		Dots   *Token
		Base   ExprID
		Close  Token
	}
	Paren struct {
		Open  Token
		Inner ExprID
		Close Token
	}
	Tuple struct {
		Elems Delimited[ExprID]
	}
	Array struct {
		Open  Token
		Elems Punctuated[ExprID]
		Semi  *Token
		Len   ExprID
		Close Token
	}
	BlockExpr struct {
		Label *Label
		Kws   []Token // unsafe, async, move, const, try
		Block Block
	}
	If struct {
		If   Token
		Cond ExprID
		Then Block
		Else *Token
		// Next is an *If or a *BlockExpr.
		Next ExprID
	}
	Match struct {
		Match     Token
		Scrutinee ExprID
		Open      Token
		Attrs     []Attr
		Arms      []MatchArm
		Close     Token
	}
	While struct {
		Label *Label
		While Token
		Cond  ExprID
		Body  Block
	}
	Loop struct {
		Label *Label
		Loop  Token
		Body  Block
	}
	For struct {
		Label *Label
		For   Token
		Pat   PatID
		In    Token
		Iter  ExprID
		Body  Block
	}
	Closure struct {
		Kws    []Token // async, move, static
		OrOr   *Token
		Open   *Token
		Params Punctuated[ClosureParam]
		Close  *Token
		Ret    *RetType
		Body   ExprID
	}
	Return struct {
		Kw    Token
		Value ExprID
	}
	Break struct {
		Kw    Token
		Label *Token
		Value ExprID
	}
	Continue struct {
		Kw    Token
		Label *Token
	}
	// Yield covers `yield` and `become`.
	Yield struct {
		Kw    Token
		Value ExprID
	}
	MacroExpr struct {
		Mac MacroCall
	}
	RangeFull struct {
		Op Token
	}
	Let struct {
		Let   Token
		Pat   PatID
		Eq    Token
		Value ExprID
	}
	Underscore struct {
		Tok Token
	}

	Unary struct {
		Op      UnaryOp
		Operand ExprID
	}
	Binary struct {
		Lhs ExprID
		Op  BinOp
		Rhs ExprID
	}

	Call struct {
		Callee ExprID
		Args   Delimited[ExprID]
	}
	MethodCall struct {
		Recv      ExprID
		Dot       Token
		Name      Token
		Turbofish *GenericArgs
		Args      Delimited[ExprID]
	}
	Field struct {
		Recv ExprID
		Dot  Token
		Name Token // identifier or tuple index
	}
	Await struct {
		Recv ExprID
		Dot  Token
		Kw   Token
	}
	IndexExpr struct {
		Recv  ExprID
		Open  Token
		Index ExprID
		Close Token
	}
	Try struct {
		Operand ExprID
		Q       Token
	}
	Cast struct {
		Operand ExprID
		As      Token
		Type    TypeID
	}
	RangeFrom struct {
		Start ExprID
		Op    Token
	}
)

// FieldInit is `name: value`, the shorthand `name`, or `0: value`.
type FieldInit struct {
	Attrs []Attr
	Name  Token
	Colon *Token
	Value ExprID
}

type MatchArm struct {
	Attrs []Attr
	Bar   *Token
	Pat   PatID
	If    *Token
	Guard ExprID
	Arrow Token
	Body  ExprID
	Comma *Token
}

type ClosureParam struct {
	Attrs []Attr
	Pat   PatID
	Colon *Token
	Type  TypeID
}

// Block is `{ stmts }`.
type Block struct {
	Open  Token
	Attrs []Attr
	Stmts []Stmt
	Close Token
}

func (*Lit) exprNode()        {}
func (*PathExpr) exprNode()   {}
func (*StructLit) exprNode()  {}
func (*Paren) exprNode()      {}
func (*Tuple) exprNode()      {}
func (*Array) exprNode()      {}
func (*BlockExpr) exprNode()  {}
func (*If) exprNode()         {}
func (*Match) exprNode()      {}
func (*While) exprNode()      {}
func (*Loop) exprNode()       {}
func (*For) exprNode()        {}
func (*Closure) exprNode()    {}
func (*Return) exprNode()     {}
func (*Break) exprNode()      {}
func (*Continue) exprNode()   {}
func (*Yield) exprNode()      {}
func (*MacroExpr) exprNode()  {}
func (*RangeFull) exprNode()  {}
func (*Let) exprNode()        {}
func (*Underscore) exprNode() {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}
func (*Field) exprNode()      {}
func (*Await) exprNode()      {}
func (*IndexExpr) exprNode()  {}
func (*Try) exprNode()        {}
func (*Cast) exprNode()       {}
func (*RangeFrom) exprNode()  {}

func (e *Call) WithOperand(x ExprID) Expr       { e.Callee = x; return e }
func (e *MethodCall) WithOperand(x ExprID) Expr { e.Recv = x; return e }
func (e *Field) WithOperand(x ExprID) Expr      { e.Recv = x; return e }
func (e *Await) WithOperand(x ExprID) Expr      { e.Recv = x; return e }
func (e *IndexExpr) WithOperand(x ExprID) Expr  { e.Recv = x; return e }
func (e *Try) WithOperand(x ExprID) Expr        { e.Operand = x; return e }
func (e *Cast) WithOperand(x ExprID) Expr       { e.Operand = x; return e }
func (e *RangeFrom) WithOperand(x ExprID) Expr  { e.Start = x; return e }

// BlockLike reports whether e ends with a block and can stand as a
// statement without a semicolon.
func BlockLike(e Expr) bool {
	switch n := e.(type) {
	case *BlockExpr, *If, *Match, *While, *Loop, *For:
		return true
	case *MacroExpr:
		return n.Mac.Tree.Delim == '{'
	}
	return false
}
