package ast

import "rustidy/internal/arena"

type (
	// главные рекурсивные сущности
	ExprID = arena.Index[Expr]
	PatID  = arena.Index[Pat]
	TypeID = arena.Index[Type]
)

// NoExpr etc. are the invalid (absent) indices.
var (
	NoExpr ExprID
	NoPat  PatID
	NoType TypeID
)
