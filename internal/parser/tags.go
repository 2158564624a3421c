package parser

import "rustidy/internal/cursor"

// Tags disabling alternatives at one syntactic position.
const (
	// NoStructLiteral rejects `Path { ... }` where a block must follow:
	// conditions, scrutinees, loop iterators.
	NoStructLiteral cursor.Tag = "no-struct-literal"
	// NoTrailingBlock makes an open range prefer `x..` over `x.. { block }`.
	NoTrailingBlock cursor.Tag = "no-trailing-block"
	// AllowLet permits `let` conditions in `if` and `while`.
	AllowLet cursor.Tag = "allow-let"
	// NoLazyBoolean stops a let scrutinee before `&&` / `||`.
	NoLazyBoolean cursor.Tag = "no-lazy-boolean"
	// NoOrPattern stops a closure parameter pattern before `|`.
	NoOrPattern cursor.Tag = "no-or-pattern"
)

var (
	condTags      = []cursor.Tag{NoStructLiteral, NoTrailingBlock, AllowLet}
	scrutineeTags = []cursor.Tag{NoStructLiteral, NoTrailingBlock}
	letCondTags   = []cursor.Tag{NoStructLiteral, NoTrailingBlock, NoLazyBoolean}
)
