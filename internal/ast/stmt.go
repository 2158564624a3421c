package ast

// Stmt is one statement of a block.
type Stmt interface {
	stmtNode()
}

type (
	EmptyStmt struct {
		Semi Token
	}
	LetStmt struct {
		Attrs   []Attr
		Let     Token
		Pat     PatID
		Colon   *Token
		Type    TypeID
		Eq      *Token
		Init    ExprID
		Else    *Token
		Diverge *Block
		Semi    Token
	}
	ItemStmt struct {
		Item Item
	}
	// ExprStmt without Semi is either block-like or the block's tail.
	ExprStmt struct {
		Attrs []Attr
		Expr  ExprID
		Semi  *Token
	}
)

func (*EmptyStmt) stmtNode() {}
func (*LetStmt) stmtNode()   {}
func (*ItemStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()  {}
