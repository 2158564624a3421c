package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/recursive"
)

// block parses `{ stmts }`. Everything after the brace is committed.
func block(c *cursor.Cursor) (ast.Block, error) {
	var b ast.Block
	var err error
	if b.Open, err = punct("{")(c); err != nil {
		return b, err
	}
	if b.Attrs, err = innerAttrs(c); err != nil {
		return b, err
	}
	for {
		done, err := atClose(c, b.Open, "}")
		if err != nil {
			return b, err
		}
		if done {
			break
		}
		st, err := must(c, statement)
		if err != nil {
			return b, err
		}
		b.Stmts = append(b.Stmts, st)
	}
	b.Close, err = punct("}")(c)
	return b, err
}

func statement(c *cursor.Cursor) (ast.Stmt, error) {
	if peekPrefix(c, ";") {
		semi, err := punct(";")(c)
		return &ast.EmptyStmt{Semi: semi}, err
	}
	attrs, err := outerAttrs(c)
	if err != nil {
		return nil, err
	}
	if peekWord(c) == "let" {
		return letStmt(c, attrs)
	}
	it, err := opt(c, func(c *cursor.Cursor) (ast.Item, error) { return item(c, attrs, true) })
	if err != nil {
		return nil, err
	}
	if it != nil {
		return &ast.ItemStmt{Item: *it}, nil
	}
	e, blockLike, err := stmtExpr(c)
	if err != nil {
		return nil, err
	}
	st := &ast.ExprStmt{Attrs: attrs, Expr: e}
	if st.Semi, err = opt(c, punct(";")); err != nil {
		return nil, err
	}
	if st.Semi == nil && !blockLike && !peekPrefix(c, "}") {
		return nil, cursor.AsFatal(fail(c, "`;`"))
	}
	return st, nil
}

// blockLikeWords start expressions that end a statement at their closing
// brace.
var blockLikeWords = map[string]bool{
	"if": true, "match": true, "while": true, "loop": true, "for": true,
	"unsafe": true, "const": true, "async": true, "try": true,
}

// stmtExpr parses an expression in statement position. A block-like
// expression there is complete at its closing brace unless `.` or `?`
// continues it: `if c {} -1` is two statements.
func stmtExpr(c *cursor.Cursor) (ast.ExprID, bool, error) {
	b := peekByte(c)
	w := peekWord(c)
	if b == '{' || b == '\'' || blockLikeWords[w] || (w != "" && !reserved[w]) {
		ps, err := cursor.Peek(c, exprBase)
		if err != nil && cursor.IsFatal(err) {
			return ast.NoExpr, false, err
		}
		if ps != nil && ast.BlockLike(ps.Value()) {
			switch byteAfterSpace(c, ps.End()) {
			case '.', '?':
				// the block is the chain's first operand, already parsed
				e, err := cursor.Parse(c, func(c *cursor.Cursor) (ast.ExprID, error) {
					return recursive.ParseFrom(c, exprFamily, ps)
				})
				return e, false, err
			default:
				e := cursor.SetPeeked(c, ps)
				return arena.New(c.Arena(), e), true, nil
			}
		}
		cursor.Discard(c, ps)
	}
	e, err := expr(c)
	return e, false, err
}

func letStmt(c *cursor.Cursor, attrs []ast.Attr) (ast.Stmt, error) {
	let, err := keyword("let")(c)
	if err != nil {
		return nil, err
	}
	st := &ast.LetStmt{Attrs: attrs, Let: let}
	if st.Pat, err = must(c, pattern); err != nil {
		return nil, err
	}
	if st.Colon, err = opt(c, punct(":")); err != nil {
		return nil, err
	}
	if st.Colon != nil {
		if st.Type, err = must(c, typ); err != nil {
			return nil, err
		}
	}
	if st.Eq, err = opt(c, punct("=")); err != nil {
		return nil, err
	}
	if st.Eq != nil {
		if st.Init, err = must(c, expr); err != nil {
			return nil, err
		}
		if st.Else, err = opt(c, keyword("else")); err != nil {
			return nil, err
		}
		if st.Else != nil {
			blk, err := must(c, block)
			if err != nil {
				return nil, err
			}
			st.Diverge = &blk
		}
	}
	st.Semi, err = must(c, punct(";"))
	return st, err
}
