package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/recursive"
	"rustidy/internal/source"
)

// binOp carries the operator's class along with the tree node.
type binOp struct {
	ast.BinOp
	assoc recursive.Assoc
	level recursive.Level
}

// unaryOp marks `..` and `..=` used as prefixes: they bind at rangeLevel,
// not to the nearest operand.
type unaryOp struct {
	ast.UnaryOp
	ranged bool
}

// rangeLevel sits between assignment and `||`.
const rangeLevel recursive.Level = 2

var (
	exprFamily *recursive.Family[ast.ExprID, unaryOp, ast.Expr, ast.Postfix, binOp]
	exprParser cursor.Parser[ast.ExprID]
)

func init() {
	exprFamily = &recursive.Family[ast.ExprID, unaryOp, ast.Expr, ast.Postfix, binOp]{
		Name:   "expression",
		Prefix: exprPrefix,
		Base:   exprBase,
		Suffix: exprSuffix,
		Infix:  exprInfix,
		FromBase: func(c *cursor.Cursor, b ast.Expr) ast.ExprID {
			return arena.New(c.Arena(), b)
		},
		ApplyPrefix: func(c *cursor.Cursor, p unaryOp, operand ast.ExprID) ast.ExprID {
			return arena.New[ast.Expr](c.Arena(), &ast.Unary{Op: p.UnaryOp, Operand: operand})
		},
		ApplySuffix: func(c *cursor.Cursor, operand ast.ExprID, s ast.Postfix) ast.ExprID {
			return arena.New(c.Arena(), s.WithOperand(operand))
		},
		Join: func(c *cursor.Cursor, lhs ast.ExprID, op binOp, rhs ast.ExprID) ast.ExprID {
			return arena.New[ast.Expr](c.Arena(), &ast.Binary{Lhs: lhs, Op: op.BinOp, Rhs: rhs})
		},
		Class:       func(op binOp) (recursive.Assoc, recursive.Level) { return op.assoc, op.level },
		SuffixGuard: trailingBlockGuard,
		// `-x?` is `-(x?)`, `-x as T` is `(-x) as T`
		SuffixBindsTighter: func(s ast.Postfix) bool {
			_, cast := s.(*ast.Cast)
			return !cast
		},
		PrefixLevel: func(p unaryOp) (recursive.Level, bool) {
			return rangeLevel, p.ranged
		},
		SuffixLevel: func(s ast.Postfix) (recursive.Level, bool) {
			_, open := s.(*ast.RangeFrom)
			return rangeLevel, open
		},
	}
	exprParser = cursor.Named("an expression", exprFamily.Parser())
}

// expr parses one full expression.
func expr(c *cursor.Cursor) (ast.ExprID, error) {
	return cursor.Parse(c, exprParser)
}

// condExpr parses an `if` / `while` condition.
func condExpr(c *cursor.Cursor) (ast.ExprID, error) {
	return cursor.WithTags(c, condTags, expr)
}

// scrutinee parses a `match` scrutinee or a `for` iterator.
func scrutinee(c *cursor.Cursor) (ast.ExprID, error) {
	return cursor.WithTags(c, scrutineeTags, expr)
}

// byteAfterSpace returns the first byte at or after pos that is not
// whitespace or a comment.
func byteAfterSpace(c *cursor.Cursor, pos source.Pos) byte {
	ps, err := cursor.PeekAt(c, pos, func(c *cursor.Cursor) (byte, error) {
		if _, err := whitespace(c); err != nil {
			return 0, err
		}
		return c.Byte(), nil
	})
	if err != nil {
		return 0
	}
	return ps.Value()
}

// trailingBlockGuard keeps `x..` open when a block follows: `for i in 0.. {}`.
func trailingBlockGuard(c *cursor.Cursor, infixEnd source.Pos) bool {
	return c.HasTag(NoTrailingBlock) && byteAfterSpace(c, infixEnd) == '{'
}

// fail skips whitespace and reports what was expected there.
func fail(c *cursor.Cursor, what ...string) error {
	if _, err := whitespace(c); err != nil {
		return err
	}
	return c.Expected(what...)
}

func exprPrefix(c *cursor.Cursor) (unaryOp, error) {
	noBlock := c.HasTag(NoTrailingBlock)
	var op unaryOp
	var err error
	switch peekByte(c) {
	case '&':
		if op.Op, err = cursor.OneOf(c, punct("&&"), punct("&")); err != nil {
			return op, err
		}
		raw, err := opt(c, func(c *cursor.Cursor) ([2]ast.Token, error) {
			raw, err := keyword("raw")(c)
			if err != nil {
				return [2]ast.Token{}, err
			}
			q, err := cursor.OneOf(c, keyword("const"), keyword("mut"))
			return [2]ast.Token{raw, q}, err
		})
		if err != nil {
			return op, err
		}
		if raw != nil {
			op.Raw, op.Mut = &raw[0], &raw[1]
			return op, nil
		}
		op.Mut, err = opt(c, keyword("mut"))
		return op, err
	case '-':
		op.Op, err = punct("-")(c)
	case '!':
		op.Op, err = punct("!")(c)
	case '*':
		op.Op, err = punct("*")(c)
	case '.':
		if op.Op, err = cursor.OneOf(c, punct("..="), punct("..")); err != nil {
			return op, err
		}
		op.ranged = true
		if noBlock && byteAfterSpace(c, c.Pos()) == '{' {
			return op, fail(c, "an expression")
		}
	default:
		return op, fail(c, "a unary operator")
	}
	return op, err
}

var infixOps = []struct {
	text  string
	assoc recursive.Assoc
	level recursive.Level
}{
	{"<<=", recursive.Right, 1},
	{">>=", recursive.Right, 1},
	{"...", recursive.Left, rangeLevel},
	{"..=", recursive.Left, rangeLevel},
	{"&&", recursive.Left, 4},
	{"||", recursive.Left, 3},
	{"==", recursive.Left, 5},
	{"!=", recursive.Left, 5},
	{"<=", recursive.Left, 5},
	{">=", recursive.Left, 5},
	{"+=", recursive.Right, 1},
	{"-=", recursive.Right, 1},
	{"*=", recursive.Right, 1},
	{"/=", recursive.Right, 1},
	{"%=", recursive.Right, 1},
	{"^=", recursive.Right, 1},
	{"&=", recursive.Right, 1},
	{"|=", recursive.Right, 1},
	{"<<", recursive.Left, 9},
	{">>", recursive.Left, 9},
	{"..", recursive.Left, rangeLevel},
	{"=", recursive.Right, 1},
	{"<", recursive.Left, 5},
	{">", recursive.Left, 5},
	{"+", recursive.Left, 10},
	{"-", recursive.Left, 10},
	{"*", recursive.Left, 11},
	{"/", recursive.Left, 11},
	{"%", recursive.Left, 11},
	{"^", recursive.Left, 7},
	{"&", recursive.Left, 8},
	{"|", recursive.Left, 6},
}

func exprInfix(c *cursor.Cursor) (binOp, error) {
	noLazy := c.HasTag(NoLazyBoolean)
	if _, err := whitespace(c); err != nil {
		return binOp{}, err
	}
	for _, op := range infixOps {
		if !c.HasPrefix(op.text) || longerOp(c, op.text) {
			continue
		}
		if noLazy && (op.text == "&&" || op.text == "||") {
			break
		}
		tok, err := punct(op.text)(c)
		if err != nil {
			return binOp{}, err
		}
		return binOp{BinOp: ast.BinOp{Op: tok}, assoc: op.assoc, level: op.level}, nil
	}
	return binOp{}, c.Expected("a binary operator")
}

func exprSuffix(c *cursor.Cursor) (ast.Postfix, error) {
	switch peekByte(c) {
	case '?':
		q, err := punct("?")(c)
		return &ast.Try{Q: q}, err
	case '.':
		if peekPrefix(c, "..") {
			op, err := punct("..")(c)
			return &ast.RangeFrom{Op: op}, err
		}
		return dotSuffix(c)
	case '(':
		args, err := delimited(c, "(", expr, ")")
		return &ast.Call{Args: args}, err
	case '[':
		open, err := punct("[")(c)
		if err != nil {
			return nil, err
		}
		idx, err := must(c, expr)
		if err != nil {
			return nil, err
		}
		closing, err := closeDelim(c, open, "]")
		return &ast.IndexExpr{Open: open, Index: idx, Close: closing}, err
	}
	if peekWord(c) == "as" {
		as, err := keyword("as")(c)
		if err != nil {
			return nil, err
		}
		t, err := must(c, typ)
		return &ast.Cast{As: as, Type: t}, err
	}
	return nil, fail(c, "a postfix operator")
}

// dotSuffix parses `.await`, `.0`, `.field` and `.method::<T>(args)`.
func dotSuffix(c *cursor.Cursor) (ast.Postfix, error) {
	dot, err := punct(".")(c)
	if err != nil {
		return nil, err
	}
	if peekWord(c) == "await" {
		kw, err := keyword("await")(c)
		return &ast.Await{Dot: dot, Kw: kw}, err
	}
	if b := peekByte(c); b >= '0' && b <= '9' {
		idx, err := tupleIndex(c)
		return &ast.Field{Dot: dot, Name: idx}, err
	}
	name, err := must(c, ident)
	if err != nil {
		return nil, err
	}
	tf, err := opt(c, turbofish)
	if err != nil {
		return nil, err
	}
	if tf == nil && !peekPrefix(c, "(") {
		return &ast.Field{Dot: dot, Name: name}, nil
	}
	args, err := must(c, func(c *cursor.Cursor) (ast.Delimited[ast.ExprID], error) {
		return delimited(c, "(", expr, ")")
	})
	return &ast.MethodCall{Dot: dot, Name: name, Turbofish: tf, Args: args}, err
}
