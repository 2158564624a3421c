package parser

import (
	"rustidy/internal/arena"
	"rustidy/internal/ast"
	"rustidy/internal/cursor"
	"rustidy/internal/recursive"
)

// patOp carries the operator's class along with the tree node.
type patOp struct {
	ast.PatOp
	assoc recursive.Assoc
	level recursive.Level
}

var (
	patFamily *recursive.Family[ast.PatID, ast.PatPrefix, ast.Pat, ast.Token, patOp]
	patParser cursor.Parser[ast.PatID]
)

func init() {
	patFamily = &recursive.Family[ast.PatID, ast.PatPrefix, ast.Pat, ast.Token, patOp]{
		Name:   "pattern",
		Prefix: patPrefix,
		Base:   patBase,
		Suffix: patSuffix,
		Infix:  patInfix,
		FromBase: func(c *cursor.Cursor, b ast.Pat) ast.PatID {
			return arena.New(c.Arena(), b)
		},
		ApplyPrefix: func(c *cursor.Cursor, p ast.PatPrefix, operand ast.PatID) ast.PatID {
			if c.Text(p.Op.Span())[0] == '&' {
				return arena.New[ast.Pat](c.Arena(), &ast.RefPat{Amp: p.Op, Mut: p.Mut, Inner: operand})
			}
			return arena.New[ast.Pat](c.Arena(), &ast.RangeToPat{Op: p.Op, End: operand})
		},
		ApplySuffix: func(c *cursor.Cursor, operand ast.PatID, s ast.Token) ast.PatID {
			return arena.New[ast.Pat](c.Arena(), &ast.RangeFromPat{Start: operand, Op: s})
		},
		Join: func(c *cursor.Cursor, lhs ast.PatID, op patOp, rhs ast.PatID) ast.PatID {
			return arena.New[ast.Pat](c.Arena(), &ast.BinPat{Lhs: lhs, Op: op.PatOp, Rhs: rhs})
		},
		Class: func(op patOp) (recursive.Assoc, recursive.Level) { return op.assoc, op.level },
	}
	patParser = cursor.Named("a pattern", patFamily.Parser())
}

// pattern parses a full pattern, or-patterns included unless NoOrPattern is
// in force at the current position.
func pattern(c *cursor.Cursor) (ast.PatID, error) {
	return cursor.Parse(c, patParser)
}

// closureParamPattern stops before `|`.
func closureParamPattern(c *cursor.Cursor) (ast.PatID, error) {
	return cursor.WithTag(c, NoOrPattern, pattern)
}

func patPrefix(c *cursor.Cursor) (ast.PatPrefix, error) {
	if peekPrefix(c, "..=") {
		op, err := punct("..=")(c)
		return ast.PatPrefix{Op: op}, err
	}
	op, err := cursor.OneOf(c, punct("&&"), punct("&"))
	if err != nil {
		return ast.PatPrefix{}, err
	}
	mut, err := opt(c, keyword("mut"))
	return ast.PatPrefix{Op: op, Mut: mut}, err
}

func patSuffix(c *cursor.Cursor) (ast.Token, error) {
	return punct("..")(c)
}

var patInfixOps = []struct {
	text  string
	assoc recursive.Assoc
	level recursive.Level
}{
	{"..=", recursive.Left, 3},
	{"...", recursive.Left, 3},
	{"..", recursive.Left, 3},
	{"@", recursive.Right, 2},
	{"|", recursive.Fully, 1},
}

func patInfix(c *cursor.Cursor) (patOp, error) {
	noOr := c.HasTag(NoOrPattern)
	if _, err := whitespace(c); err != nil {
		return patOp{}, err
	}
	for _, op := range patInfixOps {
		if op.text == "|" && noOr {
			continue
		}
		if !peekPrefix(c, op.text) {
			continue
		}
		tok, err := punct(op.text)(c)
		if err != nil {
			continue
		}
		return patOp{PatOp: ast.PatOp{Op: tok}, assoc: op.assoc, level: op.level}, nil
	}
	return patOp{}, c.Expected("a pattern operator")
}

func patBase(c *cursor.Cursor) (ast.Pat, error) {
	switch b := peekByte(c); {
	case b == '(':
		d, err := delimited(c, "(", pattern, ")")
		if err != nil {
			return nil, err
		}
		if len(d.List.Items) == 1 && !d.List.TrailingSep() {
			return &ast.ParenPat{Open: d.Open, Inner: d.List.Items[0], Close: d.Close}, nil
		}
		return &ast.TuplePat{Elems: d}, nil
	case b == '[':
		d, err := delimited(c, "[", pattern, "]")
		return &ast.SlicePat{Elems: d}, err
	case b == '-':
		minus, err := punct("-")(c)
		if err != nil {
			return nil, err
		}
		lit, err := literal(c)
		return &ast.LitPat{Minus: &minus, Lit: lit}, err
	case b == '.':
		tok, err := punct("..")(c)
		return &ast.RestPat{Tok: tok}, err
	case b >= '0' && b <= '9', b == '\'', b == '"':
		lit, err := literal(c)
		return &ast.LitPat{Lit: lit}, err
	case b == 'b', b == 'c', b == 'r':
		if lit, err := opt(c, literal); err != nil || lit != nil {
			if err != nil {
				return nil, err
			}
			return &ast.LitPat{Lit: *lit}, nil
		}
	}
	switch peekWord(c) {
	case "_":
		tok, err := keyword("_")(c)
		return &ast.WildPat{Tok: tok}, err
	case "true", "false":
		lit, err := literal(c)
		return &ast.LitPat{Lit: lit}, err
	case "ref", "mut":
		return identPat(c)
	}
	p, err := path(c, modeExpr)
	if err != nil {
		return nil, err
	}
	switch {
	case peekPrefix(c, "!") && !peekPrefix(c, "!="):
		m, err := must(c, func(c *cursor.Cursor) (ast.MacroCall, error) { return macroTail(c, p) })
		return &ast.MacroPat{Mac: m}, err
	case peekPrefix(c, "("):
		d, err := delimited(c, "(", pattern, ")")
		return &ast.TupleStructPat{Path: p, Elems: d}, err
	case peekPrefix(c, "{"):
		return structPat(c, p)
	}
	if p.QSelf == nil && p.Leading == nil && len(p.Segments) == 1 && p.Segments[0].Generics == nil &&
		p.Segments[0].Name.Kind == ast.TokIdent {
		return &ast.IdentPat{Name: p.Segments[0].Name}, nil
	}
	return &ast.PathPat{Path: p}, nil
}

func identPat(c *cursor.Cursor) (ast.Pat, error) {
	var p ast.IdentPat
	var err error
	if p.Ref, err = opt(c, keyword("ref")); err != nil {
		return nil, err
	}
	if p.Mut, err = opt(c, keyword("mut")); err != nil {
		return nil, err
	}
	p.Name, err = must(c, ident)
	return &p, err
}

func structPat(c *cursor.Cursor, p ast.Path) (ast.Pat, error) {
	sp := &ast.StructPat{Path: p}
	var err error
	if sp.Open, err = punct("{")(c); err != nil {
		return nil, err
	}
	for {
		if peekPrefix(c, "}") {
			break
		}
		if peekPrefix(c, "..") {
			if sp.Dots, err = opt(c, punct("..")); err != nil {
				return nil, err
			}
			break
		}
		f, err := must(c, fieldPat)
		if err != nil {
			return nil, err
		}
		sp.Fields.Items = append(sp.Fields.Items, f)
		comma, err := opt(c, punct(","))
		if err != nil {
			return nil, err
		}
		if comma == nil {
			break
		}
		sp.Fields.Seps = append(sp.Fields.Seps, *comma)
	}
	sp.Close, err = closeDelim(c, sp.Open, "}")
	return sp, err
}

func fieldPat(c *cursor.Cursor) (ast.FieldPat, error) {
	var f ast.FieldPat
	var err error
	if f.Attrs, err = outerAttrs(c); err != nil {
		return f, err
	}
	if f.Ref, err = opt(c, keyword("ref")); err != nil {
		return f, err
	}
	if f.Mut, err = opt(c, keyword("mut")); err != nil {
		return f, err
	}
	if f.Ref != nil || f.Mut != nil {
		f.Name, err = ident(c)
		return f, err
	}
	if f.Name, err = cursor.OneOf(c, ident, tupleIndex); err != nil {
		return f, err
	}
	if f.Colon, err = opt(c, punct(":")); err != nil || f.Colon == nil {
		return f, err
	}
	f.Pat, err = must(c, pattern)
	return f, err
}
