package ast

// Item is a module-level (or block-level) declaration.
type Item interface {
	itemNode()
	Header() *ItemHead
}

// ItemHead is what every item may start with.
type ItemHead struct {
	Attrs []Attr
	Vis   *Visibility
}

func (h *ItemHead) Header() *ItemHead { return h }

type (
	Fn struct {
		ItemHead
		Quals    []Token // const async unsafe safe extern "abi" default
		Fn       Token
		Name     Token
		Generics *Generics
		Params   Delimited[Param]
		Ret      *RetType
		Where    *WhereClause
		Body     *Block
		Semi     *Token
	}
	// Struct covers `struct` and `union`.
	Struct struct {
		ItemHead
		Kw        Token
		Name      Token
		Generics  *Generics
		Where     *WhereClause
		Named     *NamedFields
		Tuple     *TupleFields
		TailWhere *WhereClause
		Semi      *Token
	}
	Enum struct {
		ItemHead
		Enum     Token
		Name     Token
		Generics *Generics
		Where    *WhereClause
		Open     Token
		Variants Punctuated[Variant]
		Close    Token
	}
	Use struct {
		ItemHead
		Use  Token
		Tree UseTree
		Semi Token
	}
	// Const covers `const` and `static`.
	Const struct {
		ItemHead
		Kw       Token
		Mut      *Token
		Name     Token
		Generics *Generics
		Colon    *Token
		Type     TypeID
		Eq       *Token
		Value    ExprID
		Semi     Token
	}
	TypeAlias struct {
		ItemHead
		Type     Token
		Name     Token
		Generics *Generics
		Colon    *Token
		Bounds   *Bounds
		Where    *WhereClause
		Eq       *Token
		Value    TypeID
		Semi     Token
	}
	Mod struct {
		ItemHead
		Unsafe *Token
		Mod    Token
		Name   Token
		Semi   *Token
		Body   *ItemBlock
	}
	Trait struct {
		ItemHead
		Quals    []Token // unsafe, auto
		Trait    Token
		Name     Token
		Generics *Generics
		Colon    *Token
		Bounds   *Bounds
		Where    *WhereClause
		Body     ItemBlock
	}
	Impl struct {
		ItemHead
		Quals    []Token // default, unsafe
		Impl     Token
		Generics *Generics
		Const    *Token
		Bang     *Token
		Trait    TypeID
		For      *Token
		Self     TypeID
		Where    *WhereClause
		Body     ItemBlock
	}
	ExternCrate struct {
		ItemHead
		Extern Token
		Crate  Token
		Name   Token
		As     *Token
		Rename *Token
		Semi   Token
	}
	ExternBlock struct {
		ItemHead
		Unsafe *Token
		Extern Token
		Abi    *Token
		Body   ItemBlock
	}
	MacroItem struct {
		ItemHead
		Mac  MacroCall
		Semi *Token
	}
)

// ItemBlock is `{ #![inner] items }`.
type ItemBlock struct {
	Open  Token
	Attrs []Attr
	Items []Item
	Close Token
}

// Param is a function parameter: a self parameter, `pat: Type` or `...`.
type Param struct {
	Attrs []Attr
	Self  *SelfParam
	Pat   PatID
	Colon *Token
	Type  TypeID
	Dots  *Token
}

// SelfParam is `self`, `mut self`, `&'a mut self` or `self: Type`.
type SelfParam struct {
	Amp      *Token
	Lifetime *Token
	Mut      *Token
	Self     Token
	Colon    *Token
	Type     TypeID
}

type NamedFields struct {
	Open   Token
	Fields Punctuated[FieldDef]
	Close  Token
}

type FieldDef struct {
	Attrs []Attr
	Vis   *Visibility
	Name  Token
	Colon Token
	Type  TypeID
}

type TupleFields struct {
	Open   Token
	Fields Punctuated[TupleField]
	Close  Token
}

type TupleField struct {
	Attrs []Attr
	Vis   *Visibility
	Type  TypeID
}

type Variant struct {
	Attrs []Attr
	Vis   *Visibility
	Name  Token
	Named *NamedFields
	Tuple *TupleFields
	Eq    *Token
	Disc  ExprID
}

// UseTree is `a::b::{c, d as e, *}`.
type UseTree struct {
	Leading  *Token
	Segments []Token
	Seps     []Token
	Star     *Token
	Group    *Delimited[UseTree]
	As       *Token
	Rename   *Token
}

func (*Fn) itemNode()          {}
func (*Struct) itemNode()      {}
func (*Enum) itemNode()        {}
func (*Use) itemNode()         {}
func (*Const) itemNode()       {}
func (*TypeAlias) itemNode()   {}
func (*Mod) itemNode()         {}
func (*Trait) itemNode()       {}
func (*Impl) itemNode()        {}
func (*ExternCrate) itemNode() {}
func (*ExternBlock) itemNode() {}
func (*MacroItem) itemNode()   {}
