package ast

// Path is `a::b::<T>::c`, optionally qualified `<T as Trait>::x`.
type Path struct {
	QSelf    *QSelf
	Leading  *Token // `::`
	Segments []PathSegment
	Seps     []Token
}

// QSelf is the `<Type as Trait>` prefix of a qualified path.
type QSelf struct {
	Open  Token
	Type  TypeID
	As    *Token
	Trait *Path
	Close Token
}

// PathSegment is one name with optional generic arguments or `Fn(A) -> B`
// sugar.
type PathSegment struct {
	Name     Token
	Generics *GenericArgs
	FnArgs   *FnSugar
}

// GenericArgs is `<...>`; Colons is the turbofish `::` in expressions.
type GenericArgs struct {
	Colons *Token
	Open   Token
	Args   Punctuated[GenericArg]
	Close  Token
}

// GenericArg is exactly one of a lifetime, a type, a const expression or an
// associated item binding `Name = Type` / `Name: Bounds`.
type GenericArg struct {
	Lifetime *Token
	Type     TypeID
	Const    ExprID
	Binding  *AssocBinding
}

type AssocBinding struct {
	Name     Token
	Generics *GenericArgs
	Eq       *Token
	Type     TypeID
	Colon    *Token
	Bounds   *Bounds
}

// FnSugar is the `(A, B) -> C` form of `Fn` trait paths.
type FnSugar struct {
	Params Delimited[TypeID]
	Ret    *RetType
}

// RetType is `-> Type`.
type RetType struct {
	Arrow Token
	Type  TypeID
}

// Bounds is `A + 'a + ?Sized`.
type Bounds struct {
	Items []Bound
	Plus  []Token
}

// Bound is a lifetime or a (possibly parenthesized, `?`-relaxed, `for<>`
// quantified) trait path.
type Bound struct {
	Lifetime *Token
	Open     *Token
	Tilde    *Token // `~const`
	Const    *Token
	Question *Token
	For      *ForLifetimes
	Path     Path
	Close    *Token
}

// ForLifetimes is `for<'a, 'b>`.
type ForLifetimes struct {
	For    Token
	Params Generics
}

// Generics is the `<T: Bound, 'a, const N: usize = 3>` parameter list.
type Generics struct {
	Open   Token
	Params Punctuated[GenericParam]
	Close  Token
}

type GenericParam struct {
	Attrs   []Attr
	Const   *Token
	Name    Token
	Colon   *Token
	Bounds  *Bounds
	Type    TypeID
	Eq      *Token
	Default TypeID
	// DefaultExpr is the default of a const parameter.
	DefaultExpr ExprID
}

// WhereClause is `where T: A, 'a: 'b`.
type WhereClause struct {
	Where Token
	Preds Punctuated[WherePred]
}

type WherePred struct {
	For      *ForLifetimes
	Lifetime *Token
	Type     TypeID
	Colon    Token
	Bounds   Bounds
}
