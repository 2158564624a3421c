package ast

// Type is a type expression.
type Type interface {
	typeNode()
}

type (
	PathType struct {
		Path Path
	}
	RefType struct {
		Amp      Token // `&` or `&&`
		Lifetime *Token
		Mut      *Token
		Elem     TypeID
	}
	PtrType struct {
		Star Token
		Qual Token // const | mut
		Elem TypeID
	}
	TupleType struct {
		Elems Delimited[TypeID]
	}
	ParenType struct {
		Open  Token
		Inner TypeID
		Close Token
	}
	SliceType struct {
		Open  Token
		Elem  TypeID
		Close Token
	}
	ArrayType struct {
		Open  Token
		Elem  TypeID
		Semi  Token
		Len   ExprID
		Close Token
	}
	NeverType struct {
		Bang Token
	}
	InferType struct {
		Tok Token
	}
	// BoundsType is `impl A + B`, `dyn A + B` or a bare `A + B` trait object.
	BoundsType struct {
		Kw     *Token
		Bounds Bounds
	}
	FnPtrType struct {
		For    *ForLifetimes
		Quals  []Token // unsafe, extern, "C"
		Fn     Token
		Params Delimited[FnPtrParam]
		Ret    *RetType
	}
	MacroType struct {
		Mac MacroCall
	}
)

// FnPtrParam is `name: T`, `T` or `...`.
type FnPtrParam struct {
	Attrs []Attr
	Name  *Token
	Colon *Token
	Type  TypeID
	Dots  *Token
}

func (*PathType) typeNode()   {}
func (*RefType) typeNode()    {}
func (*PtrType) typeNode()    {}
func (*TupleType) typeNode()  {}
func (*ParenType) typeNode()  {}
func (*SliceType) typeNode()  {}
func (*ArrayType) typeNode()  {}
func (*NeverType) typeNode()  {}
func (*InferType) typeNode()  {}
func (*BoundsType) typeNode() {}
func (*FnPtrType) typeNode()  {}
func (*MacroType) typeNode()  {}
