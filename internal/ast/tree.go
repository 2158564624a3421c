package ast

// TokenTree is a delimited run of tokens kept verbatim: macro bodies and
// attribute contents.
type TokenTree struct {
	Delim byte // '(' '[' '{'
	Open  Token
	Items []TreeItem
	Close Token
}

// TreeItem is either a single token or a nested tree.
type TreeItem struct {
	Tok  Token
	Tree *TokenTree
}

// Attr is `#[...]` or, with Bang set, the inner form `#![...]`.
type Attr struct {
	Pound Token
	Bang  *Token
	Tree  TokenTree
}

// MacroCall is `path! tree`; Name is set for `macro_rules! name { ... }`.
type MacroCall struct {
	Path Path
	Bang Token
	Name *Token
	Tree TokenTree
}

// Visibility is `pub` with an optional restriction `(crate)`, `(in path)`.
type Visibility struct {
	Pub   Token
	Open  *Token
	In    *Token
	Path  *Path
	Close *Token
}

// Label is `'name:` before a loop or block.
type Label struct {
	Name  Token
	Colon Token
}

// Punctuated is a comma separated list. len(Seps) is len(Items) or one less.
type Punctuated[T any] struct {
	Items []T
	Seps  []Token
}

// TrailingSep reports whether the list ends with a separator.
func (p Punctuated[T]) TrailingSep() bool {
	return len(p.Items) > 0 && len(p.Seps) == len(p.Items)
}

// Delimited is an opening token, a punctuated list and a closing token.
type Delimited[T any] struct {
	Open  Token
	List  Punctuated[T]
	Close Token
}
