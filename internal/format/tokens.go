package format

import (
	"fmt"

	"rustidy/internal/ast"
	"rustidy/internal/source"
)

// TokenInfo is one entry of a file's token sequence. Comments are part of
// the sequence so that losing one is caught as well.
type TokenInfo struct {
	Kind    ast.TokenKind
	Comment bool
	Text    string
	Span    source.Span
}

func (t TokenInfo) String() string {
	if t.Comment {
		return fmt.Sprintf("comment %q", t.Text)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

type tokenCollector struct {
	ast.NopVisitor
	src ast.Source
	out []TokenInfo
}

func (c *tokenCollector) Token(t *ast.Token, _ ast.Spacing) {
	c.comments(t.WS)
	c.out = append(c.out, TokenInfo{Kind: t.Kind, Text: c.src.Text(t.Text), Span: t.Span()})
}

func (c *tokenCollector) EOF(ws *ast.Whitespace) { c.comments(*ws) }

func (c *tokenCollector) comments(ws ast.Whitespace) {
	for _, cm := range splitGap(c.src.Text(ws.Slice)).comments {
		c.out = append(c.out, TokenInfo{Kind: ast.TokEOF, Comment: true, Text: cm.text, Span: ws.Slice.Span})
	}
}

// Tokens lists the tokens and comments of f in source order.
func Tokens(f *ast.File) []TokenInfo {
	c := &tokenCollector{src: f.Src}
	ast.Walk(c, f)
	return c.out
}

// MismatchError reports the first difference between two token sequences.
type MismatchError struct {
	Index  int
	Before *TokenInfo
	After  *TokenInfo
}

func (e *MismatchError) Error() string {
	switch {
	case e.Before == nil:
		return fmt.Sprintf("token %d: unexpected %s after formatting", e.Index, e.After)
	case e.After == nil:
		return fmt.Sprintf("token %d: %s lost by formatting", e.Index, e.Before)
	default:
		return fmt.Sprintf("token %d: %s became %s", e.Index, e.Before, e.After)
	}
}

// CheckTokens verifies that before and after carry the same tokens and
// comments. Only whitespace may differ.
func CheckTokens(before, after *ast.File) error {
	return compareTokens(Tokens(before), Tokens(after))
}

func compareTokens(a, b []TokenInfo) error {
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y *TokenInfo
		if i < len(a) {
			x = &a[i]
		}
		if i < len(b) {
			y = &b[i]
		}
		if x == nil || y == nil || x.Kind != y.Kind || x.Comment != y.Comment || x.Text != y.Text {
			return &MismatchError{Index: i, Before: x, After: y}
		}
	}
	return nil
}
