package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"rustidy/internal/ast"
	"rustidy/internal/source"
)

// TreeNode is one node of a syntax tree dump: either a named node with
// children or a token leaf.
type TreeNode struct {
	Type     string      `json:"type"` // "node" | "token"
	Kind     string      `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Span     SpanJSON    `json:"span"`
	Children []*TreeNode `json:"children,omitempty"`
}

// SpanJSON is a resolved span.
type SpanJSON struct {
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
}

// treeBuilder собирает дерево по обходу ast.Walk.
type treeBuilder struct {
	ast.NopVisitor
	fs    *source.FileSet
	src   ast.Source
	stack []*TreeNode
	root  *TreeNode
}

func (b *treeBuilder) Enter(name string) {
	n := &TreeNode{Type: "node", Kind: name}
	if len(b.stack) == 0 {
		b.root = n
	} else {
		top := b.stack[len(b.stack)-1]
		top.Children = append(top.Children, n)
	}
	b.stack = append(b.stack, n)
}

func (b *treeBuilder) Leave() {
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	// span узла = от первого до последнего потомка
	if len(n.Children) > 0 {
		n.Span = n.Children[0].Span
		n.Span.End = n.Children[len(n.Children)-1].Span.End
	}
}

func (b *treeBuilder) Token(t *ast.Token, _ ast.Spacing) {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Children = append(top.Children, &TreeNode{
		Type: "token",
		Kind: t.Kind.String(),
		Text: b.src.Text(t.Text),
		Span: b.span(t.Text.Span),
	})
}

func (b *treeBuilder) span(sp source.Span) SpanJSON {
	start, _ := b.fs.Resolve(sp)
	return SpanJSON{Start: uint32(sp.Start), End: uint32(sp.End), StartLine: start.Line, StartCol: start.Col}
}

// BuildTree converts a parsed file into a TreeNode hierarchy.
func BuildTree(f *ast.File, fs *source.FileSet) *TreeNode {
	b := &treeBuilder{fs: fs, src: f.Src}
	ast.Walk(b, f)
	if b.root == nil {
		return &TreeNode{Type: "node", Kind: "File"}
	}
	return b.root
}

// FormatTreePretty prints the tree with box-drawing guides, one node per line:
//
//	File 1:1
//	└─ Fn 1:1
//	   ├─ Keyword "fn" 1:1
//	   ...
func FormatTreePretty(w io.Writer, f *ast.File, fs *source.FileSet) error {
	root := BuildTree(f, fs)
	header := displayPath(fs, f.Src.File, PathModeAuto)
	if _, err := fmt.Fprintf(w, "%s (%d items)\n", header, len(f.Items)); err != nil {
		return err
	}
	for i, child := range root.Children {
		if err := writeTreeNode(w, child, "", i == len(root.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

func writeTreeNode(w io.Writer, n *TreeNode, prefix string, last bool) error {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, treeLabel(n)); err != nil {
		return err
	}
	for i, child := range n.Children {
		if err := writeTreeNode(w, child, prefix+next, i == len(n.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

func treeLabel(n *TreeNode) string {
	pos := fmt.Sprintf("%d:%d", n.Span.StartLine, n.Span.StartCol)
	if n.Type == "token" {
		return fmt.Sprintf("%s %q %s", n.Kind, n.Text, pos)
	}
	return fmt.Sprintf("%s %s", n.Kind, pos)
}

// FormatTreeJSON writes the tree as indented JSON.
func FormatTreeJSON(w io.Writer, f *ast.File, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTree(f, fs))
}

// TreeKinds lists node kinds in pre-order; handy in tests and for quick greps.
func TreeKinds(n *TreeNode) string {
	var parts []string
	var walk func(*TreeNode)
	walk = func(n *TreeNode) {
		if n.Type == "node" {
			parts = append(parts, n.Kind)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
