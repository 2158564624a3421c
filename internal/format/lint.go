package format

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"rustidy/internal/ast"
	"rustidy/internal/diag"
)

type nfcLint struct {
	ast.NopVisitor
	src   ast.Source
	r     diag.Reporter
	count int
}

func (v *nfcLint) Token(t *ast.Token, _ ast.Spacing) {
	if t.Kind != ast.TokIdent && t.Kind != ast.TokLifetime {
		return
	}
	text := v.src.Text(t.Text)
	name := strings.TrimPrefix(strings.TrimPrefix(text, "'"), "r#")
	if norm.NFC.IsNormalString(name) {
		return
	}
	v.count++
	fixed := norm.NFC.String(text)
	diag.ReportWarning(v.r, diag.FmtIdentNotNFC, t.Span(), "identifier `"+text+"` is not in Unicode normal form C").
		WithFix("normalize to NFC", diag.FixEdit{Span: t.Span(), NewText: fixed}).
		Emit()
}

// LintIdents warns about identifiers and lifetimes that are not NFC
// normalized. The formatter never rewrites them itself. Returns the number
// of warnings.
func LintIdents(f *ast.File, r diag.Reporter) int {
	v := &nfcLint{src: f.Src, r: r}
	ast.Walk(v, f)
	return v.count
}
