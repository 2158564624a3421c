package diag

import "rustidy/internal/source"

// Reporter: минимальный контракт получения диагностик от парсера и
// форматтера. Реализация по умолчанию: BagReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix)
}

// ReportBuilder collects notes and fixes for one diagnostic. Nothing reaches
// the reporter until Emit.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func newReport(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary},
	}
}

// ReportError starts an error diagnostic.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return newReport(r, SevError, code, primary, msg)
}

// ReportWarning starts a warning, e.g. a lint with a fix.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return newReport(r, SevWarning, code, primary, msg)
}

// WithNote points at a secondary location, e.g. where a delimiter opened.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// WithFix appends a fix made of edits; see internal/fix for how they apply.
func (b *ReportBuilder) WithFix(title string, edits ...FixEdit) *ReportBuilder {
	b.diag.Fixes = append(b.diag.Fixes, Fix{Title: title, Edits: edits})
	return b
}

// Emit sends the diagnostic once; later calls do nothing. A nil reporter
// swallows it.
func (b *ReportBuilder) Emit() {
	if b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		d := b.diag
		b.reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
	}
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}
