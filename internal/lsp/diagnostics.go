package lsp

import (
	"fortio.org/safecast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"rustidy/internal/diag"
	"rustidy/internal/driver"
	"rustidy/internal/source"
)

// publish parses doc and sends its diagnostics. An empty list clears what
// was published before.
func (s *Server) publish(ctx *glsp.Context, doc document) {
	s.mu.Lock()
	stopped := s.shutdown
	s.mu.Unlock()
	if stopped {
		return
	}
	notify(ctx, protocol.ServerTextDocumentPublishDiagnostics, s.diagnosticsFor(doc))
}

func (s *Server) diagnosticsFor(doc document) protocol.PublishDiagnosticsParams {
	cfg := s.configFor(doc)
	res := driver.ParseSource(s.baseCtx, documentName(doc), []byte(doc.text), cfg.MaxDepth, s.maxDiagnostics)
	res.Bag.Sort()

	params := protocol.PublishDiagnosticsParams{
		URI:         doc.uri,
		Diagnostics: make([]protocol.Diagnostic, 0, res.Bag.Len()),
	}
	if v, err := safecast.Conv[uint32](doc.version); err == nil {
		params.Version = &v
	}
	for _, d := range res.Bag.Items() {
		params.Diagnostics = append(params.Diagnostics, toProtocolDiagnostic(doc.uri, res.Files, d))
	}
	if res.Err != nil && res.Bag.Len() == 0 {
		// ошибка без отчёта: вешаем её на начало файла
		s.log.Errorf("parse %s: %v", doc.uri, res.Err)
		severity := protocol.DiagnosticSeverityError
		src := serverName
		params.Diagnostics = append(params.Diagnostics, protocol.Diagnostic{
			Severity: &severity,
			Source:   &src,
			Message:  res.Err.Error(),
		})
	}
	return params
}

func toProtocolDiagnostic(uri string, fs *source.FileSet, d diag.Diagnostic) protocol.Diagnostic {
	file := fs.Get(d.Primary.File)
	severity := toProtocolSeverity(d.Severity)
	src := serverName
	out := protocol.Diagnostic{
		Range:    rangeForSpan(file, d.Primary),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   &src,
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: rangeForSpan(fs.Get(n.Span.File), n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}

func toProtocolSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// documentName names the virtual file: its path when it has one.
func documentName(doc document) string {
	if doc.path != "" {
		return doc.path
	}
	return doc.uri
}
