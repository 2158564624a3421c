package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"rustidy/internal/driver"
)

// formatting replaces the whole document with its formatted text. A
// document that does not parse gets no edits; the parse errors are already
// published.
func (s *Server) formatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		s.log.Warningf("formatting for a document that is not open: %s", params.TextDocument.URI)
		return nil, nil
	}
	return s.formatEdits(doc), nil
}

func (s *Server) formatEdits(doc document) []protocol.TextEdit {
	cfg := s.configFor(doc)
	res, err := driver.FormatSource(s.baseCtx, documentName(doc), []byte(doc.text), cfg, s.maxDiagnostics)
	if err != nil {
		s.log.Infof("not formatting %s: %v", doc.uri, err)
		return nil
	}
	if !res.Changed {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{
		Range:   wholeRange(doc.text),
		NewText: string(res.Output),
	}}
}
