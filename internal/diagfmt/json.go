package diagfmt

import (
	"encoding/json"
	"io"

	"rustidy/internal/diag"
	"rustidy/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON.
// BeforeLines/AfterLines заполняются при JSONOpts.IncludePreviews.
type FixJSON struct {
	Title       string        `json:"title"`
	Edits       []FixEditJSON `json:"edits,omitempty"`
	BeforeLines []string      `json:"before_lines,omitempty"`
	AfterLines  []string      `json:"after_lines,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)

	path := displayPath(fs, f, pathMode)

	loc := LocationJSON{
		File:      path,
		StartByte: uint32(span.Start),
		EndByte:   uint32(span.End),
	}

	// Добавляем позиции строк/колонок если требуется
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	diagnostics := make([]DiagnosticJSON, 0, bag.Len())

	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	for i := range maxItems {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}

		if opts.IncludeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			diagJSON.Fixes = make([]FixJSON, 0, len(d.Fixes))
			for _, f := range d.Fixes {
				fixJSON := FixJSON{Title: f.Title}
				for _, edit := range f.Edits {
					fixJSON.Edits = append(fixJSON.Edits, FixEditJSON{
						Location: makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions),
						NewText:  edit.NewText,
						OldText:  edit.Span.Text(fs.Get(edit.Span.File)),
					})
				}
				if opts.IncludePreviews {
					if preview, err := buildFixPreview(fs, d.Code, f); err == nil {
						fixJSON.BeforeLines, fixJSON.AfterLines = preview.before, preview.after
					}
				}
				diagJSON.Fixes = append(diagJSON.Fixes, fixJSON)
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	output := DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - maxItems,
	}

	return output, nil
}

// JSON форматирует диагностики в JSON формат.
// Выводит массив диагностик с полной информацией о местоположении, заметках и исправлениях.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
