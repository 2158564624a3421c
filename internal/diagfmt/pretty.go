package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rustidy/internal/diag"
	"rustidy/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	note, gutter    *color.Color
	bold            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		gutter: color.New(color.FgBlue),
		bold:   color.New(color.Bold),
	}
	// цвет решает вызывающий, а не глобальный color.NoColor
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... and %d more diagnostics (raise --max-diagnostics to see them)\n", n)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	sev := p.severity(d.Severity)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		displayPath(fs, file, opts.PathMode), start.Line, start.Col,
		sev.Sprint(d.Severity.String()), sev.Sprint(d.Code.ID()), p.bold.Sprint(d.Message))
	snippet(w, fs, file, d.Primary, opts.Context, sev, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				displayPath(fs, nf, opts.PathMode), pos.Line, pos.Col, n.Msg)
			snippet(w, fs, nf, n.Span, 0, p.note, p)
		}
	}
	if opts.ShowFixes {
		for i, f := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprintf("fix #%d:", i+1), f.Title)
			for _, e := range f.Edits {
				ef := fs.Get(e.Span.File)
				pos, _ := fs.Resolve(e.Span)
				fmt.Fprintf(w, "    edit %s:%d:%d apply=%q\n", displayPath(fs, ef, opts.PathMode), pos.Line, pos.Col, e.NewText)
			}
			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixPreview(fs, d.Code, f)
			if err != nil {
				fmt.Fprintf(w, "    no preview: %v\n", err)
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, l := range preview.before {
				fmt.Fprintf(w, "      - %s\n", l)
			}
			for _, l := range preview.after {
				fmt.Fprintf(w, "      + %s\n", l)
			}
		}
	}
}

// snippet prints up to context lines before the span's line, the line
// itself and a caret marker under the span. Spans running past the end of
// the line are underlined to the end of it.
func snippet(w io.Writer, fs *source.FileSet, file *source.File, span source.Span, context int, marker *color.Color, p palette) {
	start, end := fs.Resolve(span)
	line := file.GetLine(start.Line)
	if line == "" && start.Line > 1 && int(span.Start) >= len(file.Content) {
		// конец файла после завершающего перевода строки
		return
	}
	gw := len(strconv.FormatUint(uint64(start.Line), 10))
	first := start.Line
	for first > 1 && start.Line-first < uint32(max(context, 0)) {
		first--
	}
	for n := first; n < start.Line; n++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gw, n), file.GetLine(n))
	}
	fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gw, start.Line), line)

	from := min(int(start.Col-1), len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col-1), len(line))
	}
	width := max(runewidth.StringWidth(line[from:to]), 1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gw, ""), caretPad(line[:from]),
		marker.Sprint("^"+strings.Repeat("~", width-1)))
}

// caretPad keeps tabs so the marker lines up with the printed line.
func caretPad(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
