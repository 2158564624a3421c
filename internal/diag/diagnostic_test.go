package diag

import (
	"testing"

	"rustidy/internal/source"
)

func TestFixCovering(t *testing.T) {
	at := func(file source.FileID, start, end source.Pos) FixEdit {
		return FixEdit{Span: source.Span{File: file, Start: start, End: end}}
	}
	tests := []struct {
		name  string
		edits []FixEdit
		want  source.Span
		ok    bool
	}{
		{name: "no edits"},
		{name: "single", edits: []FixEdit{at(1, 3, 7)}, want: source.Span{File: 1, Start: 3, End: 7}, ok: true},
		{name: "spread", edits: []FixEdit{at(1, 9, 9), at(1, 2, 4)}, want: source.Span{File: 1, Start: 2, End: 9}, ok: true},
		{name: "two files", edits: []FixEdit{at(1, 0, 1), at(2, 0, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Fix{Title: tt.name, Edits: tt.edits}.Covering()
			if ok != tt.ok || got != tt.want {
				t.Fatalf("Covering() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBagHasFixes(t *testing.T) {
	bag := NewBag(0)
	bag.Add(Diagnostic{Severity: SevWarning, Code: FmtIdentNotNFC, Fixes: []Fix{{Title: "empty"}}})
	if bag.HasFixes() {
		t.Fatal("a fix without edits is not applicable")
	}
	bag.Add(Diagnostic{
		Severity: SevWarning,
		Code:     FmtIdentNotNFC,
		Fixes:    []Fix{{Title: "normalize", Edits: []FixEdit{{NewText: "x"}}}},
	})
	if !bag.HasFixes() {
		t.Fatal("expected an applicable fix")
	}
}
