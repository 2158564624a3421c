package source

import "testing"

func TestSliceText(t *testing.T) {
	f := &File{Content: []byte("a  +  b")}
	var repl Replacements

	orig := Slice{Span: Span{Start: 1, End: 3}}
	if orig.Synthesized() {
		t.Fatal("plain slice must not be synthesized")
	}
	if got := orig.Text(f, &repl); got != "  " {
		t.Fatalf("got %q", got)
	}

	synth := Slice{Span: orig.Span, Repl: repl.Add(" ")}
	if !synth.Synthesized() {
		t.Fatal("expected synthesized slice")
	}
	if got := synth.Text(f, &repl); got != " " {
		t.Fatalf("got %q", got)
	}
}

func TestReplacementsTruncate(t *testing.T) {
	var r Replacements
	r.Add("x")
	mark := r.Len()
	r.Add("y")
	r.Add("z")
	r.Truncate(mark)
	if r.Len() != 1 {
		t.Fatalf("expected 1 fragment, got %d", r.Len())
	}
	if r.Get(1) != "x" {
		t.Fatalf("unexpected fragment %q", r.Get(1))
	}
	id := r.Add("w")
	if id != 2 || r.Get(id) != "w" {
		t.Fatalf("ids must be reused after truncate, got %d", id)
	}
}
