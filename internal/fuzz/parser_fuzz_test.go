package fuzztests

import (
	"context"
	"testing"
	"time"

	"rustidy/internal/diag"
	"rustidy/internal/parser"
	"rustidy/internal/source"
	"rustidy/internal/testkit"
)

// parseTimeout bounds a single parse; longer means a backtracking blowup.
const parseTimeout = 5 * time.Second

func parseInput(ctx context.Context, input []byte) (parser.Result, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("fuzz.rs", input))
	bag := diag.NewBag(16)
	return parser.ParseFile(ctx, file, parser.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

// FuzzParseRoundTrip checks that every tree the parser accepts prints back to
// its input and satisfies the structural invariants.
func FuzzParseRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		res, bag := parseInput(context.Background(), clampInput(input))
		if res.Err != nil {
			if !bag.HasErrors() {
				t.Fatalf("parse failed without a diagnostic: %v", res.Err)
			}
			return
		}
		if err := testkit.CheckRoundTrip(res.File); err != nil {
			t.Fatal(err)
		}
		if err := testkit.CheckTreeInvariants(res.File); err != nil {
			t.Fatal(err)
		}
	})
}

// FuzzParserNoHang runs the parser under a deadline to catch inputs that make
// error handling loop forever.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("fn f() { ((((((((((((((((((((a)))))))))))))))))))) }"))
	f.Add([]byte("fn f() { a < b < c < d < e < f < g }"))
	f.Add([]byte("fn f() { x = S { a: S { a: S { a: S { } } } } }"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = parseInput(ctx, input)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(data []byte, limit int) []byte {
	if len(data) <= limit {
		return data
	}
	return data[:limit]
}
