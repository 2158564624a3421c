// Package trace records span events for rustidy runs.
//
// Tracing is off by default. The CLI turns it on with
//
//	rustidy fmt --trace=- --trace-level=detail src/
//
// Levels filter by scope: phase keeps driver and pass spans, detail adds a
// span per file, debug adds per-item spans. Level error routes everything
// into an in-memory ring that is dumped only when the run fails.
//
// Tracers travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, sp := trace.Start(ctx, trace.ScopeFile, "parse")
//	defer sp.End("")
package trace
