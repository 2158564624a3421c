package trace

import "context"

// carrier is what a context holds: the tracer and the innermost open span.
type carrier struct {
	tracer Tracer
	span   uint64
}

type carrierKey struct{}

func carried(ctx context.Context) carrier {
	if ctx != nil {
		if c, ok := ctx.Value(carrierKey{}).(carrier); ok {
			return c
		}
	}
	return carrier{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return carried(ctx).tracer
}

// WithTracer attaches t to ctx. Spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, carrierKey{}, carrier{tracer: t})
}

// Start begins a span under the span carried by ctx and returns a context
// that carries the new one. When the span emits nothing ctx is returned
// unchanged.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	c := carried(ctx)
	sp := Begin(c.tracer, scope, name, c.span)
	if sp.ID() == 0 {
		return ctx, sp
	}
	c.span = sp.ID()
	return context.WithValue(ctx, carrierKey{}, c), sp
}
