package trace

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		// each tracer stamps its own Seq
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *MultiTracer) Close() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

// Ring returns the first ring tracer among t's children, if any.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r
		}
	}
	return nil
}
