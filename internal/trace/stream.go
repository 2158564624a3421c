package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they arrive.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ev.Seq = NextSeq()
	// trace output never fails the run
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer when it is an io.Closer other than
// the process' standard streams.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
