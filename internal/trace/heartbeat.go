package trace

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxHeartbeatFiles bounds how many in-flight files one beat names.
const maxHeartbeatFiles = 3

// Heartbeat emits a liveness event every interval naming the files still
// being worked on. A trace that keeps beating on the same file points at
// input the parser is stuck on.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat returns nil when tracing is off or interval is not positive;
// Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: beatDetail(beat, now.Sub(start), InFlight()),
			})
		}
	}
}

func beatDetail(beat int, elapsed time.Duration, files []string) string {
	detail := fmt.Sprintf("#%d +%s", beat, elapsed.Round(time.Millisecond))
	if len(files) == 0 {
		return detail
	}
	shown := files[:min(len(files), maxHeartbeatFiles)]
	detail += " in flight: " + strings.Join(shown, ", ")
	if rest := len(files) - len(shown); rest > 0 {
		detail += fmt.Sprintf(" (+%d more)", rest)
	}
	return detail
}

// Stop ends the goroutine and waits for it. Calling it twice is fine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
