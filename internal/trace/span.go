package trace

import (
	"bytes"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// openFiles maps open span IDs to the file they work on, so a heartbeat can
// name what is still in flight.
var openFiles = struct {
	sync.Mutex
	byID map[uint64]string
}{byID: make(map[uint64]string)}

// InFlight returns the files of spans that are begun but not ended, oldest
// first.
func InFlight() []string {
	openFiles.Lock()
	ids := make([]uint64, 0, len(openFiles.byID))
	for id := range openFiles.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	files := make([]string, len(ids))
	for i, id := range ids {
		files[i] = openFiles.byID[id]
	}
	openFiles.Unlock()
	return files
}

// goroutineID parses the id out of the "goroutine N [" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header, ok := bytes.CutPrefix(header, []byte("goroutine "))
	if !ok {
		return 0
	}
	n, _, ok := bytes.Cut(header, []byte{' '})
	if !ok {
		return 0
	}
	gid, err := strconv.ParseUint(string(n), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin/end pair. The variant returned when tracing is off
// (or the scope is filtered) accepts every call, emits nothing and still
// measures time.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin emits a SpanBegin event and returns the open span; parent is 0 for
// roots.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	now := time.Now()
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop, started: now}
	}

	sp := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		gid:      goroutineID(),
		scope:    scope,
		name:     name,
		started:  now,
	}
	t.Emit(sp.event(KindSpanBegin, now, ""))
	return sp
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
	}
}

func (s *Span) live() bool {
	return s != nil && s.id != 0 && s.tracer != nil && s.tracer.Enabled()
}

// End emits the SpanEnd event and returns the elapsed time, which callers
// can feed into observ timings.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	if !s.live() {
		return dur
	}
	if _, ok := s.extra["file"]; ok {
		openFiles.Lock()
		delete(openFiles.byID, s.id)
		openFiles.Unlock()
	}
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return dur
}

// WithExtra attaches key=value to the end event. The "file" key also marks
// the span as in flight for InFlight.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	if key == "file" {
		openFiles.Lock()
		openFiles.byID[s.id] = value
		openFiles.Unlock()
	}
	return s
}

// ID returns the span ID; 0 for spans that emit nothing.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
