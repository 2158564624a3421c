package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI command
	ScopePass                    // config load, walk, format run, cache flush
	ScopeFile                    // one source file
	ScopeNode                    // per-item work inside a file
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFile:
		return "file"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64
	Name     string // "fmt", "parse", "file:src/lib.rs"
	Detail   string
	Extra    map[string]string
}
