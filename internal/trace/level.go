package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // ring buffer only, dumped on failure
	LevelPhase        // driver and pass boundaries
	LevelDetail       // per-file events
	LevelDebug        // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "error", "ERROR":
		return LevelError, nil
	case "phase", "PHASE":
		return LevelPhase, nil
	case "detail", "DETAIL":
		return LevelDetail, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError:
		// everything goes to the ring; it is only written out on failure
		return true
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeFile
	case LevelDebug:
		return true
	}
	return false
}
