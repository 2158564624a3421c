package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const defaultRingSize = 4096

// Tracer receives trace events. Implementations are goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode determines where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written immediately
	ModeRing                          // kept in memory
	ModeBoth
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a flag value to a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or empty for stderr
	RingSize   int
	Heartbeat  time.Duration // 0 disables
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format), nil
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewMultiTracer(cfg.Level,
			NewStreamTracer(w, cfg.Level, format),
			NewRingTracer(cfg.RingSize, cfg.Level),
		), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      goroutineID(),
		Name:     name,
		Detail:   detail,
	})
}
