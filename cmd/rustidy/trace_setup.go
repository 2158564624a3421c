package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rustidy/internal/trace"
)

func addTraceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("trace", "", "write trace events to a file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// setupTracing inspects trace-related flags and initializes the tracer.
// The returned cleanup flushes it; a ring-only tracer is dumped when the
// command failed.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает phase
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	// с файлом события пишутся сразу, если режим не задан явно
	if traceOutput != "" && !root.PersistentFlags().Changed("trace-mode") {
		modeStr = "stream"
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	cleanup := func(failed bool) {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if ring, ok := tracer.(*trace.RingTracer); ok && failed {
			dumpRing(cmd, ring, traceOutput, format)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func dumpRing(cmd *cobra.Command, ring *trace.RingTracer, output string, format trace.Format) {
	if format == trace.FormatAuto {
		format = trace.FormatText
	}
	w := cmd.ErrOrStderr()
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(w, "trace: %v\n", err)
			return
		}
		defer f.Close()
		w = f
	}
	if err := ring.Dump(w, format); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
