// Package prof wires the runtime profilers to files named on the command
// line.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names output files; empty paths disable the profiler.
type Options struct {
	CPU   string
	Mem   string
	Trace string
}

// Enabled reports whether any profiler was requested.
func (o Options) Enabled() bool {
	return o.CPU != "" || o.Mem != "" || o.Trace != ""
}

// Session holds the profilers started by Start. Stop must be called once.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and runtime tracing as requested. On error
// everything already started is stopped again.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			_ = s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends the running profilers and writes the heap profile, if any.
// A nil Session is a no-op.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.traceFile != nil {
		trace.Stop()
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	errs = append(errs, s.stopCPU())
	if s.opts.Mem != "" {
		errs = append(errs, writeMem(s.opts.Mem))
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	return err
}

// writeMem captures a heap profile after a GC.
func writeMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
