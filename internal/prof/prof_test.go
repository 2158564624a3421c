package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "run.trace"),
	}
	if !opts.Enabled() {
		t.Fatal("options with paths are enabled")
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{opts.CPU, opts.Mem, opts.Trace} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", filepath.Base(p))
		}
	}
}

func TestSessionDisabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Fatal("zero options are disabled")
	}
	s, err := Start(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	var nilSession *Session
	if err := nilSession.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestStartFailsOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing", "cpu.pprof")
	if _, err := Start(Options{CPU: bad}); err == nil {
		t.Fatal("expected an error")
	}
}
