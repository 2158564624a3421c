package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rustidy/internal/prof"
)

func addProfileFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	cmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// setupProfiling starts the profilers named by the persistent flags. The
// returned cleanup reports write failures to stderr and is safe to call more
// than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	cleaned := false
	return func() {
		if cleaned {
			return
		}
		cleaned = true
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "rustidy: profiling: %v\n", err)
		}
	}, nil
}
