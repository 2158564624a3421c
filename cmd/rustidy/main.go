package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rustidy/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rustidy",
	Short: "Rust source formatter",
	Long:  `rustidy parses Rust sources without a compiler and rewrites their whitespace into a canonical layout`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
}

// traceCleanup flushes the tracer once the command is done; cobra skips
// post-run hooks on error, so main calls it.
var traceCleanup = func(failed bool) {}

// exitError carries a specific exit status without printing anything more.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func init() {
	// версия для автоматического флага --version
	rootCmd.Version = version.Collect().Version
	// ошибки печатает main
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	addTraceFlags(rootCmd)
	addProfileFlags(rootCmd)
}

// main executes the root command.
// Exit status: 0 ok, 1 formatting changes needed (fmt --check), 2 any other failure.
func main() {
	err := rootCmd.Execute()
	traceCleanup(err != nil)
	os.Exit(exitCode(os.Stderr, err))
}

// exitCode prints err the way main reports it and returns the exit status.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			fmt.Fprintln(w, exit.msg)
		}
		return exit.code
	}
	fmt.Fprintf(w, "rustidy: %v\n", err)
	return 2
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves --color against the terminal state of f.
func colorEnabled(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		return isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

type globalFlags struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
	color          bool
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	var err error
	flags := cmd.Root().PersistentFlags()
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.color, err = colorEnabled(cmd, os.Stderr); err != nil {
		return g, err
	}
	return g, nil
}
