package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rustidy/internal/config"
	"rustidy/internal/diagfmt"
	"rustidy/internal/driver"
	"rustidy/internal/format"
	"rustidy/internal/observ"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path|-> [path...]",
	Short: "Format Rust source files",
	Long:  `Format rewrites the whitespace of Rust sources in place. Directories are walked for files with a configured extension; "-" formats stdin to stdout.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that need formatting instead of rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().Bool("fix", false, "apply lint fixes (NFC identifiers) before formatting")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	fmtCmd.Flags().String("config", "", "path to rustidy.toml (default: search upward from the first path)")
	fmtCmd.Flags().Bool("no-cache", false, "ignore and do not update the format cache")
	fmtCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type fmtOptions struct {
	check   bool
	stdout  bool
	fix     bool
	format  string
	jobs    int
	noCache bool
	ui      uiMode
}

func readFmtOptions(cmd *cobra.Command) (fmtOptions, error) {
	var o fmtOptions
	var err error
	flags := cmd.Flags()
	if o.check, err = flags.GetBool("check"); err != nil {
		return o, err
	}
	if o.stdout, err = flags.GetBool("stdout"); err != nil {
		return o, err
	}
	if o.fix, err = flags.GetBool("fix"); err != nil {
		return o, err
	}
	if o.format, err = flags.GetString("format"); err != nil {
		return o, err
	}
	if o.jobs, err = flags.GetInt("jobs"); err != nil {
		return o, err
	}
	if o.noCache, err = flags.GetBool("no-cache"); err != nil {
		return o, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return o, err
	}
	if o.ui, err = readUIMode(uiValue); err != nil {
		return o, err
	}
	switch o.format {
	case "text", "json":
	default:
		return o, fmt.Errorf("fmt: unsupported output format %q", o.format)
	}
	if o.stdout && o.check {
		return o, fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if o.stdout && o.format != "text" {
		return o, fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	return o, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	opts, err := readFmtOptions(cmd)
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath, args[0])
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	if len(args) == 1 && args[0] == "-" {
		return runFmtStdin(cmd, cfg, opts, g)
	}

	var timer *observ.Timer
	if g.timings {
		timer = observ.NewTimer()
	}
	driverOpts := driver.FormatOptions{
		Config:         cfg,
		Check:          opts.check,
		Stdout:         opts.stdout,
		Fix:            opts.fix,
		Jobs:           opts.jobs,
		MaxDiagnostics: g.maxDiagnostics,
		Timer:          timer,
	}
	if cfg.Cache.Enabled && !opts.noCache {
		cache, cacheErr := driver.OpenDiskCache("rustidy")
		if cacheErr != nil && !g.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "fmt: cache disabled: %v\n", cacheErr)
		}
		driverOpts.Cache = cache
	}

	ctx := cmd.Context()
	done := timer.Track("collect")
	files, err := driver.CollectFiles(ctx, args, cfg)
	done("")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("fmt: %w", driver.ErrNoFiles)
	}

	var results []driver.FormatResult
	if shouldUseTUI(opts.ui, g.quiet, opts.stdout, len(files)) {
		results, err = runFormatWithUI(ctx, "rustidy fmt", files, driverOpts)
	} else {
		results, err = driver.FormatFiles(ctx, files, driverOpts)
	}
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var s fmtSummary
	switch {
	case opts.format == "json":
		s = summarize(results)
		if err := renderFmtJSON(out, results, opts.check); err != nil {
			return err
		}
	case opts.stdout:
		s = renderFmtStdout(out, errOut, results, g)
	default:
		s = renderFmtText(out, errOut, results, opts.check, g)
	}
	if timer != nil {
		fmt.Fprint(errOut, timer.Summary())
	}
	return s.exit(opts.check)
}

// loadConfig reads --config when given, else discovers rustidy.toml from
// the first path argument ("-" searches the working directory).
func loadConfig(explicit, firstArg string) (config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	start := firstArg
	if start == "-" {
		start = "."
	}
	cfg, err := config.Discover(start)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runFmtStdin(cmd *cobra.Command, cfg config.Config, opts fmtOptions, g globalFlags) error {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("fmt: failed to read stdin: %w", err)
	}
	res, err := driver.FormatSource(cmd.Context(), "<stdin>", content, cfg, g.maxDiagnostics)
	printBag(cmd.ErrOrStderr(), res.Bag, res.Files, g)
	if err != nil {
		return &exitError{code: 2, msg: fmt.Sprintf("fmt: <stdin>: %v", err)}
	}
	if opts.check {
		if res.Changed {
			return &exitError{code: 1, msg: ""}
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(res.Output)
	return err
}

type fmtSummary struct {
	failed, changed int
}

func (s fmtSummary) exit(check bool) error {
	if s.failed > 0 {
		return &exitError{code: 2, msg: fmt.Sprintf("fmt: failed to format %d file(s)", s.failed)}
	}
	if check && s.changed > 0 {
		return &exitError{code: 1, msg: ""}
	}
	return nil
}

func summarize(results []driver.FormatResult) fmtSummary {
	var s fmtSummary
	for _, res := range results {
		switch {
		case res.Err != nil:
			s.failed++
		case res.Changed:
			s.changed++
		}
	}
	return s
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult, g globalFlags) fmtSummary {
	for _, res := range results {
		printBag(errOut, res.Bag, res.Files, g)
		if res.Err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, describeFormatError(res.Err))
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return summarize(results)
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, check bool, g globalFlags) fmtSummary {
	for _, res := range results {
		printBag(errOut, res.Bag, res.Files, g)
		if res.Err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, describeFormatError(res.Err))
			continue
		}
		if g.quiet || !res.Changed {
			continue
		}
		switch {
		case check:
			fmt.Fprintln(out, res.Path)
		case res.Fixed > 0:
			fmt.Fprintf(out, "reformatted %s (%d fix(es) applied)\n", res.Path, res.Fixed)
		default:
			fmt.Fprintf(out, "reformatted %s\n", res.Path)
		}
	}
	return summarize(results)
}

// describeFormatError shortens errors whose details were already printed
// as diagnostics.
func describeFormatError(err error) error {
	switch {
	case errors.Is(err, format.ErrParse):
		return format.ErrParse
	case errors.Is(err, format.ErrTokenMismatch):
		return fmt.Errorf("%w (please report this file)", format.ErrTokenMismatch)
	default:
		return err
	}
}

type fmtJSONResult struct {
	Path        string                   `json:"path"`
	Changed     bool                     `json:"changed"`
	Written     bool                     `json:"written"`
	Cached      bool                     `json:"cached"`
	CheckRun    bool                     `json:"check"`
	Fixed       int                      `json:"fixed,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	Dropped     int                      `json:"dropped,omitempty"`
}

func renderFmtJSON(w io.Writer, results []driver.FormatResult, check bool) error {
	payload := make([]fmtJSONResult, 0, len(results))
	for _, res := range results {
		jr := fmtJSONResult{Path: res.Path, Changed: res.Changed, Written: res.Written, Cached: res.Cached, CheckRun: check, Fixed: res.Fixed}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		if res.Bag != nil && res.Bag.Len() > 0 {
			res.Bag.Sort()
			diags, err := diagfmt.BuildDiagnosticsOutput(res.Bag, res.Files, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
			if err != nil {
				return err
			}
			jr.Diagnostics, jr.Dropped = diags.Diagnostics, diags.Dropped
		}
		payload = append(payload, jr)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
