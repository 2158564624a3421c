package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rustidy/internal/diag"
	"rustidy/internal/diagfmt"
	"rustidy/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path> [path...]",
	Short: "Report syntax errors without formatting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "output format (text|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("config", "", "path to rustidy.toml (default: search upward from the first path)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	switch outputFormat {
	case "text", "json", "short":
	default:
		return fmt.Errorf("check: unsupported output format %q", outputFormat)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
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

	fs, results, err := driver.CheckPaths(cmd.Context(), args, driver.CheckOptions{
		Config:         cfg,
		Jobs:           jobs,
		MaxDiagnostics: g.maxDiagnostics,
	})
	if err != nil {
		return err
	}

	// все файлы в одном FileSet, так что сводим в один bag
	all := diag.NewBag(g.maxDiagnostics)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if r.Bag != nil {
			all.Merge(r.Bag)
		} else if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "check: %s: %v\n", r.Path, r.Err)
		}
	}
	all.Sort()

	switch outputFormat {
	case "json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), all, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
			return err
		}
	case "short":
		// одна строка на диагностику, для grep и golden-тестов
		if out := diag.FormatShortDiagnostics(all.Items(), fs, true); out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
	default:
		printBag(cmd.ErrOrStderr(), all, fs, g)
		if !g.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s), %d with errors\n", len(results), failed)
		}
	}
	if failed > 0 {
		return &exitError{code: 2}
	}
	return nil
}
