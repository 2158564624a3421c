package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rustidy/internal/diagfmt"
	"rustidy/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.rs|->",
	Short: "Parse a Rust source file and dump its syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|json)")
	parseCmd.Flags().String("config", "", "path to rustidy.toml (default: search upward from the file)")
}

func runParse(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if outputFormat != "tree" && outputFormat != "json" {
		return fmt.Errorf("parse: unsupported output format %q", outputFormat)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath, filePath)
	if err != nil {
		return err
	}

	var result *driver.ParseResult
	if filePath == "-" {
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("parse: failed to read stdin: %w", readErr)
		}
		result = driver.ParseSource(cmd.Context(), "<stdin>", content, cfg.MaxDepth, g.maxDiagnostics)
	} else {
		result, err = driver.Parse(cmd.Context(), filePath, cfg.MaxDepth, g.maxDiagnostics)
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
	}

	printBag(cmd.ErrOrStderr(), result.Bag, result.Files, g)
	if result.Tree == nil {
		return &exitError{code: 2}
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return diagfmt.FormatTreeJSON(out, result.Tree, result.Files)
	}
	return diagfmt.FormatTreePretty(out, result.Tree, result.Files)
}
