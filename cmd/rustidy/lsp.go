package main

import (
	"github.com/spf13/cobra"

	"rustidy/internal/config"
	"rustidy/internal/lsp"
	"rustidy/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the rustidy language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().String("config", "", "use this rustidy.toml for every document")
	lspCmd.Flags().Int("log-level", 0, "language server log verbosity (logs go to stderr)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	verbosity, err := cmd.Flags().GetInt("log-level")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	opts := lsp.ServerOptions{
		Version:        version.Collect().Version,
		MaxDiagnostics: maxDiagnostics,
		Verbosity:      verbosity,
	}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		opts.Config = &cfg
	}
	return lsp.NewServer(opts).RunStdio(cmd.Context())
}
