package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rustidy/internal/version"
)

var (
	versionFormat      string
	versionShowHash    bool
	versionShowMessage bool
	versionShowDate    bool
	versionShowFull    bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowMessage, "message", false, "include git commit message")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show rustidy build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := version.Fields{
			Hash:    versionShowHash,
			Message: versionShowMessage,
			Date:    versionShowDate,
		}
		if versionShowFull {
			fields = version.All()
		}

		info := version.Collect()
		switch strings.ToLower(versionFormat) {
		case "json":
			return version.WriteJSON(cmd.OutOrStdout(), info, fields)
		case "pretty":
			useColor, err := colorEnabled(cmd, os.Stdout)
			if err != nil {
				return err
			}
			version.WritePretty(cmd.OutOrStdout(), info, fields, useColor)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
