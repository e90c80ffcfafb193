// Package cli implements the harreplay command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd serves a trace by default; subcommands cover validation and
// version reporting.
var rootCmd = &cobra.Command{
	Use:   "harreplay <trace.har>",
	Short: "Serve a recorded HAR trace as a frozen backend",
	Long: `harreplay serves HTTP responses captured in a HAR trace back to live
clients, so a front-end can be exercised against a frozen backend.

An optional configuration file maps URLs to local files, rewrites textual
response content, and transforms response headers.`,
	Example: `  # Serve a trace on the default port
  harreplay session.har

  # Custom port and configuration file
  harreplay session.har --port 3000 --config replay-config.yaml

  # Enable per-response debug logging
  harreplay session.har --debug`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(&serveFlagVals, args[0])
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
