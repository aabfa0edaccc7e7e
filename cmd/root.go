// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for pyrun. It implements
// subcommands for submitting Python snippets to the remote execution backend,
// an interactive session, a local web UI, run history and configuration,
// using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyrun/cli/internal/backend"
	"pyrun/cli/internal/config"
	"pyrun/cli/internal/endpoint"
	"pyrun/cli/internal/keychain"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "pyrun",
	Short:         "Run Python snippets on a remote execution backend",
	Long:          `pyrun submits Python code to a remote sandboxed execution service and renders the results (stdout, return values, tables, plots) in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("pyrun %s\n", Version)

			// Backend version is best effort: the CLI works without a
			// configured backend until something is submitted.
			cfg, err := config.Load()
			if err != nil {
				return nil
			}
			res, err := endpoint.Resolve(cfg, "", false)
			if err != nil {
				return nil
			}
			ctx := context.Background()
			be := backend.New(res.BaseURL, backend.WithToken(keychain.LoadToken()))
			backendVersion, err := be.Version(ctx)
			if err != nil {
				backendVersion = "unknown"
			}
			fmt.Printf("backend %s (%s)\n", backendVersion, res.BaseURL)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
}
