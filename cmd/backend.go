// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pyrun/cli/internal/config"
	"pyrun/cli/internal/endpoint"
	apperrors "pyrun/cli/internal/errors"
)

// backendCmd shows where submissions currently go and lets the user point
// the CLI at a different execution backend.
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show or configure the execution backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		res, err := endpoint.Resolve(cfg, "", false)
		if apperrors.Is(err, apperrors.NotConfigured) {
			pterm.Println("⚠️  No execution backend configured.")
			pterm.Println("   Run 'pyrun backend set <url>', set " + endpoint.EnvBackendURL + ",")
			pterm.Println("   or pass --local to use " + endpoint.DefaultLocalURL)
			return nil
		}
		if err != nil {
			return err
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Execution Backend")).
			WithLeftPadding(1).
			WithRightPadding(1).
			WithTopPadding(1).
			WithBottomPadding(1).
			Println(res.BaseURL)
		pterm.Println(pterm.Gray("source: " + res.Source))
		return nil
	},
}

// backendSetCmd validates and stores the backend base URL in the config file.
var backendSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Set the backend base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		if err := endpoint.Validate(raw); err != nil {
			pterm.Error.Println(err.Error())
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg.BackendURL = raw
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		pterm.Println("✅ Backend set to " + raw)
		return nil
	},
}

// backendClearCmd removes the configured backend URL.
var backendClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the configured backend URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg.BackendURL = ""
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		pterm.Println("✅ Backend configuration cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendCmd)
	backendCmd.AddCommand(backendSetCmd)
	backendCmd.AddCommand(backendClearCmd)
}
