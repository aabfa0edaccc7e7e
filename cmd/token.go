// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pyrun/cli/internal/keychain"
	"pyrun/cli/internal/logging"
	"pyrun/cli/internal/terminal"
)

// tokenCmd manages the optional backend API token. The token lives in the OS
// keychain, never in the config file, and is attached as a bearer token when
// present.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the backend API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keychain.Open()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system.")
			return err
		}
		token, err := store.LoadAPIToken()
		if errors.Is(err, keychain.ErrNotFound) {
			pterm.Info.Println("No API token stored; the backend is contacted without authentication")
			return nil
		}
		if err != nil {
			return err
		}
		pterm.Printf("API token: %s\n", logging.MaskToken(token))
		return nil
	},
}

// tokenSetCmd prompts for a token and stores it, scrubbing the echoed input
// from the terminal afterwards.
var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the backend API token in the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		promptText := "Enter backend API token: "
		fmt.Print(promptText)
		token, _ := reader.ReadString('\n')
		token = strings.TrimSpace(token)

		// Scrub the echoed token from the terminal.
		terminal.ClearPreviousLines(len(promptText) + len(token))

		if token == "" {
			return errors.New("token is required")
		}
		store, err := keychain.Open()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system.")
			return err
		}
		if err := store.SaveAPIToken(token); err != nil {
			pterm.Println("❌ Failed to save the token securely.")
			return err
		}
		pterm.Println("✅ API token saved")
		return nil
	},
}

// tokenClearCmd removes the stored token.
var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keychain.Open()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system.")
			return err
		}
		if err := store.DeleteAPIToken(); err != nil {
			return err
		}
		pterm.Println("✅ API token removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenClearCmd)
}
