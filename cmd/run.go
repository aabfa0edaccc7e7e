// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pyrun/cli/internal/backend"
	"pyrun/cli/internal/config"
	"pyrun/cli/internal/endpoint"
	"pyrun/cli/internal/keychain"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/session"
)

var (
	runMode        string
	runCode        string
	runBackendURL  string
	runLocal       bool
	runTimeout     time.Duration
	runJSON        bool
	runSaveFigures string
	runNoHistory   bool
)

// runCmd submits one snippet to the execution backend and renders the
// response. Code comes from a file argument, "-" or a pipe on stdin, or the
// --code flag.
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a Python snippet on the backend",
	Long: `The run command prepares a Python snippet according to the execution mode,
submits it to the configured execution backend and renders the typed results:
standard output, return values (including tables, series and images), captured
figures and performance metrics.

In script mode the code is sent as written unless it contains a return
statement, which forces function-mode wrapping. In function mode the code is
wrapped in a main() definition whose return value the backend captures.

Press Ctrl-C while a run is in flight to cancel it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readRunCode(args)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		mode, err := resolveMode(runMode, cfg)
		if err != nil {
			return err
		}

		res, err := endpoint.Resolve(cfg, runBackendURL, runLocal)
		if err != nil {
			pterm.Error.Println(err.Error())
			return err
		}

		be := backend.New(res.BaseURL, backend.WithToken(keychain.LoadToken()))
		sess := session.New(be.Execute, mode)

		ctx := cmd.Context()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cursor.Hide()
		stopSpinner := startInlineSpinner(os.Stderr, "executing", spinnerFrames, 120*time.Millisecond)
		outcome := sess.Submit(ctx, code).Wait()
		stopSpinner()
		cursor.Show()

		if !runNoHistory && !cfg.HistoryDisabled {
			recordRun(code, mode, outcome)
		}
		return presentOutcome(outcome, res.BaseURL, runJSON, runSaveFigures)
	},
}

// readRunCode picks the code source: --code flag, file argument, or stdin.
func readRunCode(args []string) (string, error) {
	if strings.TrimSpace(runCode) != "" {
		return runCode, nil
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	// "-" or no argument: read stdin, but only when something is piped in.
	if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no code provided; pass a file, pipe to stdin, or use --code")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// resolveMode picks the execution mode from the flag or the configured
// default.
func resolveMode(flag string, cfg config.Config) (prepare.Mode, error) {
	raw := flag
	if raw == "" {
		raw = cfg.DefaultMode
	}
	mode, ok := prepare.ParseMode(raw)
	if !ok {
		return "", fmt.Errorf("invalid mode %q: use script or function", raw)
	}
	return mode, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Execution mode: script or function (default from config)")
	runCmd.Flags().StringVarP(&runCode, "code", "c", "", "Code to execute, inline")
	runCmd.Flags().StringVar(&runBackendURL, "backend", "", "Backend base URL, overriding config")
	runCmd.Flags().BoolVar(&runLocal, "local", false, "Use the local development backend")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the run after this duration (0 = no client timeout)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the raw backend response instead of rendering panels")
	runCmd.Flags().StringVar(&runSaveFigures, "save-figures", "", "Directory to write captured figures to")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in local history")
}
