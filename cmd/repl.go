// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pyrun/cli/internal/backend"
	"pyrun/cli/internal/config"
	"pyrun/cli/internal/endpoint"
	"pyrun/cli/internal/keychain"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/session"
)

var (
	replBackendURL string
	replLocal      bool
)

// replCmd runs an interactive editing session against the backend. Each
// submission goes through the same single-flight session as `pyrun run`;
// Ctrl-C during a run cancels that run without leaving the session.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session against the execution backend",
	Long: `The repl command starts an interactive session. Type code across multiple
lines; an empty line submits the buffer. Directives:

  :mode script|function   switch the execution mode
  :clear                  drop the last result
  :quit                   leave the session

Ctrl-C while a submission is in flight cancels it and returns to the prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		mode, err := resolveMode("", cfg)
		if err != nil {
			return err
		}
		res, err := endpoint.Resolve(cfg, replBackendURL, replLocal)
		if err != nil {
			pterm.Error.Println(err.Error())
			return err
		}

		be := backend.New(res.BaseURL, backend.WithToken(keychain.LoadToken()))
		sess := session.New(be.Execute, mode)

		pterm.Printf("pyrun %s (backend %s)\n", Version, res.BaseURL)
		pterm.Println(pterm.Gray("empty line submits · :help for directives"))

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var buffer []string

		for {
			if len(buffer) == 0 {
				fmt.Printf(">>> ")
			} else {
				fmt.Printf("... ")
			}
			if !scanner.Scan() {
				pterm.Println()
				return scanner.Err()
			}
			line := scanner.Text()

			if len(buffer) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
				if done := replDirective(sess, strings.TrimSpace(line)); done {
					return nil
				}
				continue
			}

			if strings.TrimSpace(line) != "" {
				buffer = append(buffer, line)
				continue
			}
			if len(buffer) == 0 {
				continue
			}

			code := strings.Join(buffer, "\n")
			buffer = buffer[:0]
			replSubmit(cmd, sess, cfg, code, res.BaseURL)
		}
	},
}

// replSubmit runs one submission with Ctrl-C bound to cancellation of just
// that run.
func replSubmit(cmd *cobra.Command, sess *session.Session, cfg config.Config, code, baseURL string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cursor.Hide()
	stopSpinner := startInlineSpinner(os.Stderr, "executing", spinnerFrames, 120*time.Millisecond)
	outcome := sess.Submit(ctx, code).Wait()
	stopSpinner()
	cursor.Show()

	if !cfg.HistoryDisabled {
		recordRun(code, sess.Mode(), outcome)
	}
	// Errors were already displayed; the session itself stays alive.
	_ = presentOutcome(outcome, baseURL, false, "")
}

// replDirective handles a ":" command; it reports true when the session
// should end.
func replDirective(sess *session.Session, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":clear":
		sess.Clear()
		pterm.Info.Println("cleared")
	case ":mode":
		if len(fields) != 2 {
			pterm.Printf("current mode: %s\n", sess.Mode())
			return false
		}
		mode, ok := prepare.ParseMode(fields[1])
		if !ok {
			pterm.Error.Println("invalid mode: use script or function")
			return false
		}
		sess.SetMode(mode)
		pterm.Info.Printf("mode set to %s\n", mode)
	case ":help":
		pterm.Println(":mode script|function   switch the execution mode")
		pterm.Println(":clear                  drop the last result")
		pterm.Println(":quit                   leave the session")
	default:
		pterm.Error.Printf("unknown directive %s (:help for help)\n", fields[0])
	}
	return false
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replBackendURL, "backend", "", "Backend base URL, overriding config")
	replCmd.Flags().BoolVar(&replLocal, "local", false, "Use the local development backend")
}
