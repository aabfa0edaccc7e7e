// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"

	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/history"
	"pyrun/cli/internal/httperrors"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/render"
	"pyrun/cli/internal/session"
	"pyrun/cli/internal/xdg"
)

// presentOutcome reports one finished submission. Cancellations are
// informational; configuration and transport failures are returned so the
// process exits non-zero; a backend execution failure is rendered through its
// panels and flagged with a terse trailing error.
func presentOutcome(outcome *session.Outcome, baseURL string, asJSON bool, figureDir string) error {
	if outcome.Err != nil {
		switch apperrors.KindOf(outcome.Err) {
		case apperrors.Cancelled:
			pterm.Println()
			pterm.Info.Println("Cancelled: the run was aborted before completing")
			return nil
		case apperrors.NotConfigured:
			pterm.Error.Println(outcome.Err.Error())
			return outcome.Err
		case apperrors.Backend:
			pterm.Error.Println(outcome.Err.Error())
			return outcome.Err
		default:
			var e *apperrors.E
			cause := outcome.Err
			if errors.As(outcome.Err, &e) && e.Err != nil {
				cause = e.Err
			}
			httperrors.Show(cause, httperrors.HostOf(baseURL))
			return outcome.Err
		}
	}

	resp := outcome.Response
	if asJSON {
		os.Stdout.Write(resp.Raw)
		fmt.Println()
		return nil
	}

	r := render.NewRenderer()
	r.FigureDir = figureDir
	r.Render(outcome.Plan)

	// Wrapping added one header line; point error line numbers back at the
	// user's source.
	if outcome.Wrapped && resp.Error != "" {
		if n := prepare.FirstLineRef(resp.Error); n > prepare.WrapOffset {
			pterm.Println(pterm.Gray(fmt.Sprintf(
				"note: code was wrapped for execution; reported line %d is line %d of your source",
				n, prepare.OriginalLine(n))))
		}
	}

	if resp.Failed() {
		return apperrors.New(apperrors.Backend, "execution finished with an error")
	}
	return nil
}

// recordRun stores a finished submission in local history, best effort. Runs
// that never produced a response (transport failures, cancellations) are not
// recorded.
func recordRun(code string, mode prepare.Mode, outcome *session.Outcome) {
	if outcome.Response == nil {
		return
	}
	db, err := openHistory()
	if err != nil {
		pterm.Debug.Printf("history unavailable: %v\n", err)
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = db.Record(ctx, &history.Run{
		Code:       code,
		Mode:       string(mode),
		Stdout:     outcome.Response.Stdout,
		Error:      outcome.Response.Error,
		DurationMS: outcome.Duration.Milliseconds(),
	})
	if err != nil {
		pterm.Debug.Printf("recording history: %v\n", err)
	}
}

// openHistory opens the history database in the XDG state dir.
func openHistory() (*history.DB, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return history.New(filepath.Join(dir, "history.db"))
}
