// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pyrun/cli/internal/history"
)

var historyLimit int

// historyCmd lists past runs recorded in the local SQLite history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		runs, err := db.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			pterm.Info.Println("No runs recorded yet")
			return nil
		}

		data := pterm.TableData{{"ID", "When", "Mode", "Status", "Duration", "Code"}}
		for _, r := range runs {
			status := "ok"
			if !r.Succeeded() {
				status = "error"
			}
			data = append(data, []string{
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Mode,
				status,
				fmt.Sprintf("%dms", r.DurationMS),
				firstLine(r.Code, 40),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

// historyShowCmd prints one recorded run in full.
var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		run, err := db.Get(cmd.Context(), args[0])
		if errors.Is(err, history.ErrNotFound) {
			pterm.Error.Printf("no run with id %s\n", args[0])
			return err
		}
		if err != nil {
			return err
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprintf("Run %s (%s)", run.ID, run.Mode)).
			Println(run.Code)
		if run.Error != "" {
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Error")).
				Println(run.Error)
		}
		if run.Stdout != "" {
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Output")).
				Println(strings.TrimRight(run.Stdout, "\n"))
		} else {
			pterm.Println(pterm.Gray("(no standard output)"))
		}
		pterm.Println(pterm.Gray(fmt.Sprintf("%s · %dms",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.DurationMS)))
		return nil
	},
}

// firstLine truncates code to its first line for table display.
func firstLine(code string, max int) string {
	line := code
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx] + " …"
	}
	if len(line) > max {
		line = line[:max] + "…"
	}
	return line
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
}
