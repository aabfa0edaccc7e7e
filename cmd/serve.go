// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pyrun/cli/internal/backend"
	"pyrun/cli/internal/config"
	"pyrun/cli/internal/endpoint"
	"pyrun/cli/internal/keychain"
	"pyrun/cli/internal/webui"
)

var (
	serveAddr       string
	serveBackendURL string
	serveLocal      bool
)

// serveCmd hosts the local browser frontend. The server is a thin shell over
// the same prepare/execute/interpret pipeline the CLI uses.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local web UI",
	Long: `The serve command starts a local HTTP server hosting a minimal browser
frontend. Code submitted from the page goes through the same preparation and
result interpretation as the run command; resubmitting from the page aborts
the in-flight request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		res, err := endpoint.Resolve(cfg, serveBackendURL, serveLocal)
		if err != nil {
			pterm.Error.Println(err.Error())
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		be := backend.New(res.BaseURL, backend.WithToken(keychain.LoadToken()))

		srv := webui.New(webui.Config{Addr: serveAddr}, logger, be.Execute)
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8731", "Address to listen on")
	serveCmd.Flags().StringVar(&serveBackendURL, "backend", "", "Backend base URL, overriding config")
	serveCmd.Flags().BoolVar(&serveLocal, "local", false, "Use the local development backend")
}
