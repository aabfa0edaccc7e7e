// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package webui serves a minimal local browser frontend for the execution
// backend. It exposes one page and one JSON endpoint; the page submits code
// via fetch with an AbortController so that resubmitting cancels the
// in-flight request, mirroring the CLI session semantics.
package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/interpret"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/protocol"
	"pyrun/cli/internal/session"
)

// Config holds web UI server settings.
type Config struct {
	Addr string
}

// Server hosts the local web frontend.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	execute session.ExecuteFunc
}

// New wires the router. execute is the backend submission function shared
// with the CLI paths.
func New(cfg Config, logger *slog.Logger, execute session.ExecuteFunc) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		execute: execute,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(requestLogger(s.logger))

	s.router.Get("/", s.handleIndex)
	s.router.Post("/api/execute", s.handleExecute)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// executeRequest is what the page submits.
type executeRequest struct {
	Code string `json:"code"`
	Mode string `json:"mode"`
}

// executeResponse carries the render plan plus the raw backend response for
// the page to display.
type executeResponse struct {
	Plan     interpret.RenderPlan        `json:"plan"`
	Response *protocol.ExecutionResponse `json:"response,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	mode, ok := prepare.ParseMode(req.Mode)
	if !ok {
		mode = prepare.ModeScript
	}

	script := prepare.Prepare(req.Code, mode)
	resp, err := s.execute(r.Context(), protocol.ExecutionRequest{Script: script})
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.Cancelled:
			// The browser aborted the fetch; nobody reads this response.
			writeError(w, 499, string(apperrors.Cancelled), "cancelled")
		case apperrors.NotConfigured:
			writeError(w, http.StatusInternalServerError, string(apperrors.NotConfigured), err.Error())
		default:
			writeError(w, http.StatusBadGateway, string(apperrors.Transport), err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Plan:     interpret.Interpret(resp),
		Response: resp,
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: msg})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // executions stream back slowly; the backend bounds them
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("web ui listening",
			slog.String("addr", s.config.Addr),
			slog.String("url", "http://"+s.config.Addr),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}
