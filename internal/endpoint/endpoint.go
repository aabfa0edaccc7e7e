// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoint resolves the base URL of the execution backend.
//
// Resolution order: explicit override (flag), PYRUN_BACKEND_URL, the
// configured backend URL, and finally the fixed local-development endpoint,
// the latter only when local development is opted into. A missing
// configuration is a reportable configuration error, distinct from any
// network failure.
package endpoint

import (
	"fmt"
	"os"
	"strings"

	"pyrun/cli/internal/config"
	apperrors "pyrun/cli/internal/errors"
)

// DefaultLocalURL is the fixed endpoint used in local development.
const DefaultLocalURL = "http://localhost:8000"

// API paths on the backend, relative to the base URL.
const (
	ExecutePath = "/execute"
	VersionPath = "/version"
)

// EnvBackendURL overrides any configured backend URL.
const EnvBackendURL = "PYRUN_BACKEND_URL"

// EnvLocal opts into the local-development endpoint ("local" or "1").
const EnvLocal = "PYRUN_ENV"

// Resolved is the outcome of endpoint resolution.
type Resolved struct {
	BaseURL string
	// Source describes where the URL came from, for display.
	Source string
}

// Resolve determines the backend base URL. The override parameter comes from
// a command-line flag and wins over everything; pass "" when absent.
func Resolve(cfg config.Config, override string, local bool) (Resolved, error) {
	if v := strings.TrimSpace(override); v != "" {
		if err := Validate(v); err != nil {
			return Resolved{}, err
		}
		return Resolved{BaseURL: normalize(v), Source: "--backend flag"}, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		if err := Validate(v); err != nil {
			return Resolved{}, err
		}
		return Resolved{BaseURL: normalize(v), Source: EnvBackendURL + " environment variable"}, nil
	}
	if v := strings.TrimSpace(cfg.BackendURL); v != "" {
		return Resolved{BaseURL: normalize(v), Source: "config file"}, nil
	}
	if local || cfg.Local || isLocalEnv() {
		return Resolved{BaseURL: DefaultLocalURL, Source: "local development default"}, nil
	}
	return Resolved{}, apperrors.New(apperrors.NotConfigured,
		fmt.Sprintf("no execution backend configured; run 'pyrun backend set <url>' or set %s", EnvBackendURL))
}

func isLocalEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLocal))) {
	case "local", "1", "true":
		return true
	}
	return false
}

func normalize(raw string) string {
	return strings.TrimRight(raw, "/")
}
