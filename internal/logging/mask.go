// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure output. It masks token and
// API-key material in anything echoed back to the user, so verbose output and
// `pyrun token show` never expose a full credential.
package logging

import (
	"regexp"
	"strings"
)

var (
	reToken      = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reAPIKey     = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;]+)`)
	reAuthHeader = regexp.MustCompile(`(?i)(authorization:\s*)(\S.*)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reAuthHeader.ReplaceAllString(out, "${1}***")
	for _, k := range []string{"PYRUN_API_TOKEN", "ACCESS_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// MaskToken shows only a short prefix of a credential, for display in
// configuration summaries.
func MaskToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return "(none)"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***"
}
