// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseError describes an invalid backend URL together with a hint for
// fixing it.
type ParseError struct {
	URL    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid backend URL: %s (%s)", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid backend URL: %s", e.Reason)
}

// NewParseError creates a ParseError for the given URL.
func NewParseError(rawURL, reason, hint string) *ParseError {
	return &ParseError{URL: rawURL, Reason: reason, Hint: hint}
}

// Validate checks that raw is a usable http(s) base URL.
func Validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewParseError(raw, "empty URL", "provide e.g. https://runner.example.com")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewParseError(raw, "not a valid URL", err.Error())
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return NewParseError(raw, "unsupported scheme "+schemeLabel(u.Scheme), "use http:// or https://")
	}
	if u.Host == "" {
		return NewParseError(raw, "missing host", "provide e.g. https://runner.example.com")
	}
	return nil
}

func schemeLabel(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
