// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend implements the HTTP client for the remote execution
// service. It speaks the contract in internal/protocol and maps transport
// failures, backend execution failures and cancellations onto the typed error
// categories in internal/errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pyrun/cli/internal/endpoint"
	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/protocol"
)

// Client is an API client for one backend base URL.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a client for the given base URL. Cancellation and deadlines are
// the caller's business via context; the client itself imposes no request
// timeout on executions, which can legitimately run long.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute submits a prepared script and decodes the backend's response.
//
// Error mapping follows the contract: a response body that decodes as an
// ExecutionResponse is returned even on non-2xx status (the backend reports
// user-code failures both ways), while connection-level failures and
// undecodable bodies become transport errors. A context cancelled by the
// caller is reported as a cancellation, not a network error.
func (c *Client) Execute(ctx context.Context, req protocol.ExecutionRequest) (*protocol.ExecutionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Transport, "encoding request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+endpoint.ExecutePath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Transport, "creating request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, apperrors.New(apperrors.Cancelled, "execution cancelled")
		}
		return nil, apperrors.Wrap(apperrors.Transport, "contacting execution backend", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Transport, "reading response", err)
	}

	var execResp protocol.ExecutionResponse
	if err := json.Unmarshal(raw, &execResp); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, apperrors.Wrap(apperrors.Transport, "malformed response body", err)
		}
		return nil, apperrors.New(apperrors.Backend,
			fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, summarize(raw)))
	}
	execResp.Raw = raw

	// Non-2xx with a decodable body still carries the execution outcome;
	// make sure the failure is visible even if the error field was omitted.
	if (resp.StatusCode < 200 || resp.StatusCode >= 300) && execResp.Error == "" {
		execResp.Error = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return &execResp, nil
}

// Version calls GET /version and returns the backend version string when
// available. No authentication required; useful as a connectivity probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+endpoint.VersionPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "unknown", nil
	}
	var out struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Version == "" {
		return "unknown", nil
	}
	return out.Version, nil
}

// summarize trims a raw body down to something safe to embed in an error.
func summarize(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "…"
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
