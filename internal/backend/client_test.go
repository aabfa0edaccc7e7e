// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pyrun/cli/internal/endpoint"
	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/interpret"
	"pyrun/cli/internal/protocol"
)

func TestExecuteSendsContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != endpoint.ExecutePath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sekrit" {
			t.Errorf("Authorization = %q", auth)
		}
		var req protocol.ExecutionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Script != `print("hi")` {
			t.Errorf("script = %q", req.Script)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stdout": "hi\n"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("sekrit"))
	resp, err := c.Execute(context.Background(), protocol.ExecutionRequest{Script: `print("hi")`})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Stdout != "hi\n" {
		t.Errorf("stdout = %q", resp.Stdout)
	}
	if len(resp.Raw) == 0 {
		t.Error("raw body not retained")
	}
}

// End to end: a response with an empty stdout and a bare result must still
// yield a plan containing the result and an explicit no-output indicator.
func TestExecuteThenInterpretEmptyStdout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stdout": "", "result": {"a": 1}}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	plan := interpret.Interpret(resp)
	var sawResult, sawIndicator bool
	for _, p := range plan.Panels {
		switch p.Type {
		case interpret.PanelJSON:
			sawResult = true
		case interpret.PanelStdout:
			sawIndicator = p.Caption == "no standard output"
		}
	}
	if !sawResult {
		t.Error("result panel missing")
	}
	if !sawIndicator {
		t.Error("no-output indicator missing")
	}
}

func TestExecuteNonOKWithDecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"stdout": "before crash\n", "error": "SyntaxError: invalid syntax"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "def"})
	if err != nil {
		t.Fatalf("decodable failure bodies are responses, not errors: %v", err)
	}
	if resp.Error != "SyntaxError: invalid syntax" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Stdout != "before crash\n" {
		t.Errorf("partial stdout lost: %q", resp.Stdout)
	}
}

func TestExecuteNonOKSynthesizesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"stdout": ""}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "x"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Error != "backend returned status 500" {
		t.Errorf("error = %q", resp.Error)
	}
	if !resp.Failed() {
		t.Error("response must report failure")
	}
}

func TestExecuteNonOKUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "x"})
	if !apperrors.Is(err, apperrors.Backend) {
		t.Fatalf("want backend error, got %v", err)
	}
}

func TestExecuteMalformedOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "x"})
	if !apperrors.Is(err, apperrors.Transport) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestExecuteUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := New(srv.URL).Execute(context.Background(), protocol.ExecutionRequest{Script: "x"})
	if !apperrors.Is(err, apperrors.Transport) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only watches for client disconnect once the body has
		// been consumed; without the drain the context never fires.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := New(srv.URL).Execute(ctx, protocol.ExecutionRequest{Script: "while True: pass"})
	if !apperrors.Is(err, apperrors.Cancelled) {
		t.Fatalf("want cancellation, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpoint.VersionPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"version": "1.4.2"}`))
	}))
	defer srv.Close()

	v, err := New(srv.URL).Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "1.4.2" {
		t.Errorf("version = %q", v)
	}
}

func TestVersionUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v, err := New(srv.URL).Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "unknown" {
		t.Errorf("version = %q, want unknown", v)
	}
}
