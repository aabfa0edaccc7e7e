// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the mutable state of one editing session: the current
// execution mode, the single in-flight request, and the last outcome.
//
// At most one request is active at a time. Submitting while a prior request
// is outstanding cancels it through its context; a generation counter makes
// sure a cancelled request's late response can never overwrite the state of a
// newer submission. There is no retry logic anywhere; a failed or cancelled
// run requires an explicit resubmission.
package session

import (
	"context"
	"sync"
	"time"

	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/interpret"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/protocol"
)

// ExecuteFunc submits a prepared request to the backend.
type ExecuteFunc func(ctx context.Context, req protocol.ExecutionRequest) (*protocol.ExecutionResponse, error)

// Outcome is the immutable record of one finished submission.
type Outcome struct {
	Response *protocol.ExecutionResponse
	Plan     interpret.RenderPlan
	Err      error
	// Wrapped reports whether function-mode wrapping was applied, for
	// translating backend line numbers back to the source.
	Wrapped  bool
	Duration time.Duration
}

// Cancelled reports whether the submission ended in a user-initiated abort.
func (o *Outcome) Cancelled() bool {
	return apperrors.Is(o.Err, apperrors.Cancelled)
}

// Session is the owned state record of one editing session. All fields are
// guarded by mu and replaced atomically on each submission.
type Session struct {
	mu         sync.Mutex
	execute    ExecuteFunc
	mode       prepare.Mode
	generation uint64
	cancel     context.CancelFunc
	last       *Outcome
}

// New creates a session submitting through execute.
func New(execute ExecuteFunc, mode prepare.Mode) *Session {
	return &Session{execute: execute, mode: mode}
}

// Mode returns the current execution mode.
func (s *Session) Mode() prepare.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the execution mode for subsequent submissions.
func (s *Session) SetMode(m prepare.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Run is a handle on one asynchronous submission.
type Run struct {
	done    chan struct{}
	outcome *Outcome
}

// Done is closed when the submission has finished (any way).
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the submission finishes and returns its outcome.
func (r *Run) Wait() *Outcome {
	<-r.done
	return r.outcome
}

// Submit prepares rawCode under the current mode and sends it to the backend.
// Any in-flight submission is cancelled first. The returned handle resolves
// when this submission finishes; whether its outcome becomes the session's
// last outcome depends on it still being the newest submission by then.
func (s *Session) Submit(ctx context.Context, rawCode string) *Run {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	mode := s.mode
	s.mu.Unlock()

	run := &Run{done: make(chan struct{})}
	go func() {
		defer close(run.done)
		defer cancel()

		start := time.Now()
		script := prepare.Prepare(rawCode, mode)
		resp, err := s.execute(runCtx, protocol.ExecutionRequest{Script: script})

		out := &Outcome{
			Wrapped:  prepare.Wraps(rawCode, mode),
			Duration: time.Since(start),
		}
		if err != nil {
			out.Err = normalizeCancellation(runCtx, err)
		} else {
			out.Response = resp
			out.Plan = interpret.Interpret(resp)
		}
		run.outcome = out

		s.mu.Lock()
		if s.generation == gen {
			s.last = out
			s.cancel = nil
		}
		s.mu.Unlock()
	}()
	return run
}

// Cancel aborts the in-flight submission, if any. The session returns to a
// submittable idle state either way.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Last returns the outcome of the newest finished submission, or nil.
func (s *Session) Last() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Clear drops the held outcome (explicit clear in the UI).
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}

// normalizeCancellation makes sure a run aborted through its context is
// reported as a cancellation even when the underlying transport dressed it up
// as a network error.
func normalizeCancellation(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled && !apperrors.Is(err, apperrors.Cancelled) {
		return apperrors.Wrap(apperrors.Cancelled, "execution cancelled", err)
	}
	return err
}
