// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"testing"
	"time"

	apperrors "pyrun/cli/internal/errors"
	"pyrun/cli/internal/prepare"
	"pyrun/cli/internal/protocol"
)

// blockingExecutor hands each call to the test through calls and completes it
// when the test closes the per-call release channel, or when the context is
// cancelled, whichever happens first.
type blockingExecutor struct {
	calls chan *execCall
}

type execCall struct {
	req     protocol.ExecutionRequest
	release chan *protocol.ExecutionResponse
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{calls: make(chan *execCall, 8)}
}

func (b *blockingExecutor) execute(ctx context.Context, req protocol.ExecutionRequest) (*protocol.ExecutionResponse, error) {
	call := &execCall{req: req, release: make(chan *protocol.ExecutionResponse, 1)}
	b.calls <- call
	select {
	case resp := <-call.release:
		return resp, nil
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.Cancelled, "execution cancelled", ctx.Err())
	}
}

func (b *blockingExecutor) next(t *testing.T) *execCall {
	t.Helper()
	select {
	case call := <-b.calls:
		return call
	case <-time.After(5 * time.Second):
		t.Fatal("executor was never called")
		return nil
	}
}

func TestSubmitRecordsOutcome(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeScript)

	run := sess.Submit(context.Background(), `print("hi")`)
	call := exec.next(t)
	if call.req.Script != `print("hi")` {
		t.Errorf("script = %q", call.req.Script)
	}
	call.release <- &protocol.ExecutionResponse{Stdout: "hi\n"}

	out := run.Wait()
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Response.Stdout != "hi\n" {
		t.Errorf("stdout = %q", out.Response.Stdout)
	}
	if len(out.Plan.Panels) == 0 {
		t.Error("plan was not built")
	}
	if sess.Last() != out {
		t.Error("outcome not recorded as last")
	}
}

func TestResubmitCancelsInFlight(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeScript)

	first := sess.Submit(context.Background(), "a = 1")
	exec.next(t) // hold the first call open

	second := sess.Submit(context.Background(), "b = 2")
	// Cancelling the first context resolves its call without a release.
	out := first.Wait()
	if !out.Cancelled() {
		t.Fatalf("first run should be cancelled, got err %v", out.Err)
	}

	exec.next(t).release <- &protocol.ExecutionResponse{Stdout: "done\n"}
	if got := second.Wait(); got.Err != nil {
		t.Fatalf("second run failed: %v", got.Err)
	}
	if sess.Last().Response.Stdout != "done\n" {
		t.Error("second outcome should be the session's last")
	}
}

func TestLateResponseNeverOverwritesNewerState(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeScript)

	stale := sess.Submit(context.Background(), "slow()")
	staleCall := exec.next(t)

	fresh := sess.Submit(context.Background(), "fast()")
	freshCall := exec.next(t)
	freshCall.release <- &protocol.ExecutionResponse{Stdout: "fresh\n"}
	fresh.Wait()

	// The stale executor ignores its cancellation and answers anyway. Its
	// outcome resolves on the handle but must not displace the newer state.
	staleCall.release <- &protocol.ExecutionResponse{Stdout: "stale\n"}
	staleOut := stale.Wait()

	if staleOut.Response != nil && staleOut.Response.Stdout == "stale\n" {
		if sess.Last().Response.Stdout != "fresh\n" {
			t.Fatalf("stale response overwrote session state: %q", sess.Last().Response.Stdout)
		}
	}
	if sess.Last().Response.Stdout != "fresh\n" {
		t.Fatalf("last = %q, want fresh", sess.Last().Response.Stdout)
	}
}

func TestCancelIsNotRetried(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeScript)

	run := sess.Submit(context.Background(), "loop()")
	exec.next(t)
	sess.Cancel()

	out := run.Wait()
	if !out.Cancelled() {
		t.Fatalf("want cancelled outcome, got %v", out.Err)
	}
	// No second executor call may appear.
	select {
	case <-exec.calls:
		t.Fatal("cancelled run was retried")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNormalizeCancellationWrapsTransportError(t *testing.T) {
	exec := func(ctx context.Context, req protocol.ExecutionRequest) (*protocol.ExecutionResponse, error) {
		<-ctx.Done()
		// Transports tend to dress a cancelled request up as a network error.
		return nil, apperrors.New(apperrors.Transport, "connection reset")
	}
	sess := New(exec, prepare.ModeScript)

	ctx, cancel := context.WithCancel(context.Background())
	run := sess.Submit(ctx, "x = 1")
	cancel()

	if out := run.Wait(); !out.Cancelled() {
		t.Fatalf("want cancellation, got %v", out.Err)
	}
}

func TestFunctionModeMarksWrapped(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeFunction)

	run := sess.Submit(context.Background(), "return 1")
	call := exec.next(t)
	if call.req.Script == "return 1" {
		t.Error("function mode must wrap the snippet before sending")
	}
	call.release <- &protocol.ExecutionResponse{Stdout: ""}

	if out := run.Wait(); !out.Wrapped {
		t.Error("outcome should record that wrapping was applied")
	}
}

func TestSetModeAndClear(t *testing.T) {
	exec := newBlockingExecutor()
	sess := New(exec.execute, prepare.ModeScript)

	sess.SetMode(prepare.ModeFunction)
	if sess.Mode() != prepare.ModeFunction {
		t.Errorf("mode = %q", sess.Mode())
	}

	run := sess.Submit(context.Background(), "x = 1")
	exec.next(t).release <- &protocol.ExecutionResponse{}
	run.Wait()

	if sess.Last() == nil {
		t.Fatal("no outcome recorded")
	}
	sess.Clear()
	if sess.Last() != nil {
		t.Error("Clear must drop the held outcome")
	}
}
