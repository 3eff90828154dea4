// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// fakeCreator counts creation requests and returns scripted results.
type fakeCreator struct {
	calls atomic.Int32
	mu    sync.Mutex
	errs  []error // consumed in order; nil means success
}

func (f *fakeCreator) CreateSession(ctx context.Context) (string, error) {
	n := f.calls.Add(1)

	f.mu.Lock()
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	_ = n
	return "sess-test", nil
}

func newTestManager(creator *fakeCreator) *Manager {
	return NewManager(creator, zerolog.Nop())
}

func TestEnsureSessionSuccess(t *testing.T) {
	creator := &fakeCreator{}
	m := newTestManager(creator)

	cmd := m.EnsureSession(context.Background())
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if m.State() != StateConnecting {
		t.Errorf("state = %v, want connecting", m.State())
	}

	msg := cmd()
	ready, ok := msg.(ReadyMsg)
	if !ok {
		t.Fatalf("msg type = %T, want ReadyMsg", msg)
	}
	if ready.SessionID != "sess-test" {
		t.Errorf("session id = %q", ready.SessionID)
	}
	if m.State() != StateReady {
		t.Errorf("state = %v, want ready", m.State())
	}
}

func TestEnsureSessionIdempotent(t *testing.T) {
	creator := &fakeCreator{}
	m := newTestManager(creator)

	// First call starts the attempt; a second call while it is
	// outstanding must not start another.
	cmd1 := m.EnsureSession(context.Background())
	cmd2 := m.EnsureSession(context.Background())
	if cmd2 != nil {
		t.Error("second EnsureSession during Connecting should return nil")
	}

	cmd1()

	// After success, EnsureSession reports the existing session without
	// a new request.
	cmd3 := m.EnsureSession(context.Background())
	if cmd3 == nil {
		t.Fatal("expected an immediate ready command")
	}
	if msg, ok := cmd3().(ReadyMsg); !ok || msg.SessionID != "sess-test" {
		t.Errorf("msg = %#v", msg)
	}

	if got := creator.calls.Load(); got != 1 {
		t.Errorf("creation requests = %d, want exactly 1", got)
	}
}

func TestEnsureSessionFailureSchedulesRetry(t *testing.T) {
	creator := &fakeCreator{errs: []error{errors.New("connection refused")}}
	m := newTestManager(creator)

	msg := m.EnsureSession(context.Background())()
	failed, ok := msg.(FailedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want FailedMsg", msg)
	}
	if failed.RetryIn != RetryDelay {
		t.Errorf("RetryIn = %v, want %v", failed.RetryIn, RetryDelay)
	}
	if m.State() != StateFailed {
		t.Errorf("state = %v, want failed", m.State())
	}
	if m.LastError() == "" {
		t.Error("last error should be recorded")
	}

	// The retry path goes through EnsureSession again and succeeds.
	msg = m.EnsureSession(context.Background())()
	if _, ok := msg.(ReadyMsg); !ok {
		t.Fatalf("retry msg type = %T, want ReadyMsg", msg)
	}
	if m.State() != StateReady {
		t.Errorf("state = %v, want ready", m.State())
	}
	if got := creator.calls.Load(); got != 2 {
		t.Errorf("creation requests = %d, want 2", got)
	}
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	creator := &fakeCreator{}
	m := newTestManager(creator)

	cmd := m.EnsureSession(context.Background())

	// Conversation context changes before the attempt lands.
	m.Reset()

	msg := cmd()
	if _, ok := msg.(StaleMsg); !ok {
		t.Fatalf("msg type = %T, want StaleMsg", msg)
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle after reset", m.State())
	}
	if _, ready := m.SessionID(); ready {
		t.Error("stale result must not mark the manager ready")
	}
}

func TestConcurrentEnsureSessionSingleFlight(t *testing.T) {
	creator := &fakeCreator{}
	m := newTestManager(creator)

	// Race many callers against one manager. Commands returned after the
	// first attempt completes are immediate ReadyMsg replays; only the
	// single Connecting transition may hit the creator before then.
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cmd := m.EnsureSession(context.Background()); cmd != nil {
				cmd()
			}
		}()
	}
	wg.Wait()

	if got := creator.calls.Load(); got != 1 {
		t.Errorf("creation requests = %d, want exactly 1", got)
	}
	if m.State() != StateReady {
		t.Errorf("state = %v, want ready", m.State())
	}
}

func TestGetStatus(t *testing.T) {
	creator := &fakeCreator{errs: []error{errors.New("boom")}}
	m := newTestManager(creator)

	m.EnsureSession(context.Background())()

	status := m.GetStatus()
	if status.State != StateFailed || status.Attempts != 1 || status.LastError != "boom" {
		t.Errorf("status = %+v", status)
	}
}
