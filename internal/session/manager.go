// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// RetryDelay is the fixed backoff between failed session creation
// attempts.
const RetryDelay = 3 * time.Second

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the session lifecycle state.
type State int

const (
	StateIdle       State = iota // No session, no attempt in flight
	StateConnecting              // Creation request outstanding
	StateReady                   // Session established
	StateFailed                  // Last attempt failed; retry scheduled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Creator issues session creation requests. Implemented by the backend
// client.
type Creator interface {
	CreateSession(ctx context.Context) (string, error)
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the backend session for the active conversation
// context.
type Manager struct {
	mu sync.Mutex

	creator Creator
	logger  zerolog.Logger

	state     State
	sessionID string
	lastErr   string
	attempts  int

	// generation fences stale creation results: Reset bumps it, and a
	// result committed under an old generation is discarded.
	generation uint64
}

// NewManager creates a session manager in the Idle state.
func NewManager(creator Creator, logger zerolog.Logger) *Manager {
	return &Manager{
		creator: creator,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// EnsureSession makes sure a session exists, idempotently.
//
// Ready: returns a command that immediately reports the existing id.
// Connecting: returns nil — exactly one creation request is ever in
// flight. Idle/Failed: transitions to Connecting and returns a command
// that performs the creation request and reports the outcome.
func (m *Manager) EnsureSession(ctx context.Context) tea.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateReady:
		id := m.sessionID
		return func() tea.Msg {
			return ReadyMsg{SessionID: id}
		}
	case StateConnecting:
		return nil
	}

	m.state = StateConnecting
	gen := m.generation
	return func() tea.Msg {
		return m.connect(ctx, gen)
	}
}

// connect performs one creation attempt and commits the outcome unless
// a Reset superseded it.
func (m *Manager) connect(ctx context.Context, gen uint64) tea.Msg {
	id, err := m.creator.CreateSession(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		m.logger.Debug().Msg("discarding stale session result")
		return StaleMsg{}
	}

	m.attempts++
	if err != nil {
		m.state = StateFailed
		m.lastErr = err.Error()
		m.logger.Warn().Err(err).Int("attempts", m.attempts).Msg("session creation failed")
		return FailedMsg{Reason: err.Error(), RetryIn: RetryDelay}
	}

	m.state = StateReady
	m.sessionID = id
	m.lastErr = ""
	m.logger.Info().Str("session_id", id).Msg("session ready")
	return ReadyMsg{SessionID: id}
}

// Reset tears the session down and returns the manager to Idle. Called
// when the active conversation context changes or is destroyed; any
// outstanding attempt's result is discarded.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.state = StateIdle
	m.sessionID = ""
	m.lastErr = ""
	m.attempts = 0
}

// =============================================================================
// READ ACCESS
// =============================================================================

// SessionID returns the current session id and whether it is ready.
func (m *Manager) SessionID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID, m.state == StateReady
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the most recent failure reason, if any.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Status is a point-in-time snapshot for display.
type Status struct {
	State     State
	SessionID string
	LastError string
	Attempts  int
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:     m.state,
		SessionID: m.sessionID,
		LastError: m.lastErr,
		Attempts:  m.attempts,
	}
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ReadyMsg reports an established session.
type ReadyMsg struct {
	SessionID string
}

// FailedMsg reports a failed creation attempt. The UI shows the reason
// and schedules RetryCmd.
type FailedMsg struct {
	Reason  string
	RetryIn time.Duration
}

// RetryMsg fires when the retry backoff elapses.
type RetryMsg struct {
	Time time.Time
}

// StaleMsg reports a creation result that lost a race with Reset. The
// UI ignores it.
type StaleMsg struct{}

// RetryCmd returns a command that fires RetryMsg after the fixed retry
// delay.
func RetryCmd() tea.Cmd {
	return tea.Tick(RetryDelay, func(t time.Time) tea.Msg {
		return RetryMsg{Time: t}
	})
}
