// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements Update: keyboard handling, the send flow, and
// the streaming state machine. The flow for one accepted send is:
//
//	SubmitInputMsg -> user message appended ->
//	assistant placeholder appended -> stream goroutine started ->
//	StreamFragmentMsg (repeated, accumulator patched into the store) ->
//	StreamCompleteMsg (placeholder finalized, errors surfaced)
//
// A submit is rejected with a status hint, never queued, while a
// stream is live or no session is ready.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mcpchat-tui/internal/backend"
	"github.com/jeranaias/mcpchat-tui/internal/model"
	"github.com/jeranaias/mcpchat-tui/internal/session"
	"github.com/jeranaias/mcpchat-tui/internal/state"
	"github.com/jeranaias/mcpchat-tui/internal/ui/components"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitInputMsg:
		return m.handleSubmit(msg)

	case StreamFragmentMsg:
		return m.handleFragment(msg)

	case StreamCompleteMsg:
		return m.handleComplete(msg)

	case StreamTickMsg:
		return m.handleTick()

	case session.ReadyMsg:
		return m.handleSessionReady(msg)

	case session.FailedMsg:
		m.banner = components.NewErrorBanner(
			fmt.Sprintf("connection failed: %s (retrying in %s)", msg.Reason, msg.RetryIn),
			true,
		)
		return m, session.RetryCmd()

	case session.RetryMsg:
		return m, m.sessions.EnsureSession(context.Background())

	case session.StaleMsg:
		return m, nil

	case NewConversationMsg:
		m.store.CreateConversation()
		m.sessions.Reset()
		m.refreshViewport()
		return m, m.sessions.EnsureSession(context.Background())

	case CycleConversationMsg:
		m.cycleConversation()
		return m, nil

	case DeleteConversationMsg:
		deleted := m.store.Current().ID
		// A live stream into the deleted conversation is torn down
		// with it; its remaining messages arrive stale and are
		// dropped.
		if m.state == stateStreaming && m.streamingConvID == deleted {
			m.cancelMgr.cancel()
			m.state = stateReady
			m.streamingID = ""
			m.streamCh = nil
			m.status = ""
		}
		m.store.DeleteConversation(deleted)
		m.sessions.Reset()
		m.refreshViewport()
		return m, m.sessions.EnsureSession(context.Background())

	case ServersLoadedMsg:
		return m.handleServersLoaded(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.banner = components.NewErrorBanner("export failed: "+msg.Err.Error(), false)
		} else {
			m.banner = components.NewInfoBanner("exported to " + msg.Path)
		}
		return m, bannerExpireCmd()

	case BannerExpiredMsg:
		if m.banner.Expired(time.Now()) {
			m.banner = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelMgr.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		content := m.input.Value()
		m.input.Reset()
		return m, func() tea.Msg { return SubmitInputMsg{Content: content} }

	case key.Matches(msg, m.keys.Cancel):
		if m.state == stateStreaming {
			m.cancelMgr.cancel()
			m.status = "cancelling..."
			return m, nil
		}
		m.banner = nil
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		m.banner = nil
		return m, m.sessions.EnsureSession(context.Background())

	case key.Matches(msg, m.keys.NewConv):
		return m, func() tea.Msg { return NewConversationMsg{} }

	case key.Matches(msg, m.keys.NextConv):
		return m, func() tea.Msg { return CycleConversationMsg{} }

	case key.Matches(msg, m.keys.DelConv):
		return m, func() tea.Msg { return DeleteConversationMsg{} }

	case key.Matches(msg, m.keys.Servers):
		m.status = "refreshing servers..."
		return m, m.refreshServersCmd()

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.store.Current())

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	return m.updateChildren(msg)
}

// =============================================================================
// SEND FLOW
// =============================================================================

func (m *Model) handleSubmit(msg SubmitInputMsg) (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return m, nil
	}

	// One stream at a time. The rejected input stays available in the
	// status hint rather than silently vanishing.
	if m.state == stateStreaming {
		m.status = "still responding, wait for the reply to finish"
		return m, nil
	}

	// No session yet: the submit is rejected outright, same as the
	// busy case above. Queueing would let a later submit clobber an
	// earlier one. Establishment is kicked so a retry can succeed.
	if m.sessions.State() != session.StateReady {
		m.status = "not connected yet, try again in a moment"
		return m, m.sessions.EnsureSession(context.Background())
	}

	conv := m.store.Current()
	m.store.AddMessage(conv.ID, model.NewUserMessage(content))
	m.refreshViewport()

	return m, m.beginStream(content)
}

// beginStream appends the assistant placeholder and starts the stream
// goroutine. The caller has already verified the session is ready.
func (m *Model) beginStream(content string) tea.Cmd {
	sessionID, ok := m.sessions.SessionID()
	if !ok {
		// Session vanished between the check and the send. Re-arm.
		m.status = "connection lost, try again in a moment"
		return m.sessions.EnsureSession(context.Background())
	}

	conv := m.store.Current()
	placeholder := model.NewAssistantMessage()
	m.store.AddMessage(conv.ID, placeholder)

	m.state = stateStreaming
	m.streamingID = placeholder.ID
	m.streamingConvID = conv.ID
	m.assembled.Reset()
	m.tw.reset()
	m.status = ""
	m.refreshViewport()

	cmds := []tea.Cmd{
		m.startStream(sessionID, content, placeholder.ID),
		m.spin.Tick,
	}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd(m.cfg.UI.TypewriterFPS))
	}
	return tea.Batch(cmds...)
}

// handleFragment folds one fragment into the accumulator and patches
// the full accumulated content into the store, so the stored message
// is always the complete response so far.
func (m *Model) handleFragment(msg StreamFragmentMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingID {
		// Fragment from a superseded stream. Drop it.
		return m, nil
	}

	m.assembled.WriteString(msg.Fragment)
	full := m.assembled.String()
	m.store.PatchMessage(m.streamingConvID, msg.MessageID, state.MessagePatch{Content: &full})
	m.tw.setTarget(full)
	m.refreshViewport()

	return m, waitForStream(m.streamCh)
}

// handleComplete finalizes the placeholder and surfaces any error.
func (m *Model) handleComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingID {
		return m, nil
	}

	m.cancelMgr.cancel()
	m.state = stateReady
	m.streamingID = ""
	m.streamCh = nil
	m.status = ""

	final := m.assembled.String()
	notStreaming := false

	if msg.Err == nil {
		m.store.PatchMessage(m.streamingConvID, msg.MessageID, state.MessagePatch{
			Content:     &final,
			IsStreaming: &notStreaming,
		})
		m.tw.finish()
		m.refreshViewport()
		return m, nil
	}

	var cmds []tea.Cmd

	switch {
	case errors.Is(msg.Err, context.Canceled):
		// User cancelled. Keep whatever arrived, note the cut.
		if final == "" {
			m.store.DeleteMessage(m.streamingConvID, msg.MessageID)
		} else {
			m.store.PatchMessage(m.streamingConvID, msg.MessageID, state.MessagePatch{
				Content:     &final,
				IsStreaming: &notStreaming,
			})
		}
		m.store.AddMessage(m.streamingConvID, model.NewSystemMessage("Response cancelled."))

	case backend.IsSessionError(msg.Err):
		// Session went stale on the backend. Keep the partial, re-arm
		// the session so the next send gets a fresh one.
		m.finalizeOrDiscard(msg.MessageID, final, notStreaming)
		m.store.AddMessage(m.streamingConvID, model.NewSystemMessage("Session expired: "+msg.Err.Error()))
		m.sessions.Reset()
		m.banner = components.NewErrorBanner("session expired, reconnecting", true)
		cmds = append(cmds, m.sessions.EnsureSession(context.Background()))

	default:
		m.finalizeOrDiscard(msg.MessageID, final, notStreaming)
		m.store.AddMessage(m.streamingConvID, model.NewSystemMessage("Response interrupted: "+msg.Err.Error()))
		m.banner = components.NewErrorBanner(msg.Err.Error(), false)
	}

	m.logger.Warn().Err(msg.Err).Str("message_id", msg.MessageID).Msg("stream ended with error")
	m.tw.finish()
	m.refreshViewport()
	return m, tea.Batch(cmds...)
}

// finalizeOrDiscard keeps the placeholder with its partial content, or
// removes it entirely when the stream died before producing anything.
func (m *Model) finalizeOrDiscard(messageID, content string, notStreaming bool) {
	if content == "" {
		m.store.DeleteMessage(m.streamingConvID, messageID)
		return
	}
	m.store.PatchMessage(m.streamingConvID, messageID, state.MessagePatch{
		Content:     &content,
		IsStreaming: &notStreaming,
	})
}

// =============================================================================
// TYPEWRITER AND SESSION
// =============================================================================

func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	more := m.tw.advance()
	m.refreshViewport()

	// Keep ticking while streaming or while revealed text lags the
	// accumulated content.
	if m.state == stateStreaming || more {
		return m, streamTickCmd(m.cfg.UI.TypewriterFPS)
	}
	m.ticking = false
	return m, nil
}

func (m *Model) handleSessionReady(msg session.ReadyMsg) (tea.Model, tea.Cmd) {
	m.banner = nil
	m.status = ""
	m.logger.Info().Str("session_id", msg.SessionID).Msg("session ready")
	return m, nil
}

func (m *Model) handleServersLoaded(msg ServersLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn().Err(msg.Err).Msg("server list refresh failed")
		m.status = "server list unavailable"
		return m, nil
	}

	servers := make([]model.MCPServer, 0, len(msg.Servers))
	for _, srv := range msg.Servers {
		servers = append(servers, model.MCPServer{
			Name:      srv.Name,
			Connected: srv.Connected,
		})
	}
	m.store.SetServers(servers)
	m.status = ""
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// cycleConversation switches to the next conversation in creation
// order, wrapping around. A single conversation is a no-op.
func (m *Model) cycleConversation() {
	convs := m.store.Conversations()
	if len(convs) < 2 {
		return
	}
	current := m.store.Current().ID
	for i, conv := range convs {
		if conv.ID == current {
			m.store.SetCurrent(convs[(i+1)%len(convs)].ID)
			break
		}
	}
	m.sessions.Reset()
	m.refreshViewport()
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.sized = true

	m.theme.SetWidth(msg.Width)
	m.viewport.Width = msg.Width
	m.viewport.Height = max(msg.Height-chromeHeight, 3)
	m.input.Width = max(msg.Width-6, 10)
	m.rebuildMarkdown(msg.Width - 2)
	m.refreshViewport()
	return m, nil
}

// updateChildren forwards unhandled messages to the focused child
// components.
func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func bannerExpireCmd() tea.Cmd {
	return tea.Tick(components.InfoBannerDuration, func(time.Time) tea.Msg {
		return BannerExpiredMsg{}
	})
}
