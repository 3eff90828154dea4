// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file holds the tea.Cmd constructors: starting a response
// stream, pumping its channel, refreshing the server list, and
// exporting a conversation.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mcpchat-tui/internal/config"
	"github.com/jeranaias/mcpchat-tui/internal/model"
	"github.com/jeranaias/mcpchat-tui/internal/util"
)

// streamChannelSize buffers fragments so a bursty stream never blocks
// the goroutine on the Update loop.
const streamChannelSize = 64

// serverRefreshTimeout bounds the MCP server list fetch.
const serverRefreshTimeout = 10 * time.Second

// =============================================================================
// STREAMING COMMANDS
// =============================================================================

// startStream launches the stream goroutine for an already-created
// assistant placeholder and returns the command that pumps its first
// message. The goroutine owns the channel and closes it when the
// stream ends, so waitForStream sees a clean shutdown.
func (m *Model) startStream(sessionID, content, messageID string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	ch := make(chan tea.Msg, streamChannelSize)
	m.streamCh = ch

	client := m.client
	go func() {
		err := client.StreamChat(ctx, sessionID, content, func(fragment string) {
			ch <- StreamFragmentMsg{MessageID: messageID, Fragment: fragment}
		})
		ch <- StreamCompleteMsg{MessageID: messageID, Err: err}
		close(ch)
	}()

	return waitForStream(ch)
}

// waitForStream returns a command that delivers the next message from
// the stream channel. The fragment handler re-issues it, so the
// channel is pumped one message per Update cycle, preserving order.
func waitForStream(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// =============================================================================
// SERVER COMMANDS
// =============================================================================

// refreshServersCmd fetches the MCP server list from the backend.
func (m *Model) refreshServersCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), serverRefreshTimeout)
		defer cancel()
		servers, err := client.ListServers(ctx)
		return ServersLoadedMsg{Servers: servers, Err: err}
	}
}

// =============================================================================
// EXPORT COMMANDS
// =============================================================================

// exportCmd writes the conversation to a markdown file under the
// exports directory. The write is atomic so a crash never leaves a
// half-written export.
func exportCmd(conv *model.Conversation) tea.Cmd {
	return func() tea.Msg {
		base, err := config.Dir()
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		dir := filepath.Join(base, "exports")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ExportDoneMsg{Err: err}
		}

		path := filepath.Join(dir, fmt.Sprintf("conversation-%s.md", conv.ID))
		data := []byte(conv.ExportMarkdown())
		if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}
