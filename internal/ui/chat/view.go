// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements View. Finished assistant messages render
// through glamour; the in-flight message renders as plain text (the
// typewriter's visible prefix) because re-rendering markdown on every
// frame is wasteful and mid-markdown fragments render badly anyway.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mcpchat-tui/internal/model"
	"github.com/jeranaias/mcpchat-tui/internal/util"
)

// chromeHeight is the vertical space taken by everything that is not
// the viewport: header, input box with border, status bar.
const chromeHeight = 6

// View implements tea.Model.
func (m *Model) View() string {
	if !m.sized {
		return "starting..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.banner != nil {
		b.WriteString(m.banner.Render(m.theme, m.width))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) renderHeader() string {
	conv := m.store.Current()
	title := util.TruncateWidth(conv.Title, m.width-20)
	count := len(m.store.Conversations())

	left := m.theme.Header.Render("mcpchat")
	right := m.theme.Muted.Render(fmt.Sprintf("%s  [%d conversation(s)]", title, count))
	return lipgloss.JoinHorizontal(lipgloss.Center, left, " ", right)
}

func (m *Model) renderStatusBar() string {
	parts := []string{m.sessionIndicator()}

	connected := 0
	servers := m.store.Servers()
	for _, srv := range servers {
		if srv.Connected {
			connected++
		}
	}
	if len(servers) > 0 {
		parts = append(parts, fmt.Sprintf("servers %d/%d", connected, len(servers)))
	}

	if mc := m.store.ModelConfig(); mc.Model != "" {
		parts = append(parts, mc.Model)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.state == stateStreaming {
		parts = append(parts, m.spin.View()+" streaming")
	}

	return m.theme.StatusBar.Render(strings.Join(parts, "  |  "))
}

func (m *Model) sessionIndicator() string {
	return "session: " + m.sessions.State().String()
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport re-renders the conversation into the viewport and
// keeps it pinned to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	conv := m.store.Current()
	if len(conv.Messages) == 0 {
		return m.theme.Muted.Render("Send a message to start the conversation.")
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg *model.Message) string {
	label := m.roleLabel(msg.Role)
	stamp := m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	header := label + " " + stamp

	body := msg.Content
	switch {
	case msg.IsStreaming && msg.ID == m.streamingID:
		body = m.tw.visible()
		if body == "" {
			body = m.spin.View() + " thinking..."
		}
	case msg.Role == model.RoleAssistant:
		body = m.renderMarkdown(msg.Content)
	}

	return header + "\n" + m.theme.MessageBody.Render(body)
}

func (m *Model) roleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return m.theme.UserLabel.Render(role.DisplayName())
	case model.RoleAssistant:
		return m.theme.AssistantLabel.Render(role.DisplayName())
	default:
		return m.theme.SystemLabel.Render(role.DisplayName())
	}
}

// renderMarkdown renders assistant markdown, falling back to the raw
// text when the renderer is unavailable or chokes on the input.
func (m *Model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return content
	}
	out, err := m.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
