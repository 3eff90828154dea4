// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Streaming: fragment delivery, completion, and the typewriter tick
//   - Input: user input submission
//   - Conversation: create, switch, and delete
//   - Servers: MCP server list refresh results
//   - Export: conversation export results
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/mcpchat-tui/internal/backend"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamFragmentMsg delivers one decoded payload fragment from the
// response stream. MessageID identifies the assistant placeholder the
// fragment belongs to; fragments for a superseded stream are dropped.
type StreamFragmentMsg struct {
	MessageID string
	Fragment  string
}

// StreamCompleteMsg signals that the stream goroutine finished, cleanly
// or otherwise. Err is nil on a clean [DONE]-terminated stream.
type StreamCompleteMsg struct {
	MessageID string
	Err       error
}

// StreamTickMsg drives the typewriter reveal animation.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// INPUT MESSAGES
// =============================================================================

// SubmitInputMsg signals that the user submitted input.
type SubmitInputMsg struct {
	Content string
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// NewConversationMsg requests a fresh conversation.
type NewConversationMsg struct{}

// DeleteConversationMsg requests deletion of the current conversation.
type DeleteConversationMsg struct{}

// CycleConversationMsg switches to the next conversation in creation
// order, wrapping around.
type CycleConversationMsg struct{}

// =============================================================================
// SERVER AND EXPORT MESSAGES
// =============================================================================

// ServersLoadedMsg delivers the result of an MCP server list refresh.
type ServersLoadedMsg struct {
	Servers []backend.ServerStatus
	Err     error
}

// ExportDoneMsg reports the result of exporting the current
// conversation to a markdown file.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// BannerExpiredMsg clears a transient banner after its duration.
type BannerExpiredMsg struct{}
