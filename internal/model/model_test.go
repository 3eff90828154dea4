// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewConversation(t *testing.T) {
	conv := NewConversation()

	if conv.ID == "" {
		t.Error("conversation should have an ID")
	}
	if len(conv.Messages) != 0 {
		t.Error("new conversation should have no messages")
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewUserMessage("How do I\nparse SSE frames?"))

	if conv.Title != "How do I parse SSE frames?" {
		t.Errorf("title = %q", conv.Title)
	}

	// Title must stick once derived.
	conv.AddMessage(NewUserMessage("another question"))
	if conv.Title != "How do I parse SSE frames?" {
		t.Errorf("title changed to %q", conv.Title)
	}
}

func TestConversationTitleTruncated(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewUserMessage(strings.Repeat("x", 200)))

	if got := len([]rune(conv.Title)); got > TitleMaxLen {
		t.Errorf("title length = %d, want <= %d", got, TitleMaxLen)
	}
}

func TestStreamingMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewUserMessage("hi"))

	if conv.StreamingMessage() != nil {
		t.Error("no message should be streaming yet")
	}

	asst := NewAssistantMessage()
	conv.AddMessage(asst)

	got := conv.StreamingMessage()
	if got == nil || got.ID != asst.ID {
		t.Error("streaming message should be the assistant placeholder")
	}

	asst.IsStreaming = false
	if conv.StreamingMessage() != nil {
		t.Error("no message should be streaming after finalize")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage()
	if !msg.IsStreaming {
		t.Error("assistant placeholder should start streaming")
	}
	if msg.Content != "" {
		t.Error("assistant placeholder should start empty")
	}
	if msg.Role != RoleAssistant {
		t.Errorf("role = %q", msg.Role)
	}
}

func TestExportMarkdown(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(NewUserMessage("hello"))
	conv.AddMessage(NewMessage(RoleAssistant, "hi there"))

	md := conv.ExportMarkdown()
	if !strings.Contains(md, "**You**") || !strings.Contains(md, "**Assistant**") {
		t.Error("export missing role labels")
	}
	if !strings.Contains(md, "hi there") {
		t.Error("export missing message content")
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}
	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
