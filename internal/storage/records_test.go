// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/mcpchat-tui/internal/model"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcpchat.db")
	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissingRecords(t *testing.T) {
	s := openTestStore(t)

	convs, err := s.LoadConversations()
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("expected empty conversation list, got %d", len(convs))
	}

	servers, err := s.LoadServers()
	if err != nil {
		t.Fatalf("LoadServers: %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("expected empty server list, got %d", len(servers))
	}

	id, err := s.LoadCurrentID()
	if err != nil {
		t.Fatalf("LoadCurrentID: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty current id, got %q", id)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	s := openTestStore(t)

	conv := model.NewConversation()
	conv.AddMessage(model.NewUserMessage("hello"))
	asst := model.NewAssistantMessage()
	asst.Content = "hi there"
	asst.IsStreaming = true
	conv.AddMessage(asst)

	if err := s.SaveConversations([]*model.Conversation{conv}); err != nil {
		t.Fatalf("SaveConversations: %v", err)
	}

	loaded, err := s.LoadConversations()
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(loaded))
	}
	if loaded[0].ID != conv.ID {
		t.Errorf("id = %q, want %q", loaded[0].ID, conv.ID)
	}
	if len(loaded[0].Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded[0].Messages))
	}
	if loaded[0].Messages[1].Content != "hi there" {
		t.Errorf("content = %q", loaded[0].Messages[1].Content)
	}

	// IsStreaming is transient and must not survive persistence.
	if loaded[0].Messages[1].IsStreaming {
		t.Error("IsStreaming leaked into the durable record")
	}
}

func TestRecordOverwrite(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveCurrentID("first"); err != nil {
		t.Fatalf("SaveCurrentID: %v", err)
	}
	if err := s.SaveCurrentID("second"); err != nil {
		t.Fatalf("SaveCurrentID: %v", err)
	}

	id, err := s.LoadCurrentID()
	if err != nil {
		t.Fatalf("LoadCurrentID: %v", err)
	}
	if id != "second" {
		t.Errorf("current id = %q, want %q (last writer wins)", id, "second")
	}
}

func TestServerAndModelConfigRecords(t *testing.T) {
	s := openTestStore(t)

	servers := []model.MCPServer{
		{ID: "s1", Name: "search", URL: "http://localhost:9000", TransportType: model.TransportHTTP},
		{ID: "s2", Name: "files", Command: "mcp-files", Args: []string{"--root", "/tmp"}, TransportType: model.TransportStdio},
	}
	if err := s.SaveServers(servers); err != nil {
		t.Fatalf("SaveServers: %v", err)
	}

	loaded, err := s.LoadServers()
	if err != nil {
		t.Fatalf("LoadServers: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Command != "mcp-files" {
		t.Errorf("servers round-trip mismatch: %+v", loaded)
	}

	cfg := model.ModelConfig{Provider: "openai", Model: "gpt-4o", Temperature: 0.2}
	if err := s.SaveModelConfig(cfg); err != nil {
		t.Fatalf("SaveModelConfig: %v", err)
	}
	got, err := s.LoadModelConfig()
	if err != nil {
		t.Fatalf("LoadModelConfig: %v", err)
	}
	if got != cfg {
		t.Errorf("model config = %+v, want %+v", got, cfg)
	}
}

func TestRecordsAreIndependent(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveCurrentID("abc"); err != nil {
		t.Fatalf("SaveCurrentID: %v", err)
	}

	// Writing one record must not disturb another.
	if err := s.SaveServers([]model.MCPServer{{ID: "x", Name: "x"}}); err != nil {
		t.Fatalf("SaveServers: %v", err)
	}

	id, err := s.LoadCurrentID()
	if err != nil {
		t.Fatalf("LoadCurrentID: %v", err)
	}
	if id != "abc" {
		t.Errorf("current id = %q, want %q", id, "abc")
	}
}
