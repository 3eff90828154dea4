// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/mcpchat-tui/internal/model"
	"github.com/jeranaias/mcpchat-tui/internal/storage"
)

// =============================================================================
// STATE STORE
// =============================================================================

// Store is the authoritative in-memory model of conversations plus the
// server list and model config. All access goes through its methods;
// the storage record store only mirrors it.
//
// Invariant: if any conversations exist, exactly one is current; if
// none exist, one is created on demand.
type Store struct {
	mu sync.Mutex

	conversations []*model.Conversation
	currentID     string
	servers       []model.MCPServer
	modelConfig   model.ModelConfig

	records *storage.RecordStore
	logger  zerolog.Logger
}

// NewStore loads the durable records and returns a ready store. The
// current-conversation invariant is established immediately: a pointer
// to a vanished conversation is repaired, and an empty store gets one
// fresh conversation.
func NewStore(records *storage.RecordStore, logger zerolog.Logger) (*Store, error) {
	convs, err := records.LoadConversations()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	servers, err := records.LoadServers()
	if err != nil {
		return nil, fmt.Errorf("failed to load servers: %w", err)
	}
	modelCfg, err := records.LoadModelConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load model config: %w", err)
	}
	currentID, err := records.LoadCurrentID()
	if err != nil {
		return nil, fmt.Errorf("failed to load current conversation id: %w", err)
	}

	s := &Store{
		conversations: convs,
		currentID:     currentID,
		servers:       servers,
		modelConfig:   modelCfg,
		records:       records,
		logger:        logger.With().Str("component", "state").Logger(),
	}

	s.mu.Lock()
	s.ensureCurrentLocked()
	s.mu.Unlock()

	return s, nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// CreateConversation adds a fresh empty conversation and makes it
// current. Returns the new conversation.
func (s *Store) CreateConversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.conversations = append(s.conversations, conv)
	s.currentID = conv.ID

	s.persistConversationsLocked()
	s.persistCurrentLocked()

	s.logger.Debug().Str("conversation_id", conv.ID).Msg("conversation created")
	return conv
}

// Conversations returns a snapshot of the conversation list in creation
// order.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Current returns the current conversation. If the store is empty a new
// conversation is created automatically so the caller always gets one.
func (s *Store) Current() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCurrentLocked()
	return s.findLocked(s.currentID)
}

// SetCurrent switches the current conversation. Unknown ids are a
// logged no-op.
func (s *Store) SetCurrent(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(conversationID) == nil {
		s.logger.Warn().Str("conversation_id", conversationID).Msg("set current: conversation not found")
		return
	}
	s.currentID = conversationID
	s.persistCurrentLocked()
}

// AddMessage appends a message to the named conversation, assigning an
// id and timestamp if absent. A vanished conversation is a logged
// no-op: the stream that produced the message may have outlived a
// concurrent delete.
func (s *Store) AddMessage(conversationID string, msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		s.logger.Warn().Str("conversation_id", conversationID).Msg("add message: conversation not found")
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	conv.AddMessage(msg)
	s.persistConversationsLocked()
}

// MessagePatch is a partial message update. Nil fields are preserved;
// a provided Content fully replaces the prior content.
type MessagePatch struct {
	Content     *string
	IsStreaming *bool
}

// PatchMessage merges the patch into the identified message. Unknown
// conversation or message ids are logged no-ops.
func (s *Store) PatchMessage(conversationID, messageID string, patch MessagePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		s.logger.Warn().Str("conversation_id", conversationID).Msg("patch message: conversation not found")
		return
	}
	msg := conv.FindMessage(messageID)
	if msg == nil {
		s.logger.Warn().
			Str("conversation_id", conversationID).
			Str("message_id", messageID).
			Msg("patch message: message not found")
		return
	}

	if patch.Content != nil {
		msg.Content = *patch.Content
	}
	if patch.IsStreaming != nil {
		msg.IsStreaming = *patch.IsStreaming
	}
	conv.UpdatedAt = time.Now()

	s.persistConversationsLocked()
}

// DeleteMessage removes a message from the named conversation. Unknown
// conversation or message ids are logged no-ops. Used to discard an
// assistant placeholder when its stream failed before producing any
// content.
func (s *Store) DeleteMessage(conversationID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		s.logger.Warn().Str("conversation_id", conversationID).Msg("delete message: conversation not found")
		return
	}

	for i, msg := range conv.Messages {
		if msg.ID == messageID {
			conv.Messages = append(conv.Messages[:i], conv.Messages[i+1:]...)
			conv.UpdatedAt = time.Now()
			s.persistConversationsLocked()
			return
		}
	}
	s.logger.Warn().
		Str("conversation_id", conversationID).
		Str("message_id", messageID).
		Msg("delete message: message not found")
}

// DeleteConversation removes a conversation. If it was current, the
// most recently created remaining conversation becomes current, or
// none remain and the pointer clears until the next access recreates
// one.
func (s *Store) DeleteConversation(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == conversationID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.logger.Warn().Str("conversation_id", conversationID).Msg("delete: conversation not found")
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if s.currentID == conversationID {
		s.currentID = ""
		if latest := s.latestLocked(); latest != nil {
			s.currentID = latest.ID
		}
		s.persistCurrentLocked()
	}

	s.persistConversationsLocked()
	s.logger.Debug().Str("conversation_id", conversationID).Msg("conversation deleted")
}

// =============================================================================
// SERVER LIST AND MODEL CONFIG
// =============================================================================

// Servers returns a snapshot of the MCP server list.
func (s *Store) Servers() []model.MCPServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MCPServer, len(s.servers))
	copy(out, s.servers)
	return out
}

// SetServers replaces the MCP server list, e.g. after refreshing it
// from the backend.
func (s *Store) SetServers(servers []model.MCPServer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers = servers
	if err := s.records.SaveServers(s.servers); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist server list")
	}
}

// AddServer appends a server descriptor, assigning an id if absent.
func (s *Store) AddServer(server model.MCPServer) model.MCPServer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if server.ID == "" {
		server.ID = uuid.NewString()
	}
	s.servers = append(s.servers, server)
	if err := s.records.SaveServers(s.servers); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist server list")
	}
	return server
}

// RemoveServer deletes a server descriptor by id. Unknown ids are a
// logged no-op.
func (s *Store) RemoveServer(serverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, srv := range s.servers {
		if srv.ID == serverID {
			s.servers = append(s.servers[:i], s.servers[i+1:]...)
			if err := s.records.SaveServers(s.servers); err != nil {
				s.logger.Error().Err(err).Msg("failed to persist server list")
			}
			return
		}
	}
	s.logger.Warn().Str("server_id", serverID).Msg("remove server: not found")
}

// ModelConfig returns the stored model configuration.
func (s *Store) ModelConfig() model.ModelConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelConfig
}

// SetModelConfig replaces the model configuration.
func (s *Store) SetModelConfig(cfg model.ModelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelConfig = cfg
	if err := s.records.SaveModelConfig(cfg); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist model config")
	}
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// ensureCurrentLocked repairs the current-conversation invariant. The
// caller must hold the lock.
func (s *Store) ensureCurrentLocked() {
	if s.currentID != "" && s.findLocked(s.currentID) != nil {
		return
	}

	if latest := s.latestLocked(); latest != nil {
		s.currentID = latest.ID
		s.persistCurrentLocked()
		return
	}

	conv := model.NewConversation()
	s.conversations = append(s.conversations, conv)
	s.currentID = conv.ID
	s.persistConversationsLocked()
	s.persistCurrentLocked()
	s.logger.Debug().Str("conversation_id", conv.ID).Msg("bootstrap conversation created")
}

// findLocked returns the conversation with the given id, or nil.
func (s *Store) findLocked(id string) *model.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// latestLocked returns the most recently created conversation, or nil.
func (s *Store) latestLocked() *model.Conversation {
	var latest *model.Conversation
	for _, conv := range s.conversations {
		if latest == nil || conv.CreatedAt.After(latest.CreatedAt) {
			latest = conv
		}
	}
	return latest
}

// persistConversationsLocked mirrors the conversation list to storage.
// Persistence failures are logged, not propagated: the in-memory model
// stays authoritative for the rest of the session.
func (s *Store) persistConversationsLocked() {
	if err := s.records.SaveConversations(s.conversations); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist conversations")
	}
}

// persistCurrentLocked mirrors the current conversation pointer.
func (s *Store) persistCurrentLocked() {
	if err := s.records.SaveCurrentID(s.currentID); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist current conversation id")
	}
}
