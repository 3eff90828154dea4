// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/mcpchat-tui/internal/model"
)

// =============================================================================
// RECORD NAMES
// =============================================================================

// Record names. Each is one row in the records table.
const (
	RecordConversations = "conversations"
	RecordServers       = "mcp_servers"
	RecordModelConfig   = "model_config"
	RecordCurrentID     = "current_conversation"
)

// ErrRecordNotFound is returned when a named record has never been
// written. Use errors.Is(err, ErrRecordNotFound) to check.
var ErrRecordNotFound = errors.New("record not found")

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordStore persists named JSON records in a SQLite database.
type RecordStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open creates or opens the record store at the given path. Parent
// directories are created as needed and the schema is applied on first
// use.
func Open(path string, logger zerolog.Logger) (*RecordStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// RELIABILITY: WAL mode keeps reads working while the synchronous
	// post-mutation writes land.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &RecordStore{
		db:     db,
		logger: logger.With().Str("component", "storage").Logger(),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug().Str("path", path).Msg("record store opened")
	return s, nil
}

// Close releases the underlying database handle.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// createSchema creates the records table if it does not exist.
func (s *RecordStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			name       TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		)`)
	return err
}

// =============================================================================
// GENERIC LOAD / SAVE
// =============================================================================

// saveRecord marshals v and overwrites the named record. Writes are
// last-writer-wins; there is no merge.
func (s *RecordStore) saveRecord(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", name, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO records (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", name, err)
	}
	return nil
}

// loadRecord reads the named record into v. Returns ErrRecordNotFound
// if the record has never been written.
func (s *RecordStore) loadRecord(name string, v any) error {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM records WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load record %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal record %s: %w", name, err)
	}
	return nil
}

// =============================================================================
// TYPED RECORD ACCESS
// =============================================================================

// SaveConversations overwrites the conversation list record.
func (s *RecordStore) SaveConversations(convs []*model.Conversation) error {
	return s.saveRecord(RecordConversations, convs)
}

// LoadConversations reads the conversation list record. A missing
// record yields an empty list, not an error.
func (s *RecordStore) LoadConversations() ([]*model.Conversation, error) {
	var convs []*model.Conversation
	if err := s.loadRecord(RecordConversations, &convs); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []*model.Conversation{}, nil
		}
		return nil, err
	}
	return convs, nil
}

// SaveServers overwrites the MCP server list record.
func (s *RecordStore) SaveServers(servers []model.MCPServer) error {
	return s.saveRecord(RecordServers, servers)
}

// LoadServers reads the MCP server list record.
func (s *RecordStore) LoadServers() ([]model.MCPServer, error) {
	var servers []model.MCPServer
	if err := s.loadRecord(RecordServers, &servers); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []model.MCPServer{}, nil
		}
		return nil, err
	}
	return servers, nil
}

// SaveModelConfig overwrites the model configuration record.
func (s *RecordStore) SaveModelConfig(cfg model.ModelConfig) error {
	return s.saveRecord(RecordModelConfig, cfg)
}

// LoadModelConfig reads the model configuration record. A missing
// record yields the zero config.
func (s *RecordStore) LoadModelConfig() (model.ModelConfig, error) {
	var cfg model.ModelConfig
	if err := s.loadRecord(RecordModelConfig, &cfg); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.ModelConfig{}, nil
		}
		return model.ModelConfig{}, err
	}
	return cfg, nil
}

// SaveCurrentID overwrites the current conversation id record. An empty
// id is valid and means "none".
func (s *RecordStore) SaveCurrentID(id string) error {
	return s.saveRecord(RecordCurrentID, id)
}

// LoadCurrentID reads the current conversation id record.
func (s *RecordStore) LoadCurrentID() (string, error) {
	var id string
	if err := s.loadRecord(RecordCurrentID, &id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}
