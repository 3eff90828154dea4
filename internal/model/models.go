// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// MCP SERVER DESCRIPTOR
// =============================================================================

// TransportType identifies how an MCP server is reached.
type TransportType string

const (
	TransportHTTP  TransportType = "http"
	TransportStdio TransportType = "stdio"
)

// MCPServer describes a tool server the backend may dispatch to. The
// client only stores and displays these; the backend resolves tool calls
// internally.
type MCPServer struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	URL           string            `json:"url,omitempty"`
	Command       string            `json:"command,omitempty"`
	Args          []string          `json:"args,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	TransportType TransportType     `json:"transport_type"`
	Connected     bool              `json:"connected,omitempty"`
}

// =============================================================================
// MODEL CONFIGURATION
// =============================================================================

// ModelConfig holds the language-model settings the user picked. Stored
// as one record; the backend consumes it out of band.
type ModelConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}
