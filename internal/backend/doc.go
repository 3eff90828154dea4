// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the mcpchat backend.
//
// The backend exposes three endpoints the client consumes: session
// creation, the streamed chat endpoint, and the MCP server registry.
// The chat response arrives as newline-framed "data: " events over one
// long-lived response body; this package reassembles those frames into
// an ordered fragment callback sequence with no drops, duplicates, or
// reordering, regardless of how the transport chunks the bytes.
package backend
