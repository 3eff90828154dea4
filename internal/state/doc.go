// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the authoritative in-memory model of all
// conversations, the MCP server list, and the model configuration.
//
// Every mutation is atomic with respect to the in-memory model and is
// mirrored synchronously to the storage record store. Mutating a
// conversation that no longer exists is a logged no-op, never an error:
// deletion can race benignly with an in-flight stream.
package state
