// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable record store for mcpchat.
//
// Four independent named records are persisted: the conversation list,
// the MCP server list, the model configuration, and the current
// conversation id. Each is an opaque JSON blob keyed by name in a
// single SQLite table, loaded once at startup and overwritten on every
// relevant mutation. The package is pure load/save; ownership of the
// in-memory model lives in the state package.
package storage
