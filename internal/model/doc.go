// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// MCP server descriptors, and model configuration.
//
// These types are pure data: ownership and mutation rules live in the
// state package, persistence in the storage package.
package model
