// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the mcpchat TUI.
//
// The package stays dependency-light: atomic file writes for durable
// artifacts and rune/width-aware string helpers used by the UI and
// storage layers.
package util
