// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the shared lipgloss palette and theme used by
// the terminal UI. Colors are adaptive so the interface stays readable
// on both light and dark terminal backgrounds.
package styles
