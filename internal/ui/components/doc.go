// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds small reusable UI widgets shared by the chat
// view, currently the dismissible error banner used for session and
// stream failures.
package components
