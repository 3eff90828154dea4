// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// mcpchat.
//
// Configuration is TOML at ~/.mcpchat/config.toml with built-in
// defaults and environment variable overrides. A watcher can reload
// the file on change so a running TUI picks up a new backend URL
// without restarting.
package config
