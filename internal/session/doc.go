// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the backend session lifecycle.
//
// A session is a backend-assigned token scoping a sequence of chat
// turns. The manager is an explicit state machine (Idle, Connecting,
// Ready, Failed) with a single-flight guard: concurrent EnsureSession
// calls never issue duplicate creation requests. Failures schedule a
// fixed-delay retry and surface as an error string, never a panic.
// Sessions live for the process only; a fresh one is established on
// every start.
package session
