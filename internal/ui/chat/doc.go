// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the chat view: the Bubble Tea model that owns
// the conversation viewport, the input box, and the streaming send flow.
//
// The send flow is the heart of the package. A submit is only accepted
// when no stream is live and a backend session is ready; otherwise it
// is rejected with a status hint, never queued. An accepted submit
// appends the user message and starts a background goroutine that
// reads the SSE response stream. Fragments
// arrive on a channel and are folded into an accumulator; after every
// fragment the full accumulated text is written back to the state
// store, so the store always holds the complete response so far. A
// separate typewriter reveals the accumulated text gradually at a
// capped frame rate; it is purely presentational and never touches the
// stored content.
//
// Layout of this package:
//   - model.go:     Model struct, constructor, Init
//   - update.go:    Update and the send flow
//   - view.go:      View and message rendering (glamour for markdown)
//   - commands.go:  tea.Cmd constructors (stream, servers, export)
//   - messages.go:  Bubble Tea message types
//   - streaming.go: typewriter reveal state
//   - cancel.go:    thread-safe cancel function handling
//   - keys.go:      keyboard bindings
package chat
