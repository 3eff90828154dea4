// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the typewriter reveal used while a response
// streams in. The authoritative message content is updated in full on
// every fragment; the typewriter only controls how much of that
// content the view shows, advancing a few runes per frame at a capped
// rate. Because fragments usually arrive faster than the reveal, the
// animation stays smooth even when the stream is bursty, and when the
// stream finishes the remaining text snaps into place.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TYPEWRITER
// =============================================================================

const (
	// defaultRevealStep is how many runes each tick reveals. At 30fps
	// this is roughly 240 runes per second, comfortably ahead of
	// reading speed but slow enough to look like typing.
	defaultRevealStep = 8

	defaultRevealFPS = 30
)

// typewriter tracks how much of the streaming message the view shows.
// It lives entirely inside the Update loop, so no locking is needed.
type typewriter struct {
	target   []rune
	revealed int
	step     int
	enabled  bool
}

func newTypewriter(enabled bool) *typewriter {
	return &typewriter{step: defaultRevealStep, enabled: enabled}
}

// setTarget replaces the full content the reveal is advancing toward.
// Content only ever grows during a stream, so the revealed prefix
// stays valid.
func (tw *typewriter) setTarget(content string) {
	tw.target = []rune(content)
	if !tw.enabled {
		tw.revealed = len(tw.target)
	}
	if tw.revealed > len(tw.target) {
		tw.revealed = len(tw.target)
	}
}

// advance reveals the next chunk. Returns true while more remains.
func (tw *typewriter) advance() bool {
	if tw.revealed >= len(tw.target) {
		return false
	}
	tw.revealed += tw.step
	if tw.revealed > len(tw.target) {
		tw.revealed = len(tw.target)
	}
	return tw.revealed < len(tw.target)
}

// visible returns the revealed prefix of the target content.
func (tw *typewriter) visible() string {
	if tw.revealed >= len(tw.target) {
		return string(tw.target)
	}
	return string(tw.target[:tw.revealed])
}

// done reports whether the full target is revealed.
func (tw *typewriter) done() bool {
	return tw.revealed >= len(tw.target)
}

// finish reveals everything immediately.
func (tw *typewriter) finish() {
	tw.revealed = len(tw.target)
}

// reset clears the typewriter for a new stream.
func (tw *typewriter) reset() {
	tw.target = nil
	tw.revealed = 0
}

// =============================================================================
// TICK COMMAND
// =============================================================================

// streamTickCmd schedules the next typewriter frame.
func streamTickCmd(fps int) tea.Cmd {
	if fps <= 0 || fps > 60 {
		fps = defaultRevealFPS
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
