// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
)

func TestTypewriterRevealsGradually(t *testing.T) {
	tw := newTypewriter(true)
	tw.setTarget(strings.Repeat("a", 20))

	if tw.visible() != "" {
		t.Errorf("expected nothing revealed before the first tick, got %q", tw.visible())
	}

	more := tw.advance()
	if !more {
		t.Error("expected more content after one tick")
	}
	if got := len(tw.visible()); got != defaultRevealStep {
		t.Errorf("expected %d runes revealed, got %d", defaultRevealStep, got)
	}

	// Advance until done; the reveal must land exactly on the target.
	for tw.advance() {
	}
	if tw.visible() != strings.Repeat("a", 20) {
		t.Errorf("expected full content revealed, got %q", tw.visible())
	}
	if !tw.done() {
		t.Error("expected typewriter done")
	}
}

func TestTypewriterGrowingTarget(t *testing.T) {
	tw := newTypewriter(true)
	tw.setTarget("Hello")
	tw.finish()

	// New fragments extend the target; the revealed prefix stays put.
	tw.setTarget("Hello, world")
	if tw.visible() != "Hello" {
		t.Errorf("expected revealed prefix preserved, got %q", tw.visible())
	}
	if tw.done() {
		t.Error("expected more to reveal after target grew")
	}
}

func TestTypewriterDisabledRevealsImmediately(t *testing.T) {
	tw := newTypewriter(false)
	tw.setTarget("full response text")
	if tw.visible() != "full response text" {
		t.Errorf("disabled typewriter should show everything, got %q", tw.visible())
	}
	if tw.advance() {
		t.Error("disabled typewriter should have nothing to advance")
	}
}

func TestTypewriterReset(t *testing.T) {
	tw := newTypewriter(true)
	tw.setTarget("previous stream")
	tw.finish()

	tw.reset()
	if tw.visible() != "" || !tw.done() {
		t.Errorf("expected empty typewriter after reset, got %q", tw.visible())
	}
}

func TestTypewriterMultibyte(t *testing.T) {
	tw := newTypewriter(true)
	tw.setTarget("héllo wörld émoji 🎉 end")

	// Advancing must never split a rune.
	for tw.advance() {
		if strings.ContainsRune(tw.visible(), '�') {
			t.Fatalf("revealed prefix contains a broken rune: %q", tw.visible())
		}
	}
	if tw.visible() != "héllo wörld émoji 🎉 end" {
		t.Errorf("unexpected final content: %q", tw.visible())
	}
}
