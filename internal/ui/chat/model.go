// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Model struct that owns all chat view state,
// its constructor, and Init.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/jeranaias/mcpchat-tui/internal/backend"
	"github.com/jeranaias/mcpchat-tui/internal/config"
	"github.com/jeranaias/mcpchat-tui/internal/session"
	"github.com/jeranaias/mcpchat-tui/internal/state"
	"github.com/jeranaias/mcpchat-tui/internal/ui/components"
	"github.com/jeranaias/mcpchat-tui/internal/ui/styles"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// viewState tracks whether a response stream is in flight. While
// streaming, new submissions are rejected with a status hint instead of
// being queued.
type viewState int

const (
	stateReady viewState = iota
	stateStreaming
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	store    *state.Store
	sessions *session.Manager
	client   *backend.Client
	logger   zerolog.Logger
	cfg      *config.Config

	keys  KeyMap
	theme *styles.Theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width  int
	height int
	sized  bool

	// Streaming state. assembled is the authoritative accumulator for
	// the in-flight response; the state store is patched with its full
	// value after every fragment.
	state           viewState
	streamingID     string
	streamingConvID string
	assembled       strings.Builder
	tw              *typewriter
	ticking         bool
	cancelMgr       *cancelManager
	streamCh        chan tea.Msg

	banner *components.Banner
	status string

	markdown *glamour.TermRenderer
}

// New builds the chat view over the given collaborators. The config
// controls the typewriter; everything else is wired straight through.
func New(store *state.Store, sessions *session.Manager, client *backend.Client, cfg *config.Config, logger zerolog.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		store:     store,
		sessions:  sessions,
		client:    client,
		logger:    logger.With().Str("component", "chat").Logger(),
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		theme:     styles.NewTheme(80),
		viewport:  viewport.New(80, 20),
		input:     input,
		spin:      spin,
		tw:        newTypewriter(cfg.UI.Typewriter),
		cancelMgr: newCancelManager(),
	}
	m.spin.Style = m.theme.Spinner
	m.rebuildMarkdown(80)
	return m
}

// Init kicks off session establishment and the initial server refresh
// so the status bar is populated before the first send.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.sessions.EnsureSession(context.Background()),
		m.refreshServersCmd(),
		textinput.Blink,
	)
}

// rebuildMarkdown recreates the glamour renderer for a new wrap width.
// Glamour renderers are cheap enough to rebuild on resize.
func (m *Model) rebuildMarkdown(width int) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Warn().Err(err).Msg("markdown renderer unavailable, falling back to plain text")
		m.markdown = nil
		return
	}
	m.markdown = r
}
