// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// ============================================================================
// THEME
// ============================================================================

// Theme bundles the pre-built lipgloss styles the chat view renders with.
// Build one with NewTheme and call SetWidth when the terminal resizes.
type Theme struct {
	width int

	// Chrome.
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	InputBox  lipgloss.Style

	// Message rendering.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	MessageBody    lipgloss.Style
	Timestamp      lipgloss.Style

	// Feedback.
	ErrorBanner lipgloss.Style
	WarnBanner  lipgloss.Style
	Muted       lipgloss.Style
	Spinner     lipgloss.Style
}

// NewTheme builds the default theme sized for the given terminal width.
func NewTheme(width int) *Theme {
	t := &Theme{width: width}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Surface).
		Padding(0, 1)

	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(Amber)
	t.MessageBody = lipgloss.NewStyle().Foreground(Text)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.ErrorBanner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.WarnBanner = lipgloss.NewStyle().
		Foreground(Amber).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 1)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Emerald)
}

// SetWidth resizes width-dependent styles. Safe to call on every resize.
func (t *Theme) SetWidth(width int) {
	if width == t.width {
		return
	}
	t.width = width
	t.StatusBar = t.StatusBar.Width(width)
	t.InputBox = t.InputBox.Width(width - 2)
}

// Width returns the terminal width the theme was last sized for.
func (t *Theme) Width() int { return t.width }
