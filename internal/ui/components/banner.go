// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/mcpchat-tui/internal/ui/styles"
)

// ============================================================================
// ERROR BANNER
// ============================================================================

// BannerKind selects the banner's styling and default behavior.
type BannerKind int

const (
	BannerError BannerKind = iota
	BannerWarning
	BannerInfo
)

// Banner is a dismissible notification rendered above the input box.
// Error banners stay up until dismissed; info banners expire on their own.
type Banner struct {
	Message   string
	Kind      BannerKind
	CreatedAt time.Time
	Duration  time.Duration // zero means sticky until dismissed
	ShowRetry bool
}

// InfoBannerDuration is how long transient info banners stay visible.
const InfoBannerDuration = 4 * time.Second

// NewErrorBanner builds a sticky error banner. When showRetry is set the
// rendered banner includes the manual retry hint.
func NewErrorBanner(message string, showRetry bool) *Banner {
	return &Banner{
		Message:   message,
		Kind:      BannerError,
		CreatedAt: time.Now(),
		ShowRetry: showRetry,
	}
}

// NewInfoBanner builds a transient informational banner.
func NewInfoBanner(message string) *Banner {
	return &Banner{
		Message:   message,
		Kind:      BannerInfo,
		CreatedAt: time.Now(),
		Duration:  InfoBannerDuration,
	}
}

// Expired reports whether a transient banner has outlived its duration.
// Sticky banners never expire.
func (b *Banner) Expired(now time.Time) bool {
	if b == nil || b.Duration == 0 {
		return false
	}
	return now.Sub(b.CreatedAt) >= b.Duration
}

// Render draws the banner at the given width using the theme's styles.
func (b *Banner) Render(theme *styles.Theme, width int) string {
	if b == nil {
		return ""
	}

	var style lipgloss.Style
	switch b.Kind {
	case BannerError:
		style = theme.ErrorBanner
	case BannerWarning:
		style = theme.WarnBanner
	default:
		style = theme.Muted
	}

	text := b.Message
	if b.ShowRetry {
		text += "  " + theme.Muted.Render("(ctrl+r to retry, esc to dismiss)")
	} else if b.Duration == 0 {
		text += "  " + theme.Muted.Render("(esc to dismiss)")
	}

	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(text)
}
