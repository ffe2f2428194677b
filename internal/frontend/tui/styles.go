// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/noldarim/commandeer/internal/protocol"
)

var (
	// Color palette
	PrimaryColor = lipgloss.Color("#7C3AED")
	TextColor    = lipgloss.Color("#F3F4F6")
	MutedColor   = lipgloss.Color("#9CA3AF")
	BorderColor  = lipgloss.Color("#4B5563")
	ErrorColor   = lipgloss.Color("#EF4444")
)

var (
	// Scrollback line styles
	PlainStyle    = lipgloss.NewStyle().Foreground(TextColor)
	EmphasisStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ErrorColor)

	// Prompt echo of submitted lines
	EchoStyle = lipgloss.NewStyle().Foreground(PrimaryColor)
)

// lineStyle picks the style a response line is rendered with.
func lineStyle(resp protocol.Response) lipgloss.Style {
	if resp.IsErr() {
		return ErrorStyle
	}
	switch resp.Message.Style {
	case protocol.StyleEmphasis:
		return EmphasisStyle
	case protocol.StyleMuted:
		return MutedStyle
	default:
		return PlainStyle
	}
}

// divider returns a horizontal rule of the given width
func divider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(BorderColor).
		Render(strings.Repeat("─", width))
}
