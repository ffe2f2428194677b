// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "strings"

// Style is a presentation hint attached to a Message. Front ends decide how to render it.
type Style int

const (
	StylePlain Style = iota
	StyleEmphasis
	StyleMuted
)

// Message is an ordered sequence of display lines.
type Message struct {
	Lines []string `json:"lines"`
	Style Style    `json:"style,omitempty"`
}

// Text builds a Message from s, one display line per line of text.
func Text(s string) Message {
	return Message{Lines: splitLines(s)}
}

// Lines builds a Message from already separated lines.
func Lines(lines ...string) Message {
	out := make([]string, len(lines))
	copy(out, lines)
	return Message{Lines: out}
}

// WithStyle returns a copy of m carrying style.
func (m Message) WithStyle(style Style) Message {
	m.Style = style
	return m
}

// String joins the lines with newlines.
func (m Message) String() string {
	return strings.Join(m.Lines, "\n")
}

// splitLines mirrors how multi-line text is shown line by line: a trailing
// newline does not produce an empty last line, but an empty string is one empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
