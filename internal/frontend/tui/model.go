// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/noldarim/commandeer/internal/protocol"
)

// Messages the front end sends into the program.
type (
	// responsesMsg carries every response delivered in one tick.
	responsesMsg []protocol.Response

	// promptMsg replaces the prompt.
	promptMsg string

	// closeMsg ends the program without requesting an engine exit.
	closeMsg struct{}
)

// Options configures a console Model.
type Options struct {
	Prompt        string
	ScrollbackCap int          // 0 keeps every line
	Submit        func(string) // receives trimmed, non-empty lines
	Exit          func()       // called when the user quits
}

// Model is the console panel: a scrollback viewport above a single-line input.
type Model struct {
	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	prompt     string
	scrollback []string
	capacity   int

	history    []string
	historyPos int

	submit func(string)
	exit   func()

	width, height int
	ready         bool
	quitting      bool
}

// NewModel creates a console model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Focus()

	submit := opts.Submit
	if submit == nil {
		submit = func(string) {}
	}
	exit := opts.Exit
	if exit == nil {
		exit = func() {}
	}

	return Model{
		input:    ti,
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     defaultKeyMap(),
		prompt:   opts.Prompt,
		capacity: opts.ScrollbackCap,
		submit:   submit,
		exit:     exit,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case responsesMsg:
		for _, resp := range msg {
			style := lineStyle(resp)
			for _, line := range resp.Message.Lines {
				m.push(style.Render(line))
			}
		}
		return m, nil

	case promptMsg:
		m.prompt = string(msg)
		m.input.Prompt = m.prompt
		return m, nil

	case closeMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.exit()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			m.enter()
			return m, nil

		case key.Matches(msg, m.keys.Previous):
			m.recall(-1)
			return m, nil

		case key.Matches(msg, m.keys.Next):
			m.recall(1)
			return m, nil

		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// enter echoes the buffer into the scrollback and submits it unless blank.
func (m *Model) enter() {
	buf := strings.TrimSpace(m.input.Value())
	m.push(EchoStyle.Render(m.prompt + buf))
	m.input.Reset()

	if buf == "" {
		return
	}
	m.history = append(m.history, buf)
	m.historyPos = len(m.history)
	m.submit(buf)
}

// recall moves through previously submitted lines.
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	pos := m.historyPos + delta
	switch {
	case pos < 0:
		pos = 0
	case pos >= len(m.history):
		m.historyPos = len(m.history)
		m.input.Reset()
		return
	}
	m.historyPos = pos
	m.input.SetValue(m.history[pos])
	m.input.CursorEnd()
}

// push appends one display line, dropping the oldest lines beyond capacity.
func (m *Model) push(line string) {
	m.scrollback = append(m.scrollback, line)
	if m.capacity > 0 && len(m.scrollback) > m.capacity {
		drop := len(m.scrollback) - m.capacity
		m.scrollback = append([]string(nil), m.scrollback[drop:]...)
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.scrollback, "\n"))
	if atBottom || !m.ready {
		m.viewport.GotoBottom()
	}
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-len(m.prompt)-1, 1)

	// input line, divider and help line sit below the scrollback
	m.viewport.Width = width
	m.viewport.Height = max(height-3, 1)
	m.viewport.SetContent(strings.Join(m.scrollback, "\n"))
	m.viewport.GotoBottom()
	m.ready = true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return strings.Join([]string{
		m.viewport.View(),
		divider(m.width),
		m.input.View(),
		m.help.View(m.keys),
	}, "\n")
}

// Scrollback returns the rendered lines currently kept.
func (m Model) Scrollback() []string {
	return append([]string(nil), m.scrollback...)
}

// Prompt returns the current prompt.
func (m Model) Prompt() string { return m.prompt }

// Value returns the current input buffer.
func (m Model) Value() string { return m.input.Value() }
