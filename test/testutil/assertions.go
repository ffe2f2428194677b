// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/stretchr/testify/assert"
)

// AssertQuitMessage verifies that a quit message was generated
func AssertQuitMessage(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	assert.NotNil(t, cmd, "Expected a command to be generated")
	assert.IsType(t, tea.QuitMsg{}, ExecuteCommand(cmd), "Expected quit message")
}

// AssertViewNotEmpty verifies that the view produces non-empty output
func AssertViewNotEmpty(t *testing.T, model tea.Model) {
	t.Helper()
	assert.NotEmpty(t, model.View(), "View should not be empty")
}

// AssertOk verifies a successful response carrying exactly lines.
func AssertOk(t *testing.T, resp protocol.Response, lines ...string) {
	t.Helper()
	assert.Equal(t, protocol.OutcomeOk, resp.Outcome, "Outcome mismatch")
	assert.Equal(t, lines, resp.Message.Lines, "Response lines mismatch")
}

// AssertErr verifies a failed response carrying exactly lines.
func AssertErr(t *testing.T, resp protocol.Response, lines ...string) {
	t.Helper()
	assert.Equal(t, protocol.OutcomeErr, resp.Outcome, "Outcome mismatch")
	assert.Equal(t, lines, resp.Message.Lines, "Response lines mismatch")
}
