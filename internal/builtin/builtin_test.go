// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"context"
	"testing"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/noldarim/commandeer/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*dispatch.Engine, *testutil.Console) {
	t.Helper()
	e := testutil.NewEngine()
	RegisterAll(e)
	c := testutil.NewConsole()
	testutil.Attach(t, e, c)
	return e, c
}

func TestEcho(t *testing.T) {
	e, c := setup(t)

	got := testutil.Line(t, e, c, `echo "hello world"`)
	require.Len(t, got, 1)
	testutil.AssertOk(t, got[0], "hello world")

	got = testutil.Line(t, e, c, "echo")
	require.Len(t, got, 1)
	assert.Equal(t, protocol.OutcomeErr, got[0].Outcome)
}

func TestExit(t *testing.T) {
	e, c := setup(t)

	got := testutil.Line(t, e, c, "exit")
	assert.Empty(t, got, "exit answers nothing")
	assert.False(t, e.Exiting())

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, e.Exiting())
}

func TestHelp_Listing(t *testing.T) {
	e, c := setup(t)

	got := testutil.Line(t, e, c, "help")
	require.Len(t, got, 1)
	assert.Equal(t, protocol.OutcomeOk, got[0].Outcome)
	assert.Equal(t, []string{
		"Available commands:",
		"  echo   - Displays text back to the sender",
		"  exit   - Immediately exits the application",
		"  help   - Displays information on registered commands",
		"  prompt - Changes the prompt shown by your console",
	}, got[0].Message.Lines)
}

func TestHelp_Command(t *testing.T) {
	e, c := setup(t)

	got := testutil.Line(t, e, c, "help echo")
	require.Len(t, got, 1)
	assert.Equal(t, protocol.OutcomeOk, got[0].Outcome)
	assert.Equal(t, "Displays text back to the sender", got[0].Message.Lines[0])
	assert.Contains(t, got[0].Message.Lines, "Usage: echo <message>")

	got = testutil.Line(t, e, c, "help q")
	require.Len(t, got, 1)
	testutil.AssertErr(t, got[0], "no such command: q")
}

func TestListing(t *testing.T) {
	assert.Equal(t, []string{"Available commands:"}, Listing(nil))
	assert.Equal(t, []string{
		"Available commands:",
		"  a",
		"  long - has summary",
	}, Listing([]command.Summary{{Name: "a"}, {Name: "long", Summary: "has summary"}}))
}

func TestPrompt(t *testing.T) {
	e, c := setup(t)

	got := testutil.Line(t, e, c, `prompt "$ "`)
	assert.Empty(t, got)
	assert.Equal(t, "$ ", c.Prompt())

	// A sender with no prompt-capable front end is told so.
	headless := protocol.NewSender()
	var answers []protocol.Response
	t.Cleanup(e.Subscribe(dispatch.Only(headless, func(r protocol.Response) { answers = append(answers, r) })))
	e.Submit(headless, "prompt x")
	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, protocol.OutcomeErr, answers[0].Outcome)
}
