// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/stretchr/testify/require"
)

// Console is an in-memory front end: it owns one sender, records every
// response addressed to it and remembers the last prompt it was given.
type Console struct {
	sender protocol.Sender

	mu        sync.Mutex
	responses []protocol.Response
	prompt    string
}

// NewConsole creates a console with a fresh sender.
func NewConsole() *Console {
	return &Console{sender: protocol.NewSender()}
}

// Sender returns the console's identity.
func (c *Console) Sender() protocol.Sender { return c.sender }

// Owns implements dispatch.Subscriber.
func (c *Console) Owns(s protocol.Sender) bool { return s == c.sender }

// Deliver implements dispatch.Subscriber.
func (c *Console) Deliver(resp protocol.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
}

// SetPrompt implements dispatch.Prompter.
func (c *Console) SetPrompt(_ protocol.Sender, prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = prompt
}

// Prompt returns the last prompt set.
func (c *Console) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// Take returns and forgets the responses recorded so far.
func (c *Console) Take() []protocol.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.responses
	c.responses = nil
	return out
}

// NewEngine returns an engine with a fast tick and no commands.
func NewEngine(opts ...dispatch.Option) *dispatch.Engine {
	return dispatch.New(config.EngineConfig{TickInterval: time.Millisecond}, opts...)
}

// Attach subscribes c to e for the duration of the test.
func Attach(t *testing.T, e *dispatch.Engine, c *Console) {
	t.Helper()
	t.Cleanup(e.Subscribe(c))
}

// Line submits line as c, runs one tick and returns what c received.
func Line(t *testing.T, e *dispatch.Engine, c *Console, line string) []protocol.Response {
	t.Helper()
	require.True(t, e.Submit(c.sender, line), "engine refused input")
	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	return c.Take()
}
