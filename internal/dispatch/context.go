// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"fmt"

	"github.com/noldarim/commandeer/internal/protocol"
)

// Handler runs once per parsed command of type C.
type Handler[C any] func(ctx *Context[C])

// Context is what a handler sees for one parsed command. Every response it
// emits is addressed to Sender and delivered in the same tick.
type Context[C any] struct {
	Sender  protocol.Sender
	Data    C
	Command string

	ctx       context.Context
	engine    *Engine
	responded int
}

// Context returns the tick's context.
func (c *Context[C]) Context() context.Context { return c.ctx }

// Engine returns the engine running the handler.
func (c *Context[C]) Engine() *Engine { return c.engine }

// Respond emits a response to the sender.
func (c *Context[C]) Respond(outcome protocol.Outcome, msg protocol.Message) {
	c.responded++
	c.engine.Emit(protocol.Response{Target: c.Sender, Message: msg, Outcome: outcome})
}

// Ok responds with text, one display line per line.
func (c *Context[C]) Ok(text string) {
	c.Respond(protocol.OutcomeOk, protocol.Text(text))
}

// Err responds with an error text, one display line per line.
func (c *Context[C]) Err(text string) {
	c.Respond(protocol.OutcomeErr, protocol.Text(text))
}

// Okf is Ok with fmt.Sprintf formatting.
func (c *Context[C]) Okf(format string, args ...any) {
	c.Ok(fmt.Sprintf(format, args...))
}

// Errf is Err with fmt.Sprintf formatting.
func (c *Context[C]) Errf(format string, args ...any) {
	c.Err(fmt.Sprintf(format, args...))
}

// Lines responds Ok with several display lines in one message.
func (c *Context[C]) Lines(lines ...string) {
	c.Respond(protocol.OutcomeOk, protocol.Lines(lines...))
}

// Responded returns how many responses the handler has emitted so far.
func (c *Context[C]) Responded() int { return c.responded }
