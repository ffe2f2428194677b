// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/stretchr/testify/require"
)

// recorder is a front end that keeps every response addressed to its sender.
type recorder struct {
	sender protocol.Sender

	mu     sync.Mutex
	got    []protocol.Response
	prompt string
}

func newRecorder() *recorder {
	return &recorder{sender: protocol.NewSender()}
}

func (r *recorder) Owns(s protocol.Sender) bool { return s == r.sender }

func (r *recorder) Deliver(resp protocol.Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, resp)
}

func (r *recorder) SetPrompt(_ protocol.Sender, p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompt = p
}

func (r *recorder) responses() []protocol.Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Response(nil), r.got...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}

type repeatCmd struct {
	Message string
	Count   int
}

func repeatSchema() *command.Schema[repeatCmd] {
	return command.NewSchema[repeatCmd]("repeat", "Prints the provided message back COUNT times").
		Arg("message", "The message to echo back", func(c *repeatCmd) *string { return &c.Message }).
		IntFlag("count", "c", 1, "The amount of times to echo the message back", func(c *repeatCmd) *int { return &c.Count })
}

func repeatHandler(ctx *Context[repeatCmd]) {
	for i := 0; i < ctx.Data.Count; i++ {
		ctx.Ok(ctx.Data.Message)
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recorder) {
	t.Helper()
	e := New(config.EngineConfig{TickInterval: time.Millisecond}, opts...)
	rec := newRecorder()
	t.Cleanup(e.Subscribe(rec))
	return e, rec
}

func tick(t *testing.T, e *Engine) Report {
	t.Helper()
	report, err := e.Tick(context.Background())
	require.NoError(t, err)
	return report
}

func messages(resps []protocol.Response) []string {
	out := make([]string, len(resps))
	for i, r := range resps {
		out[i] = r.Message.String()
	}
	return out
}
