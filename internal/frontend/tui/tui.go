// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tui is the full-screen console front end built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/noldarim/commandeer/internal/queue"
	"github.com/rs/zerolog"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetTUILogger()
		log = &l
	})
	return log
}

// submission is a line typed into the console, or a quit.
type submission struct {
	line string
	exit bool
}

// Frontend connects a Bubble Tea program to the engine. Lines typed into the
// console are queued for the Input stage; responses addressed to its sender
// are collected during the Response stage and handed to the program once
// the tick has delivered everything.
type Frontend struct {
	sender  protocol.Sender
	engine  *dispatch.Engine
	program *tea.Program

	inputs  *queue.Unbounded[submission]
	pending []protocol.Response
	outbox  *queue.Unbounded[tea.Msg]

	detach func()
}

// New creates the console front end. opts are passed to tea.NewProgram.
func New(engine *dispatch.Engine, cfg config.ConsoleConfig, opts ...tea.ProgramOption) *Frontend {
	f := &Frontend{
		sender: protocol.NewSender(),
		engine: engine,
		inputs: queue.New[submission](),
		outbox: queue.New[tea.Msg](),
	}

	model := NewModel(Options{
		Prompt:        cfg.Prompt,
		ScrollbackCap: cfg.ScrollbackCap,
		Submit: func(line string) {
			getLog().Debug().Str("line", line).Msg("Issued console command")
			f.inputs.Push(submission{line: line})
		},
		Exit: func() { f.inputs.Push(submission{exit: true}) },
	})

	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	f.program = tea.NewProgram(model, opts...)
	return f
}

// Sender returns the identity console lines are submitted under.
func (f *Frontend) Sender() protocol.Sender { return f.sender }

// Attach registers the input and flush systems and subscribes to responses.
func (f *Frontend) Attach() {
	f.engine.AddSystem(dispatch.StageInput, "tui.input", f.drain)
	f.engine.AddSystem(dispatch.StagePostResponse, "tui.scrollback", f.flush)
	f.detach = f.engine.Subscribe(f)
}

// Run blocks until the console is closed.
func (f *Frontend) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go f.pump(done)

	// Start listening for shutdown in a separate goroutine
	go func() {
		select {
		case <-ctx.Done():
			f.program.Send(closeMsg{})
		case <-done:
		}
	}()

	if _, err := f.program.Run(); err != nil {
		return fmt.Errorf("console program failed: %w", err)
	}
	return nil
}

// Close stops the program and detaches from the engine.
func (f *Frontend) Close() {
	f.outbox.Push(closeMsg{})
	f.outbox.Close()
	f.inputs.Close()
	if f.detach != nil {
		f.detach()
	}
}

// pump forwards queued messages to the program so the tick never waits on rendering.
func (f *Frontend) pump(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-f.outbox.Ready():
		}
		for _, msg := range f.outbox.Drain() {
			f.program.Send(msg)
		}
		if f.outbox.Closed() && f.outbox.Len() == 0 {
			return
		}
	}
}

func (f *Frontend) drain(context.Context) {
	for _, s := range f.inputs.Drain() {
		if s.exit {
			f.engine.RequestExit()
			continue
		}
		f.engine.Submit(f.sender, s.line)
	}
}

// flush runs after every response of the tick has been delivered.
func (f *Frontend) flush(context.Context) {
	if len(f.pending) == 0 {
		return
	}
	f.outbox.Push(responsesMsg(f.pending))
	f.pending = nil
}

// Owns implements dispatch.Subscriber.
func (f *Frontend) Owns(sender protocol.Sender) bool { return sender == f.sender }

// Deliver collects a response for the end-of-tick flush.
func (f *Frontend) Deliver(resp protocol.Response) {
	f.pending = append(f.pending, resp)
}

// SetPrompt implements dispatch.Prompter.
func (f *Frontend) SetPrompt(_ protocol.Sender, prompt string) {
	if !f.outbox.Push(promptMsg(prompt)) {
		getLog().Warn().Str("prompt", prompt).Msg("Could not send new prompt to console")
	}
}
