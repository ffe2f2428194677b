// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stdio is the terminal front end: a line editor read on its own OS
// thread, feeding the engine through a queue drained once per tick.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/noldarim/commandeer/internal/queue"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetStdioLogger()
		log = &l
	})
	return log
}

// LineReader is a blocking line editor.
type LineReader interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

// input is what the reader thread hands to the tick loop.
type input struct {
	line string
	exit bool
}

// Frontend owns one sender and prints every response addressed to it.
type Frontend struct {
	sender protocol.Sender
	engine *dispatch.Engine
	editor LineReader
	out    io.Writer

	inputs  *queue.Unbounded[input]
	prompts *queue.Unbounded[string]

	errStyle lipgloss.Style
	outMu    sync.Mutex
	restore  func() error
	detach   func()
}

// New builds a front end around an existing editor. Nothing is read until Start.
func New(engine *dispatch.Engine, editor LineReader, out io.Writer, prompt string) *Frontend {
	f := &Frontend{
		sender:   protocol.NewSender(),
		engine:   engine,
		editor:   editor,
		out:      out,
		inputs:   queue.New[input](),
		prompts:  queue.New[string](),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		restore:  func() error { return nil },
	}
	f.prompts.Push(prompt)
	return f
}

// Open attaches to the process terminal. When stdin is a terminal it is put
// in raw mode and read through an x/term line editor with history and tab
// completion of command names; otherwise stdin is read line by line.
func Open(engine *dispatch.Engine, prompt string) (*Frontend, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		getLog().Info().Msg("Stdin is not a terminal, reading plain lines")
		return New(engine, newPlainReader(os.Stdin), os.Stdout, prompt), nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to put terminal in raw mode: %w", err)
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		return Complete(engine.Registry().Names(), line, pos)
	}

	f := New(engine, t, t, prompt)
	f.restore = func() error { return term.Restore(fd, state) }
	return f, nil
}

// Sender returns the identity lines from this terminal are submitted under.
func (f *Frontend) Sender() protocol.Sender { return f.sender }

// Attach registers the input system and subscribes to responses.
func (f *Frontend) Attach() {
	f.engine.AddSystem(dispatch.StageInput, "stdio.input", f.drain)
	f.detach = f.engine.Subscribe(f)
}

// Start launches the reader on a dedicated OS thread.
func (f *Frontend) Start(ctx context.Context) {
	go f.readLoop(ctx)
}

// Close stops accepting lines and restores the terminal.
func (f *Frontend) Close() error {
	f.inputs.Close()
	f.prompts.Close()
	if f.detach != nil {
		f.detach()
	}
	return f.restore()
}

func (f *Frontend) readLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for ctx.Err() == nil {
		if p, ok := f.prompts.Latest(); ok {
			f.editor.SetPrompt(p)
		}

		line, err := f.editor.ReadLine()
		switch {
		case err == nil:
			if !f.inputs.Push(input{line: line}) {
				getLog().Warn().Msg("Could not send line to the engine, front end closed")
				return
			}
		case errors.Is(err, io.EOF):
			f.println("^D (exiting)")
			if !f.inputs.Push(input{exit: true}) {
				getLog().Warn().Msg("Could not send exit request to the engine")
			}
			return
		default:
			getLog().Warn().Err(err).Msg("Could not read line from terminal")
			f.inputs.Push(input{exit: true})
			return
		}
	}
}

// drain runs in the Input stage and never blocks.
func (f *Frontend) drain(context.Context) {
	for _, in := range f.inputs.Drain() {
		if in.exit {
			f.engine.RequestExit()
			continue
		}
		f.engine.Submit(f.sender, in.line)
	}
}

// Owns implements dispatch.Subscriber.
func (f *Frontend) Owns(sender protocol.Sender) bool { return sender == f.sender }

// Deliver prints a response one line at a time, error lines in red.
func (f *Frontend) Deliver(resp protocol.Response) {
	for _, line := range resp.Message.Lines {
		if resp.IsErr() {
			line = f.errStyle.Render(line)
		}
		f.println(line)
	}
}

// SetPrompt queues a prompt change for the reader. It takes effect before the next line is read.
func (f *Frontend) SetPrompt(_ protocol.Sender, prompt string) {
	if !f.prompts.Push(prompt) {
		getLog().Warn().Str("prompt", prompt).Msg("Could not send new prompt to terminal")
	}
}

func (f *Frontend) println(line string) {
	f.outMu.Lock()
	defer f.outMu.Unlock()
	if _, err := fmt.Fprintln(f.out, line); err != nil {
		getLog().Warn().Err(err).Msg("Could not write to terminal")
	}
}

// plainReader reads newline-terminated lines from a non-terminal stdin.
type plainReader struct {
	scanner *bufio.Scanner
}

func newPlainReader(r io.Reader) *plainReader {
	return &plainReader{scanner: bufio.NewScanner(r)}
}

func (p *plainReader) ReadLine() (string, error) {
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (p *plainReader) SetPrompt(string) {}
