// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package script drives the engine from a YAML file of lines, one line per
// tick, and writes a transcript of every response.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetScriptLogger()
		log = &l
	})
	return log
}

// ErrEmptyScript is returned for a script with no steps.
var ErrEmptyScript = errors.New("script has no steps")

// Step is one submitted line.
type Step struct {
	Line string `yaml:"line"`
}

// Script is the YAML document:
//
//	sender_name: smoke
//	steps:
//	  - line: echo hello
//	  - line: help
type Script struct {
	SenderName string `yaml:"sender_name"`
	Steps      []Step `yaml:"steps"`
}

// Parse decodes a script, rejecting unknown keys.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyScript
		}
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	if s.SenderName == "" {
		s.SenderName = "script"
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script %s: %w", path, err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return s, nil
}

// Frontend replays a Script as one sender.
type Frontend struct {
	script       *Script
	sender       protocol.Sender
	engine       *dispatch.Engine
	exitWhenDone bool

	outMu sync.Mutex
	out   io.Writer

	// Touched only from the tick goroutine.
	next       int
	exitIssued bool

	done     chan struct{}
	doneOnce sync.Once
	detach   func()
}

// New prepares a replay of s. Nothing is submitted until the engine ticks.
func New(engine *dispatch.Engine, s *Script, out io.Writer, exitWhenDone bool) *Frontend {
	return &Frontend{
		script:       s,
		sender:       protocol.NewSender(),
		engine:       engine,
		exitWhenDone: exitWhenDone,
		out:          out,
		done:         make(chan struct{}),
		detach:       func() {},
	}
}

// Sender is the identity every step is submitted as.
func (f *Frontend) Sender() protocol.Sender { return f.sender }

// Done is closed once every step has been submitted and answered.
func (f *Frontend) Done() <-chan struct{} { return f.done }

// Attach registers the per-tick step system and subscribes to responses.
func (f *Frontend) Attach() {
	f.engine.AddSystem(dispatch.StageInput, "script.step", f.step)
	f.detach = f.engine.Subscribe(f)
	getLog().Info().
		Str("script", f.script.SenderName).
		Str("sender", f.sender.String()).
		Int("steps", len(f.script.Steps)).
		Msg("Script attached")
}

// Close stops receiving responses.
func (f *Frontend) Close() {
	f.detach()
}

// step runs once per tick. A submitted line is answered within the same
// tick, so the tick after the last submission finds the script finished.
func (f *Frontend) step(context.Context) {
	if f.next < len(f.script.Steps) {
		line := f.script.Steps[f.next].Line
		f.next++

		f.write(fmt.Sprintf("%s> %s", f.script.SenderName, line))
		getLog().Debug().Int("step", f.next).Str("line", line).Msg("Submitting script step")
		f.engine.Submit(f.sender, line)
		return
	}

	f.doneOnce.Do(func() {
		close(f.done)
		getLog().Info().Str("script", f.script.SenderName).Msg("Script finished")
	})
	if f.exitWhenDone && !f.exitIssued {
		f.exitIssued = true
		f.engine.RequestExit()
	}
}

// Owns implements dispatch.Subscriber.
func (f *Frontend) Owns(sender protocol.Sender) bool { return sender == f.sender }

// Deliver implements dispatch.Subscriber.
func (f *Frontend) Deliver(resp protocol.Response) {
	tag := "[ok]"
	if resp.IsErr() {
		tag = "[err]"
	}
	lines := make([]string, 0, len(resp.Message.Lines))
	for _, l := range resp.Message.Lines {
		lines = append(lines, tag+" "+l)
	}
	f.write(strings.Join(lines, "\n"))
}

// SetPrompt implements dispatch.Prompter; scripts note the change in the transcript.
func (f *Frontend) SetPrompt(_ protocol.Sender, prompt string) {
	f.write(fmt.Sprintf("[prompt] %q", prompt))
}

func (f *Frontend) write(text string) {
	if text == "" {
		return
	}
	f.outMu.Lock()
	defer f.outMu.Unlock()
	if _, err := fmt.Fprintln(f.out, text); err != nil {
		getLog().Warn().Err(err).Msg("Failed to write transcript")
	}
}
