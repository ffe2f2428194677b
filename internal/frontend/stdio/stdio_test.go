// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package stdio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noldarim/commandeer/internal/builtin"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEditor hands out lines one ReadLine at a time and records prompts.
type scriptedEditor struct {
	lines chan string
	err   error

	mu      sync.Mutex
	prompts []string
}

func newScriptedEditor() *scriptedEditor {
	return &scriptedEditor{lines: make(chan string, 16), err: io.EOF}
}

func (s *scriptedEditor) ReadLine() (string, error) {
	line, ok := <-s.lines
	if !ok {
		return "", s.err
	}
	return line, nil
}

func (s *scriptedEditor) SetPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
}

func (s *scriptedEditor) seenPrompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newFrontend(t *testing.T) (*dispatch.Engine, *Frontend, *scriptedEditor, *syncBuffer) {
	t.Helper()
	e := dispatch.New(config.EngineConfig{TickInterval: time.Millisecond})
	builtin.RegisterAll(e)

	ed := newScriptedEditor()
	out := &syncBuffer{}
	f := New(e, ed, out, "> ")
	f.Attach()
	t.Cleanup(func() { _ = f.Close() })
	return e, f, ed, out
}

// tickUntil ticks until cond holds or the deadline passes.
func tickUntil(t *testing.T, e *dispatch.Engine, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := e.Tick(context.Background())
		require.NoError(t, err)
		return cond()
	}, 2*time.Second, time.Millisecond)
}

func TestFrontend_LinesRoundTrip(t *testing.T) {
	e, f, ed, out := newFrontend(t)
	f.Start(context.Background())

	ed.lines <- `echo "hello world"`
	tickUntil(t, e, func() bool { return strings.Contains(out.String(), "hello world") })

	ed.lines <- "nope"
	tickUntil(t, e, func() bool { return strings.Contains(out.String(), "no such command: nope") })

	assert.Equal(t, "hello world\nno such command: nope\n", out.String())
}

func TestFrontend_EOFRequestsExit(t *testing.T) {
	e, f, ed, out := newFrontend(t)
	f.Start(context.Background())

	ed.lines <- "echo last"
	close(ed.lines)

	tickUntil(t, e, e.Exiting)
	assert.Contains(t, out.String(), "last\n")
	assert.Contains(t, out.String(), "^D (exiting)")
}

func TestFrontend_ReadErrorRequestsExit(t *testing.T) {
	e, f, ed, _ := newFrontend(t)
	ed.err = errors.New("tty gone")
	f.Start(context.Background())
	close(ed.lines)

	tickUntil(t, e, e.Exiting)
}

func TestFrontend_PromptCommand(t *testing.T) {
	e, f, ed, out := newFrontend(t)
	f.Start(context.Background())

	// The initial prompt has left the queue once the reader applied it.
	require.Eventually(t, func() bool { return lastPrompt(ed) == "> " }, 2*time.Second, time.Millisecond)

	ed.lines <- `prompt "$ "`
	tickUntil(t, e, func() bool { return f.prompts.Len() > 0 })

	// The reader picks the new prompt up before its next read.
	ed.lines <- "echo after"
	tickUntil(t, e, func() bool { return lastPrompt(ed) == "$ " && strings.Contains(out.String(), "after") })
}

func lastPrompt(ed *scriptedEditor) string {
	p := ed.seenPrompts()
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func TestFrontend_InitialPromptAppliedBeforeFirstRead(t *testing.T) {
	_, f, ed, _ := newFrontend(t)
	f.Start(context.Background())

	require.Eventually(t, func() bool { return len(ed.seenPrompts()) > 0 }, time.Second, time.Millisecond)
	assert.Equal(t, "> ", ed.seenPrompts()[0])
}

func TestFrontend_IgnoresOtherSenders(t *testing.T) {
	_, f, _, out := newFrontend(t)

	assert.True(t, f.Owns(f.Sender()))
	assert.False(t, f.Owns(protocol.NewSender()))

	f.Deliver(protocol.Err(f.Sender(), protocol.Lines("first", "second")))
	assert.Equal(t, "first\nsecond\n", out.String(), "no styling when output is not a terminal")
}

func TestPlainReader(t *testing.T) {
	r := newPlainReader(strings.NewReader("one\ntwo\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestComplete(t *testing.T) {
	names := []string{"echo", "exit", "help", "prompt"}

	tests := []struct {
		name    string
		line    string
		pos     int
		want    string
		wantPos int
		ok      bool
	}{
		{"unique match", "he", 2, "help ", 5, true},
		{"shared prefix", "e", 1, "", 0, false},
		{"extends to common prefix", "ec", 2, "echo ", 5, true},
		{"no match", "zz", 2, "", 0, false},
		{"arguments untouched", "echo he", 7, "", 0, false},
		{"keeps trailing args", "pr x", 2, "prompt x", 7, true},
		{"cursor inside word", "hel", 1, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pos, ok := Complete(names, tt.line, tt.pos)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.wantPos, pos)
			}
		})
	}

	got, pos, ok := Complete([]string{"status", "stats"}, "st", 2)
	require.True(t, ok)
	assert.Equal(t, "stat", got)
	assert.Equal(t, 4, pos)
}
