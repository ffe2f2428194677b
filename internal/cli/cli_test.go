// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/noldarim/commandeer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &app{stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func TestExecute_Version(t *testing.T) {
	a, stdout, _ := newTestApp()
	require.NoError(t, a.execute([]string{"version"}))
	assert.Equal(t, "commandeer version "+appVersion+"\n", stdout.String())
}

func TestExecute_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"--help"}} {
		a, stdout, _ := newTestApp()
		require.NoError(t, a.execute(args))
		assert.Contains(t, stdout.String(), "Usage:\n  commandeer <command> [arguments]")
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	a, _, stderr := newTestApp()
	err := a.execute([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Unknown command: frobnicate")
}

func TestCommands_Listing(t *testing.T) {
	a, stdout, _ := newTestApp()
	require.NoError(t, a.execute([]string{"commands"}))

	assert.Equal(t, "Available commands:\n"+
		"  echo   - Displays text back to the sender\n"+
		"  exit   - Immediately exits the application\n"+
		"  help   - Displays information on registered commands\n"+
		"  prompt - Changes the prompt shown by your console\n", stdout.String())
}

func TestCommands_Describe(t *testing.T) {
	a, stdout, _ := newTestApp()
	require.NoError(t, a.execute([]string{"commands", "--describe", "echo"}))
	assert.Contains(t, stdout.String(), "Usage: echo")

	a, _, _ = newTestApp()
	err := a.execute([]string{"commands", "--describe", "bogus"})
	assert.EqualError(t, err, "no such command: bogus")
}

func TestRunOptions_Apply(t *testing.T) {
	tests := []struct {
		name     string
		opts     runOptions
		frontend string
		wantErr  bool
	}{
		{name: "no flags keeps config", opts: runOptions{}, frontend: config.FrontendNone},
		{name: "explicit tui", opts: runOptions{frontend: "tui"}, frontend: config.FrontendTUI},
		{name: "script implies script front end", opts: runOptions{scriptPath: "x.yaml"}, frontend: config.FrontendScript},
		{name: "script with explicit stdio", opts: runOptions{scriptPath: "x.yaml", frontend: "stdio"}, frontend: config.FrontendStdio},
		{name: "unknown front end", opts: runOptions{frontend: "gui"}, wantErr: true},
		{name: "script front end without a file", opts: runOptions{frontend: "script"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := tt.opts.apply(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.frontend, cfg.Console.Frontend)
		})
	}
}

func TestRunOptions_ServeEnablesServer(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, (&runOptions{serve: true}).apply(cfg))
	assert.True(t, cfg.Server.Enabled)
}

func TestRun_RejectsPositionalArguments(t *testing.T) {
	a, _, _ := newTestApp()
	assert.Error(t, a.execute([]string{"run", "extra"}))
}

func TestRun_ScriptEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sender_name: smoke\nsteps:\n  - line: echo hi\n  - line: nope\n"), 0o644))

	cfg := config.Default()
	cfg.Log.Output = nil
	cfg.Engine.TickInterval = time.Millisecond
	cfg.Console.Frontend = config.FrontendScript
	cfg.Script.Path = path
	cfg.Script.ExitWhenDone = true

	a, stdout, _ := newTestApp()
	require.NoError(t, a.executeRun(cfg))

	assert.Equal(t, "smoke> echo hi\n[ok] hi\nsmoke> nope\n[err] no such command: nope\n", stdout.String())
}

func TestPickFrontend_NoTerminalFallsBackToStdio(t *testing.T) {
	a, _, _ := newTestApp()
	got, err := a.pickFrontend()
	require.NoError(t, err)
	assert.Equal(t, config.FrontendStdio, got)
}
