// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the commandeer command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

const (
	appName    = "commandeer"
	appVersion = "0.1.0-alpha"
)

// app carries the streams a CLI invocation writes to.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the CLI application against the process arguments.
func Execute() error {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	return a.execute(os.Args[1:])
}

func (a *app) execute(args []string) error {
	if len(args) == 0 {
		return a.printUsage()
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "run":
		return a.runCommand(rest)
	case "commands":
		return a.commandsCommand(rest)
	case "version":
		fmt.Fprintf(a.stdout, "%s version %s\n", appName, appVersion)
		return nil
	case "help", "-h", "--help":
		return a.printUsage()
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n\n", command)
		_ = a.printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) printUsage() error {
	fmt.Fprintf(a.stdout, `%s - typed command console

Usage:
  %s <command> [arguments]

Commands:
  run        Start the console (stdio, tui or script front end)
  commands   List the registered commands
  version    Print version information
  help       Show this help message

Examples:
  %s run
  %s run --frontend tui
  %s run --script smoke.yaml
  %s commands

`, appName, appName, appName, appName, appName, appName)
	return nil
}

// PrintFatal reports a startup failure on stderr in bold red.
func PrintFatal(w io.Writer, err error) {
	errorStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("9")). // Red color
		Render

	fmt.Fprintf(w, "%s\n", errorStyle("Error: "+err.Error()))
}
