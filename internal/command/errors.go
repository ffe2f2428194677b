// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"errors"
	"fmt"
	"strings"
)

// Parsing and registration errors.
var (
	// ErrMalformedInput indicates a line that could not be split into tokens, e.g. an unterminated quote.
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingArgument indicates a required positional argument was not supplied.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrUnexpectedArgument indicates more positional arguments than the schema accepts.
	ErrUnexpectedArgument = errors.New("unexpected argument")

	// ErrHelpRequested indicates the caller asked for --help instead of running the command.
	ErrHelpRequested = errors.New("help requested")

	// ErrInvalidName indicates a command name that cannot be typed on a command line.
	ErrInvalidName = errors.New("invalid command name")
)

// ParseError is returned when a token list does not satisfy a command's schema.
// Its Error text is what the sender sees, one display line per line.
type ParseError struct {
	Command string
	Err     error
	Usage   string
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrHelpRequested) {
		return e.Usage
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error: %v\n\n", e.Err)
	b.WriteString(e.Usage)
	fmt.Fprintf(&b, "\n\nFor more information, try '%s --help'.", e.Command)
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// HelpRequested reports whether the error carries help text rather than a failure.
func (e *ParseError) HelpRequested() bool {
	return errors.Is(e.Err, ErrHelpRequested)
}

// Lines splits the rendered error into display lines.
func (e *ParseError) Lines() []string {
	return strings.Split(e.Error(), "\n")
}
