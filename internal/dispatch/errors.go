// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import "errors"

// Dispatch errors.
var (
	// ErrNoSuchCommand indicates a line whose first token is not a registered command.
	ErrNoSuchCommand = errors.New("no such command")

	// ErrHandlerPanic indicates a command handler panicked.
	ErrHandlerPanic = errors.New("dispatch: handler panic")

	// ErrSystemPanic indicates a stage system panicked.
	ErrSystemPanic = errors.New("dispatch: system panic")

	// ErrTickInProgress indicates Tick was entered while another tick was running.
	ErrTickInProgress = errors.New("dispatch: tick already in progress")
)
