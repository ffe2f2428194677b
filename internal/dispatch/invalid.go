// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"fmt"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/protocol"
)

// NoSuchCommand renders the message sent for an unregistered name.
func NoSuchCommand(name string) string {
	return fmt.Sprintf("%v: %s", ErrNoSuchCommand, name)
}

// synthesizeInvalid answers every input whose name is not registered.
// Membership is checked against the registry, so a registered command whose
// arguments failed to parse is never reported as unknown.
func synthesizeInvalid(inputs []protocol.TokenizedInput, registry *command.Registry) []protocol.Response {
	var out []protocol.Response
	for _, in := range inputs {
		if registry.Has(in.Name) {
			continue
		}
		getLog().Debug().
			Str("command", in.Name).
			Str("sender", in.Sender.String()).
			Msg("Unknown command")
		out = append(out, protocol.Err(in.Sender, protocol.Text(NoSuchCommand(in.Name))))
	}
	return out
}
