// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/noldarim/commandeer/internal/builtin"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/spf13/pflag"
)

// newEngine builds an engine with every inbuilt command registered.
func newEngine(cfg config.EngineConfig, opts ...dispatch.Option) *dispatch.Engine {
	engine := dispatch.New(cfg, opts...)
	builtin.RegisterAll(engine)
	return engine
}

func (a *app) commandsCommand(args []string) error {
	fs := pflag.NewFlagSet("commands", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	name := fs.String("describe", "", "Print the long help of one command")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	engine := newEngine(config.EngineConfig{})

	if *name != "" {
		help, ok := engine.Registry().RenderHelp(*name)
		if !ok {
			return fmt.Errorf("%s", dispatch.NoSuchCommand(*name))
		}
		fmt.Fprintln(a.stdout, help)
		return nil
	}

	for _, line := range builtin.Listing(engine.Commands()) {
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}
