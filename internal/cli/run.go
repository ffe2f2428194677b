// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/frontend/remote"
	"github.com/noldarim/commandeer/internal/frontend/script"
	"github.com/noldarim/commandeer/internal/frontend/stdio"
	"github.com/noldarim/commandeer/internal/frontend/tui"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

type runOptions struct {
	configPath string
	frontend   string // --frontend: stdio, tui or script
	scriptPath string // --script: implies --frontend script
	serve      bool   // --serve: also start the websocket front end
}

func (a *app) runCommand(args []string) error {
	opts := &runOptions{}
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	fs.StringVarP(&opts.frontend, "frontend", "f", "", "Front end to start: stdio, tui or script")
	fs.StringVarP(&opts.scriptPath, "script", "s", "", "Replay a YAML script instead of reading a terminal")
	fs.BoolVar(&opts.serve, "serve", false, "Also accept websocket consoles (server.* config)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg, err := config.NewConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	return a.executeRun(cfg)
}

// apply lets flags override the loaded configuration.
func (o *runOptions) apply(cfg *config.AppConfig) error {
	if o.scriptPath != "" {
		cfg.Script.Path = o.scriptPath
		if o.frontend == "" {
			o.frontend = config.FrontendScript
		}
	}
	if o.frontend != "" {
		switch o.frontend {
		case config.FrontendStdio, config.FrontendTUI, config.FrontendScript:
			cfg.Console.Frontend = o.frontend
		default:
			return fmt.Errorf("--frontend must be 'stdio', 'tui' or 'script', got: %s", o.frontend)
		}
	}
	if o.serve {
		cfg.Server.Enabled = true
	}
	if cfg.Console.Frontend == config.FrontendScript && cfg.Script.Path == "" {
		return errors.New("the script front end needs --script or script.path")
	}
	return nil
}

func (a *app) executeRun(cfg *config.AppConfig) error {
	// Initialize logging (to file only by default, keep terminal clean)
	if err := logger.Initialize(&cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.CloseGlobal()

	mainLog := logger.GetLogger("main")
	mainLog.Info().Str("version", appVersion).Msg("Starting commandeer")

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			mainLog.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	engine := newEngine(cfg.Engine, dispatch.WithTracerProvider(tp))

	if cfg.Server.Enabled {
		srv := remote.New(&cfg.Server, engine)
		go func() {
			if err := srv.Run(ctx); err != nil {
				mainLog.Error().Err(err).Msg("Console server failed")
			}
		}()
	}

	frontend := cfg.Console.Frontend
	if frontend == config.FrontendNone {
		frontend, err = a.pickFrontend()
		if err != nil {
			return err
		}
	}
	mainLog.Info().Str("frontend", frontend).Msg("Starting front end")

	switch frontend {
	case config.FrontendStdio:
		err = a.runStdio(ctx, engine, cfg)
	case config.FrontendTUI:
		err = runTUI(ctx, engine, cfg, mainLog)
	case config.FrontendScript:
		err = a.runScript(ctx, engine, cfg)
	default:
		err = fmt.Errorf("unknown front end: %s", frontend)
	}

	mainLog.Info().Err(err).Msg("Application shutting down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pickFrontend asks on a terminal and falls back to stdio when nobody can answer.
func (a *app) pickFrontend() (string, error) {
	if a.stdin == nil || !term.IsTerminal(int(a.stdin.Fd())) {
		return config.FrontendStdio, nil
	}

	choice := config.FrontendStdio
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which console?").
				Options(
					huh.NewOption("Line editor", config.FrontendStdio),
					huh.NewOption("Full-screen console", config.FrontendTUI),
				).
				Value(&choice),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("front end selection aborted: %w", err)
	}
	return choice, nil
}

func (a *app) runStdio(ctx context.Context, engine *dispatch.Engine, cfg *config.AppConfig) error {
	f, err := stdio.Open(engine, cfg.Console.Prompt)
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer f.Close()

	f.Attach()
	f.Start(ctx)
	return engine.Run(ctx)
}

func runTUI(ctx context.Context, engine *dispatch.Engine, cfg *config.AppConfig, mainLog zerolog.Logger) error {
	f := tui.New(engine, cfg.Console)
	f.Attach()
	defer f.Close()

	tuiCtx, cancelTUI := context.WithCancel(ctx)
	defer cancelTUI()

	engineErr := make(chan error, 1)
	go func() {
		err := engine.Run(ctx)
		// Engine stopped, take the console down with it
		cancelTUI()
		engineErr <- err
	}()

	if err := f.Run(tuiCtx); err != nil {
		mainLog.Error().Err(err).Msg("Error running TUI")
		engine.RequestExit()
		<-engineErr
		return err
	}

	// The console closed on its own (quit key); make sure the engine follows.
	engine.RequestExit()
	return <-engineErr
}

func (a *app) runScript(ctx context.Context, engine *dispatch.Engine, cfg *config.AppConfig) error {
	s, err := script.Load(cfg.Script.Path)
	if err != nil {
		return err
	}

	f := script.New(engine, s, a.stdout, cfg.Script.ExitWhenDone)
	f.Attach()
	defer f.Close()

	return engine.Run(ctx)
}
