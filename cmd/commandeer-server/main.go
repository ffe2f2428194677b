// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command commandeer-server runs the engine headless, reachable only over
// the websocket console.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noldarim/commandeer/internal/builtin"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/frontend/remote"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/telemetry"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.CloseGlobal()

	mainLog := logger.GetLogger("main")
	mainLog.Info().Msg("Starting commandeer console server")

	// This context drives the engine's lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		mainLog.Error().Err(err).Msg("Error setting up tracing")
		fmt.Fprintf(os.Stderr, "Error setting up tracing: %v\n", err)
		os.Exit(1)
	}

	engine := dispatch.New(cfg.Engine, dispatch.WithTracerProvider(tp))
	builtin.RegisterAll(engine)

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	srv := remote.New(&cfg.Server, engine)
	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Run(ctx)
	}()

	// Wait for signal, server error or an exit command from a console
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		mainLog.Info().Msgf("Received signal %v, shutting down...", sig)
	case err := <-serverErrChan:
		if err != nil {
			mainLog.Error().Err(err).Msg("Server error")
		}
	case err := <-engineDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			mainLog.Error().Err(err).Msg("Engine error")
		}
		engineDone <- err
	}

	// Graceful shutdown: fresh context with timeout, independent of the engine ctx.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("Error shutting down server")
	}

	// Now stop the engine
	cancel()
	<-engineDone

	if err := shutdownTracing(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("Error flushing traces")
	}

	mainLog.Info().Msg("Console server shut down")
}
