// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package remote serves the console over WebSocket. Every connection is its
// own sender; text frames are submitted as lines and responses come back as
// JSON frames. A small REST surface exposes the command listing and help.
package remote

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/rs/zerolog"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetAPILogger()
		log = &l
	})
	return log
}

// Server is the REST + WebSocket front end.
type Server struct {
	httpServer *http.Server
	sessions   *SessionRegistry
	detach     func()
}

// New wires routes and subscribes the session registry to the engine.
// It does NOT start listening; call Run for that.
func New(cfg *config.ServerConfig, engine *dispatch.Engine) *Server {
	sessions := NewSessionRegistry(engine)
	handlers := NewHandlers(engine, sessions)

	r := chi.NewRouter()

	// Global middleware
	r.Use(Recovery)
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(MaxBodySize(64 << 10))

	r.Get("/healthz", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/commands", handlers.ListCommands)
		r.Get("/commands/{name}", handlers.GetCommand)
	})

	r.Get("/ws", HandleWebSocket(sessions, cfg.AllowedOrigins))

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		sessions: sessions,
		detach:   engine.Subscribe(sessions),
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Sessions returns the live connection registry.
func (s *Server) Sessions() *SessionRegistry { return s.sessions }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		getLog().Info().Str("addr", s.httpServer.Addr).Msg("Console server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.detach()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, closes live sessions and detaches from the engine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.detach()
	s.sessions.CloseAll()
	if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
