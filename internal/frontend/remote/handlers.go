// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/dispatch"
)

// CommandHelp is the body of GET /api/v1/commands/{name}.
type CommandHelp struct {
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
	Usage   string `json:"usage"`
	Help    string `json:"help"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handlers serves the read-only REST surface.
type Handlers struct {
	engine   *dispatch.Engine
	sessions *SessionRegistry
}

// NewHandlers creates the handler set.
func NewHandlers(engine *dispatch.Engine, sessions *SessionRegistry) *Handlers {
	return &Handlers{engine: engine, sessions: sessions}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		getLog().Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// Health handles GET /healthz
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"state":    h.engine.State().String(),
		"sessions": h.sessions.Len(),
		"commands": h.engine.Registry().Len(),
	})
}

// ListCommands handles GET /api/v1/commands
func (h *Handlers) ListCommands(w http.ResponseWriter, _ *http.Request) {
	list := h.engine.Commands()
	if list == nil {
		list = []command.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCommand handles GET /api/v1/commands/{name}
func (h *Handlers) GetCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	spec, ok := h.engine.Registry().Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, dispatch.NoSuchCommand(name))
		return
	}
	writeJSON(w, http.StatusOK, CommandHelp{
		Name:    spec.Name,
		Summary: spec.Summary,
		Usage:   spec.Usage,
		Help:    spec.Help(),
	})
}
