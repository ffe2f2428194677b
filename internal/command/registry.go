// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"sort"
	"sync"

	"github.com/noldarim/commandeer/internal/logger"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetRegistryLogger()
		log = &l
	})
	return log
}

// Summary is one row of a command listing.
type Summary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Registry maps command names to their specs.
// Registration may happen at any time; later registrations are visible immediately.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register stores spec under spec.Name and returns the spec it replaced, if any.
// Replacing an existing name is allowed; the newest spec wins.
func (r *Registry) Register(spec *Spec) (previous *Spec, replaced bool) {
	r.mu.Lock()
	previous, replaced = r.specs[spec.Name]
	r.specs[spec.Name] = spec
	r.mu.Unlock()

	if replaced {
		getLog().Warn().
			Str("command", spec.Name).
			Msg("Command registered twice, the newer registration replaces the older one")
	} else {
		getLog().Debug().Str("command", spec.Name).Msg("Command registered")
	}
	return previous, replaced
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.specs)
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// List returns (name, summary) pairs sorted by name.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.MapToSlice(r.specs, func(name string, spec *Spec) Summary {
		return Summary{Name: name, Summary: spec.Summary}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderHelp returns the long help for name.
func (r *Registry) RenderHelp(name string) (string, bool) {
	spec, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	return spec.Help(), true
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
