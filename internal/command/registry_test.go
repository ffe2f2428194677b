// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	_, ok := r.Lookup("echo")
	assert.False(t, ok)

	spec := &Spec{Name: "echo", Summary: "Displays text back to the sender"}
	prev, replaced := r.Register(spec)
	assert.False(t, replaced)
	assert.Nil(t, prev)

	got, ok := r.Lookup("echo")
	require.True(t, ok)
	assert.Same(t, spec, got)
	assert.True(t, r.Has("echo"))
	assert.False(t, r.Has("ech"))
}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry()
	first := &Spec{Name: "dup", Summary: "first"}
	second := &Spec{Name: "dup", Summary: "second"}

	r.Register(first)
	prev, replaced := r.Register(second)

	assert.True(t, replaced)
	assert.Same(t, first, prev)

	got, ok := r.Lookup("dup")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Listing(t *testing.T) {
	r := NewRegistry()
	r.Register(&Spec{Name: "help", Summary: "Displays information on registered commands"})
	r.Register(&Spec{Name: "echo", Summary: "Displays text back to the sender"})
	r.Register(&Spec{Name: "exit", Summary: "Immediately exits the application"})

	assert.Equal(t, []string{"echo", "exit", "help"}, r.Names())
	assert.Equal(t, []Summary{
		{Name: "echo", Summary: "Displays text back to the sender"},
		{Name: "exit", Summary: "Immediately exits the application"},
		{Name: "help", Summary: "Displays information on registered commands"},
	}, r.List())
}

func TestRegistry_RenderHelp(t *testing.T) {
	r := NewRegistry()
	r.Register(repeatSchema().Spec())

	help, ok := r.RenderHelp("repeat")
	require.True(t, ok)
	assert.Contains(t, help, "Usage: repeat [flags] <message>")

	_, ok = r.RenderHelp("missing")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(&Spec{Name: fmt.Sprintf("cmd%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Names()
			_, _ = r.Lookup("cmd0")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
}
