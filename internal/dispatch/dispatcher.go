// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"reflect"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/protocol"
)

// dispatcher claims tokenized lines for one command type.
type dispatcher interface {
	commandName() string
	dispatch(in protocol.TokenizedInput) (invocation, error)
}

// invocation is a parsed command waiting for its handler.
type invocation interface {
	commandName() string
	sender() protocol.Sender
	invoke(ctx context.Context, e *Engine)
}

type typedDispatcher[C any] struct {
	schema  *command.Schema[C]
	handler Handler[C]
}

func (d *typedDispatcher[C]) commandName() string { return d.schema.Name() }

func (d *typedDispatcher[C]) dispatch(in protocol.TokenizedInput) (invocation, error) {
	data, err := d.schema.Parse(in.Args)
	if err != nil {
		return nil, err
	}
	return &typedInvocation[C]{
		name:    d.schema.Name(),
		event:   protocol.Dispatch[C]{Sender: in.Sender, Data: data},
		handler: d.handler,
	}, nil
}

type typedInvocation[C any] struct {
	name    string
	event   protocol.Dispatch[C]
	handler Handler[C]
}

func (i *typedInvocation[C]) commandName() string     { return i.name }
func (i *typedInvocation[C]) sender() protocol.Sender { return i.event.Sender }

func (i *typedInvocation[C]) invoke(ctx context.Context, e *Engine) {
	i.handler(&Context[C]{
		Sender:  i.event.Sender,
		Data:    i.event.Data,
		Command: i.name,
		ctx:     ctx,
		engine:  e,
	})
}

// Register adds command type C to e. Lines whose first token is the schema's
// name are parsed into a C and passed to handler during the Process stage.
//
// Registering the same type again replaces its dispatcher under the new
// name; a previous name keeps answering with the dispatcher it had, since
// registered names are never removed. Registering a different type under a
// name already in use takes the name over; the older type stays registered
// but is never reached.
func Register[C any](e *Engine, schema *command.Schema[C], handler Handler[C]) {
	d := &typedDispatcher[C]{schema: schema, handler: handler}
	key := reflect.TypeFor[C]()

	e.mu.Lock()
	if old, ok := e.dispatchers[key]; ok {
		getLog().Warn().
			Str("type", key.String()).
			Str("command", old.commandName()).
			Msg("Command type registered twice, replacing its dispatcher")
	}
	e.dispatchers[key] = d
	e.byName[d.commandName()] = d
	e.mu.Unlock()

	e.registry.Register(schema.Spec())
}
