// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtin provides the commands every console starts with.
package builtin

import (
	"fmt"
	"strings"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/samber/lo"
)

// Echo displays text back to the sender.
type Echo struct {
	Message string
}

// Exit stops the engine.
type Exit struct{}

// Help lists commands or shows one command's help.
type Help struct {
	Query    string
	HasQuery bool
}

// Prompt changes the sender's prompt.
type Prompt struct {
	Text string
}

// EchoSchema declares the echo command.
func EchoSchema() *command.Schema[Echo] {
	return command.NewSchema[Echo]("echo", "Displays text back to the sender").
		Arg("message", "The message to send", func(c *Echo) *string { return &c.Message })
}

// ExitSchema declares the exit command.
func ExitSchema() *command.Schema[Exit] {
	return command.NewSchema[Exit]("exit", "Immediately exits the application")
}

// HelpSchema declares the help command.
func HelpSchema() *command.Schema[Help] {
	return command.NewSchema[Help]("help", "Displays information on registered commands").
		OptionalArg("command", "The command to get help information for", func(c *Help) (*string, *bool) {
			return &c.Query, &c.HasQuery
		})
}

// PromptSchema declares the prompt command.
func PromptSchema() *command.Schema[Prompt] {
	return command.NewSchema[Prompt]("prompt", "Changes the prompt shown by your console").
		Long("Only consoles that display a prompt are affected. Quote the text to keep trailing spaces.").
		Arg("text", "The new prompt", func(c *Prompt) *string { return &c.Text })
}

// EchoHandler answers with the message unchanged.
func EchoHandler(ctx *dispatch.Context[Echo]) {
	ctx.Ok(ctx.Data.Message)
}

// ExitHandler asks the engine to stop once the pending lines are handled.
func ExitHandler(ctx *dispatch.Context[Exit]) {
	ctx.Engine().RequestExit()
}

// HelpHandler renders the command listing or one command's long help.
func HelpHandler(ctx *dispatch.Context[Help]) {
	registry := ctx.Engine().Registry()

	if ctx.Data.HasQuery {
		help, ok := registry.RenderHelp(ctx.Data.Query)
		if !ok {
			ctx.Err(dispatch.NoSuchCommand(ctx.Data.Query))
			return
		}
		ctx.Lines(strings.Split(help, "\n")...)
		return
	}

	ctx.Lines(Listing(registry.List())...)
}

// Listing formats commands as "Available commands:" followed by one padded row each.
func Listing(commands []command.Summary) []string {
	width := lo.Max(lo.Map(commands, func(c command.Summary, _ int) int { return len(c.Name) }))

	lines := make([]string, 0, len(commands)+1)
	lines = append(lines, "Available commands:")
	for _, c := range commands {
		if c.Summary == "" {
			lines = append(lines, "  "+c.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-*s - %s", width, c.Name, c.Summary))
	}
	return lines
}

// PromptHandler updates the prompt of the front ends owning the sender.
func PromptHandler(ctx *dispatch.Context[Prompt]) {
	if ctx.Engine().SetPrompt(ctx.Sender, ctx.Data.Text) == 0 {
		ctx.Err("this console has no prompt to change")
	}
}

// RegisterAll adds echo, exit, help and prompt to e.
func RegisterAll(e *dispatch.Engine) {
	dispatch.Register(e, EchoSchema(), EchoHandler)
	dispatch.Register(e, ExitSchema(), ExitHandler)
	dispatch.Register(e, HelpSchema(), HelpHandler)
	dispatch.Register(e, PromptSchema(), PromptHandler)
}
