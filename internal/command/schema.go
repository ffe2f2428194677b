// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Schema describes how a token list becomes a value of type C.
// Positional arguments and flags are bound to fields of a fresh C through
// accessor funcs, so a Schema can be shared and parsed from concurrently.
//
//	schema := command.NewSchema[Repeat]("repeat", "Prints the message back COUNT times").
//		Arg("message", "The message to echo back", func(c *Repeat) *string { return &c.Message }).
//		IntFlag("count", "c", 1, "How many times to echo", func(c *Repeat) *int { return &c.Count })
type Schema[C any] struct {
	name    string
	summary string
	long    string
	args    []positional[C]
	flags   []func(fs *pflag.FlagSet, c *C)
}

type positional[C any] struct {
	ArgInfo
	set func(c *C, values []string)
}

// ArgInfo describes one positional argument for help output.
type ArgInfo struct {
	Name     string
	Help     string
	Required bool
	Variadic bool
}

// Placeholder renders the argument the way usage lines show it.
func (a ArgInfo) Placeholder() string {
	p := "<" + a.Name + ">"
	if !a.Required {
		p = "[" + a.Name + "]"
	}
	if a.Variadic {
		p += "..."
	}
	return p
}

// NewSchema starts a schema for the command typed as name.
// It panics if name cannot be typed as the first token of a line.
func NewSchema[C any](name, summary string) *Schema[C] {
	if err := ValidateName(name); err != nil {
		panic(err)
	}
	return &Schema[C]{name: name, summary: summary}
}

// ValidateName checks that name is a single non-empty token without quoting.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n'\"\\#") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Name returns the command name.
func (s *Schema[C]) Name() string { return s.name }

// Long sets the long-form help shown by --help and the help command.
func (s *Schema[C]) Long(text string) *Schema[C] {
	s.long = strings.TrimSpace(text)
	return s
}

// Arg adds a required positional string argument.
func (s *Schema[C]) Arg(name, help string, field func(*C) *string) *Schema[C] {
	return s.addArg(ArgInfo{Name: name, Help: help, Required: true}, func(c *C, v []string) {
		*field(c) = v[0]
	})
}

// OptionalArg adds an optional positional string argument. The field keeps
// its zero value when the argument is absent; present reports whether it was given.
func (s *Schema[C]) OptionalArg(name, help string, field func(*C) (value *string, present *bool)) *Schema[C] {
	return s.addArg(ArgInfo{Name: name, Help: help}, func(c *C, v []string) {
		value, present := field(c)
		*value = v[0]
		if present != nil {
			*present = true
		}
	})
}

// Rest collects every remaining positional argument. It must be the last argument.
func (s *Schema[C]) Rest(name, help string, required bool, field func(*C) *[]string) *Schema[C] {
	return s.addArg(ArgInfo{Name: name, Help: help, Required: required, Variadic: true}, func(c *C, v []string) {
		*field(c) = append([]string(nil), v...)
	})
}

func (s *Schema[C]) addArg(info ArgInfo, set func(*C, []string)) *Schema[C] {
	if n := len(s.args); n > 0 {
		prev := s.args[n-1]
		if prev.Variadic {
			panic(fmt.Sprintf("command %s: argument %s follows variadic %s", s.name, info.Name, prev.Name))
		}
		if !prev.Required && info.Required {
			panic(fmt.Sprintf("command %s: required argument %s follows optional %s", s.name, info.Name, prev.Name))
		}
	}
	s.args = append(s.args, positional[C]{ArgInfo: info, set: set})
	return s
}

// StringFlag adds a --name/-short string flag.
func (s *Schema[C]) StringFlag(name, short, def, help string, field func(*C) *string) *Schema[C] {
	s.flags = append(s.flags, func(fs *pflag.FlagSet, c *C) {
		fs.StringVarP(field(c), name, short, def, help)
	})
	return s
}

// IntFlag adds a --name/-short integer flag.
func (s *Schema[C]) IntFlag(name, short string, def int, help string, field func(*C) *int) *Schema[C] {
	s.flags = append(s.flags, func(fs *pflag.FlagSet, c *C) {
		fs.IntVarP(field(c), name, short, def, help)
	})
	return s
}

// BoolFlag adds a --name/-short switch.
func (s *Schema[C]) BoolFlag(name, short string, def bool, help string, field func(*C) *bool) *Schema[C] {
	s.flags = append(s.flags, func(fs *pflag.FlagSet, c *C) {
		fs.BoolVarP(field(c), name, short, def, help)
	})
	return s
}

// DurationFlag adds a --name/-short duration flag such as 1.5s or 200ms.
func (s *Schema[C]) DurationFlag(name, short string, def time.Duration, help string, field func(*C) *time.Duration) *Schema[C] {
	s.flags = append(s.flags, func(fs *pflag.FlagSet, c *C) {
		fs.DurationVarP(field(c), name, short, def, help)
	})
	return s
}

func (s *Schema[C]) flagSet(c *C) *pflag.FlagSet {
	fs := pflag.NewFlagSet(s.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = true
	for _, bind := range s.flags {
		bind(fs, c)
	}
	return fs
}

// Parse turns args (without the command name) into a C with defaults applied.
// Any failure, including a --help request, is a *ParseError.
func (s *Schema[C]) Parse(args []string) (C, error) {
	var c C
	fs := s.flagSet(&c)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return c, &ParseError{Command: s.name, Err: ErrHelpRequested, Usage: s.Spec().Help()}
		}
		return c, s.fail(err)
	}

	rest := fs.Args()
	for _, arg := range s.args {
		switch {
		case arg.Variadic:
			if len(rest) == 0 {
				if arg.Required {
					return c, s.fail(fmt.Errorf("%w '%s'", ErrMissingArgument, arg.Placeholder()))
				}
				continue
			}
			arg.set(&c, rest)
			rest = nil
		case len(rest) == 0:
			if arg.Required {
				return c, s.fail(fmt.Errorf("%w '%s'", ErrMissingArgument, arg.Placeholder()))
			}
		default:
			arg.set(&c, rest[:1])
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		return c, s.fail(fmt.Errorf("%w '%s'", ErrUnexpectedArgument, rest[0]))
	}

	return c, nil
}

func (s *Schema[C]) fail(err error) *ParseError {
	return &ParseError{Command: s.name, Err: err, Usage: "Usage: " + s.usageLine()}
}

func (s *Schema[C]) usageLine() string {
	parts := []string{s.name}
	if len(s.flags) > 0 {
		parts = append(parts, "[flags]")
	}
	for _, a := range s.args {
		parts = append(parts, a.Placeholder())
	}
	return strings.Join(parts, " ")
}

// Spec compiles the type-erased metadata stored in a Registry.
func (s *Schema[C]) Spec() *Spec {
	args := make([]ArgInfo, len(s.args))
	for i, a := range s.args {
		args[i] = a.ArgInfo
	}

	var zero C
	fs := s.flagSet(&zero)
	fs.BoolP("help", "h", false, "Print help")

	return &Spec{
		Name:    s.name,
		Summary: s.summary,
		Long:    s.long,
		Usage:   s.usageLine(),
		Args:    args,
		Flags:   fs.FlagUsages(),
	}
}
