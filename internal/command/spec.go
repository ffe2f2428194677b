// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Spec is the compiled, type-erased description of a registered command.
// It is immutable once built.
type Spec struct {
	Name    string
	Summary string
	Long    string
	Usage   string
	Args    []ArgInfo
	Flags   string
}

// Help renders the long-form help text.
func (s *Spec) Help() string {
	var b strings.Builder

	if s.Summary != "" {
		b.WriteString(s.Summary)
		b.WriteString("\n\n")
	}
	if s.Long != "" {
		b.WriteString(s.Long)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Usage: %s\n", s.Usage)

	if len(s.Args) > 0 {
		width := lo.Max(lo.Map(s.Args, func(a ArgInfo, _ int) int { return len(a.Placeholder()) }))
		b.WriteString("\nArguments:\n")
		for _, a := range s.Args {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, a.Placeholder(), a.Help)
		}
	}

	if s.Flags != "" {
		b.WriteString("\nFlags:\n")
		b.WriteString(s.Flags)
	}

	return strings.TrimRight(b.String(), "\n")
}
