// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Tokenize splits a raw line using shell quoting rules.
// A blank line yields no tokens and no error; callers drop it silently.
func Tokenize(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens, err := shlex.Split(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(tokens) == 0 {
		// Only comments, e.g. "# note"
		return nil, nil
	}
	return tokens, nil
}
