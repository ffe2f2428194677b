// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package stdio

import (
	"strings"

	"github.com/samber/lo"
)

// Complete extends the command name under the cursor to the longest prefix
// shared by every matching name. Only the first word is completed, and a
// single match gets a trailing space.
func Complete(names []string, line string, pos int) (string, int, bool) {
	head, rest := line[:pos], line[pos:]
	if strings.ContainsAny(head, " \t") || (rest != "" && rest[0] != ' ') {
		return "", 0, false
	}

	matches := lo.Filter(names, func(n string, _ int) bool { return strings.HasPrefix(n, head) })
	if len(matches) == 0 {
		return "", 0, false
	}

	completion := matches[0]
	if len(matches) == 1 {
		completion += " "
	} else {
		for _, m := range matches[1:] {
			completion = commonPrefix(completion, m)
		}
	}
	if completion == head {
		return "", 0, false
	}

	if strings.HasSuffix(completion, " ") {
		rest = strings.TrimLeft(rest, " ")
	}
	return completion + rest, len(completion), true
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
