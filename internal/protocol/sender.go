// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// Sender identifies where a line of text came from and where its responses go.
// It carries no data beyond its identity and is safe to copy and compare.
type Sender struct {
	id uuid.UUID
}

// NewSender returns a fresh, never reused identity.
func NewSender() Sender {
	return Sender{id: uuid.New()}
}

// ParseSender restores a Sender from its String form.
func ParseSender(s string) (Sender, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Sender{}, fmt.Errorf("invalid sender %q: %w", s, err)
	}
	return Sender{id: id}, nil
}

// IsZero reports whether s is the zero Sender, which no front end owns.
func (s Sender) IsZero() bool {
	return s.id == uuid.Nil
}

func (s Sender) String() string {
	return s.id.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Sender) MarshalText() ([]byte, error) {
	return []byte(s.id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sender) UnmarshalText(b []byte) error {
	parsed, err := ParseSender(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
