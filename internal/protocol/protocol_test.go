// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Identity(t *testing.T) {
	a := NewSender()
	b := NewSender()

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, a)
	assert.False(t, a.IsZero())
	assert.True(t, Sender{}.IsZero())

	parsed, err := ParseSender(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	_, err = ParseSender("not-a-sender")
	assert.Error(t, err)
}

func TestSender_UsableAsMapKey(t *testing.T) {
	a := NewSender()
	owned := map[Sender]string{a: "stdio"}

	copied := a
	assert.Equal(t, "stdio", owned[copied])
	_, ok := owned[NewSender()]
	assert.False(t, ok)
}

func TestText_SplitsLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "hi", []string{"hi"}},
		{"multi", "a\nb\nc", []string{"a", "b", "c"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"empty", "", []string{""}},
		{"blank inner line", "a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in).Lines)
		})
	}
}

func TestMessage_StyleAndString(t *testing.T) {
	m := Lines("one", "two").WithStyle(StyleMuted)
	assert.Equal(t, StyleMuted, m.Style)
	assert.Equal(t, "one\ntwo", m.String())
}

func TestLines_CopiesInput(t *testing.T) {
	src := []string{"a", "b"}
	m := Lines(src...)
	src[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, m.Lines)
}

func TestResponse_Constructors(t *testing.T) {
	s := NewSender()

	ok := Ok(s, Text("fine"))
	assert.Equal(t, s, ok.Target)
	assert.Equal(t, OutcomeOk, ok.Outcome)
	assert.False(t, ok.IsErr())

	bad := Err(s, Text("broken"))
	assert.Equal(t, OutcomeErr, bad.Outcome)
	assert.True(t, bad.IsErr())
}

func TestResponse_JSON(t *testing.T) {
	s := NewSender()
	data, err := json.Marshal(Err(s, Lines("x", "y")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Target":"`+s.String()+`","Message":{"lines":["x","y"]},"Outcome":"err"}`, string(data))

	var back Response
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Err(s, Lines("x", "y")), back)
}
