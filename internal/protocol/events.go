// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Here lies the definition of the events flowing through one dispatch tick.
// Front ends produce RawInput, the tokenizer turns it into TokenizedInput,
// dispatchers turn that into Dispatch values for handlers, and everything
// that has something to say back produces a Response.
//
// None of these outlive the tick that created them.
package protocol

import (
	"encoding/json"
	"fmt"
)

// RawInput is one line of text submitted by a front end.
type RawInput struct {
	Sender Sender
	Text   string
}

// TokenizedInput is a RawInput split into a command name and its arguments.
type TokenizedInput struct {
	Sender Sender
	Name   string
	Args   []string
}

// Dispatch is a successfully parsed command of type C addressed to its handler.
type Dispatch[C any] struct {
	Sender Sender
	Data   C
}

// Outcome classifies a Response.
type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeErr
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeErr:
		return "err"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalJSON encodes the outcome as "ok" or "err".
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes "ok" or "err".
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "ok":
		*o = OutcomeOk
	case "err":
		*o = OutcomeErr
	default:
		return fmt.Errorf("unknown outcome %q", s)
	}
	return nil
}

// Response is the outcome of a command line, addressed to the sender that submitted it.
type Response struct {
	Target  Sender
	Message Message
	Outcome Outcome
}

// Ok builds a successful Response.
func Ok(target Sender, msg Message) Response {
	return Response{Target: target, Message: msg, Outcome: OutcomeOk}
}

// Err builds a failed Response.
func Err(target Sender, msg Message) Response {
	return Response{Target: target, Message: msg, Outcome: OutcomeErr}
}

// IsErr reports whether the response carries an Err outcome.
func (r Response) IsErr() bool {
	return r.Outcome == OutcomeErr
}
