// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"fmt"
)

// Stage is one step of a tick.
type Stage int

const (
	StageInput Stage = iota
	StageDispatch
	StageProcess
	StageResponse
	StagePostResponse
)

var stageNames = [...]string{"input", "dispatch", "process", "response", "post_response"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageInput, StageDispatch, StageProcess, StageResponse, StagePostResponse}
}

// State is where the engine currently is within a tick.
type State int32

const (
	StateIdle State = iota
	StateTokenizing
	StateDispatching
	StateAwaitingProcess
	StateResponding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTokenizing:
		return "tokenizing"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingProcess:
		return "awaiting_process"
	case StateResponding:
		return "responding"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// System is external code run once per tick in the stage it was added to.
type System func(ctx context.Context)

type namedSystem struct {
	name string
	run  System
}
