// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns submitted lines into typed command invocations and
// routes the outcomes back to whoever submitted them.
//
// Work happens in ticks. Every tick runs the same stages in a fixed order:
//
//	Input         front ends drain their line sources and call Submit
//	Dispatch      lines are tokenized, matched by name and parsed; unknown
//	              names and parse failures become Err responses
//	Process       handlers run once per parsed command, in arrival order
//	Response      every response of the tick is routed to its owning front end
//	PostResponse  front end bookkeeping
//
// A tick never blocks and never fails. Nothing but the command registry
// survives from one tick to the next.
package dispatch
