// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"sync"

	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	routerLog     *zerolog.Logger
	routerLogOnce sync.Once
)

func getRouterLog() *zerolog.Logger {
	routerLogOnce.Do(func() {
		l := logger.GetRouterLogger()
		routerLog = &l
	})
	return routerLog
}

// Subscriber is a front end attached to the router. Owns is asked for every
// response; Deliver receives those it claims, in emission order.
// Deliver runs on the tick goroutine and must not block.
type Subscriber interface {
	Owns(sender protocol.Sender) bool
	Deliver(resp protocol.Response)
}

// Prompter is implemented by front ends that show a prompt.
type Prompter interface {
	SetPrompt(sender protocol.Sender, prompt string)
}

type subscription struct {
	id  uint64
	sub Subscriber
}

// Router fans responses out to the subscribers owning their target.
// A response nobody owns is dropped without error.
type Router struct {
	mu   sync.RWMutex
	subs []subscription
	next uint64
}

// NewRouter creates a router with no subscribers.
func NewRouter() *Router {
	return &Router{}
}

// Subscribe attaches s and returns a func that detaches it. Calling the
// returned func more than once is harmless.
func (r *Router) Subscribe(s Subscriber) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	r.subs = append(r.subs, subscription{id: id, sub: s})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.subs = lo.Reject(r.subs, func(s subscription, _ int) bool { return s.id == id })
		})
	}
}

// Len returns the number of attached subscribers.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *Router) snapshot() []subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]subscription(nil), r.subs...)
}

// Route delivers responses in order and returns how many had at least one owner.
func (r *Router) Route(responses []protocol.Response) int {
	if len(responses) == 0 {
		return 0
	}
	subs := r.snapshot()

	delivered := 0
	for _, resp := range responses {
		owners := lo.Filter(subs, func(s subscription, _ int) bool { return s.sub.Owns(resp.Target) })
		if len(owners) == 0 {
			getRouterLog().Trace().
				Str("target", resp.Target.String()).
				Str("outcome", resp.Outcome.String()).
				Msg("Response has no owner")
			continue
		}
		for _, o := range owners {
			o.sub.Deliver(resp)
		}
		delivered++
	}
	return delivered
}

// SetPrompt updates the prompt of every Prompter owning sender.
func (r *Router) SetPrompt(sender protocol.Sender, prompt string) int {
	n := 0
	for _, s := range r.snapshot() {
		p, ok := s.sub.(Prompter)
		if !ok || !s.sub.Owns(sender) {
			continue
		}
		p.SetPrompt(sender, prompt)
		n++
	}
	return n
}

// Only returns a Subscriber that owns exactly sender.
func Only(sender protocol.Sender, deliver func(protocol.Response)) Subscriber {
	return &singleSubscriber{sender: sender, deliver: deliver}
}

type singleSubscriber struct {
	sender  protocol.Sender
	deliver func(protocol.Response)
}

func (s *singleSubscriber) Owns(sender protocol.Sender) bool { return sender == s.sender }
func (s *singleSubscriber) Deliver(resp protocol.Response)   { s.deliver(resp) }

// SenderSet tracks the live senders of a front end serving many callers.
type SenderSet struct {
	mu   sync.RWMutex
	live map[protocol.Sender]struct{}
}

// NewSenderSet creates an empty set.
func NewSenderSet() *SenderSet {
	return &SenderSet{live: make(map[protocol.Sender]struct{})}
}

// Add marks sender live.
func (s *SenderSet) Add(sender protocol.Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[sender] = struct{}{}
}

// Remove forgets sender; later responses to it become orphans.
func (s *SenderSet) Remove(sender protocol.Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, sender)
}

// Owns reports whether sender is live.
func (s *SenderSet) Owns(sender protocol.Sender) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.live[sender]
	return ok
}

// Len returns the number of live senders.
func (s *SenderSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}
