// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/noldarim/commandeer/internal/dispatch"
	"github.com/noldarim/commandeer/internal/protocol"
)

const (
	// WebSocket limits
	maxLineSize = 4096
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	writeWait   = 10 * time.Second
	maxSessions = 1000
	sendBuffer  = 64
)

// Frame types sent to clients.
const (
	FrameHello    = "hello"
	FrameResponse = "response"
	FramePrompt   = "prompt"
)

// Frame is the envelope for server → client messages.
type Frame struct {
	Type    string   `json:"type"`
	Sender  string   `json:"sender,omitempty"`
	Outcome string   `json:"outcome,omitempty"` // "ok" or "err"
	Lines   []string `json:"lines,omitempty"`
	Prompt  string   `json:"prompt,omitempty"`
}

// newUpgrader accepts any origin when allowedOrigins is empty (local use);
// otherwise only the listed origins.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}
}

// session is one connected client and the sender it submits as.
type session struct {
	sender protocol.Sender
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (s *session) close() {
	s.once.Do(func() { close(s.send) })
}

// SessionRegistry tracks live connections. It is the dispatch.Subscriber for
// every sender it has handed out.
type SessionRegistry struct {
	engine *dispatch.Engine

	mu       sync.RWMutex
	sessions map[protocol.Sender]*session
}

// NewSessionRegistry creates an empty registry submitting into engine.
func NewSessionRegistry(engine *dispatch.Engine) *SessionRegistry {
	return &SessionRegistry{
		engine:   engine,
		sessions: make(map[protocol.Sender]*session),
	}
}

func (r *SessionRegistry) add(s *session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= maxSessions {
		return false
	}
	r.sessions[s.sender] = s
	return true
}

func (r *SessionRegistry) remove(s *session) {
	r.mu.Lock()
	delete(r.sessions, s.sender)
	r.mu.Unlock()
	s.close()
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll ends every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[protocol.Sender]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// Owns implements dispatch.Subscriber.
func (r *SessionRegistry) Owns(sender protocol.Sender) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sender]
	return ok
}

// Deliver implements dispatch.Subscriber. A client too slow to drain its
// buffer loses the frame rather than stalling the tick.
func (r *SessionRegistry) Deliver(resp protocol.Response) {
	r.sendFrame(resp.Target, Frame{
		Type:    FrameResponse,
		Outcome: resp.Outcome.String(),
		Lines:   resp.Message.Lines,
	})
}

// SetPrompt implements dispatch.Prompter.
func (r *SessionRegistry) SetPrompt(sender protocol.Sender, prompt string) {
	r.sendFrame(sender, Frame{Type: FramePrompt, Prompt: prompt})
}

func (r *SessionRegistry) sendFrame(target protocol.Sender, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		getLog().Error().Err(err).Msg("Failed to marshal frame")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[target]
	if !ok {
		return
	}
	select {
	case s.send <- data:
	default:
		getLog().Warn().Str("sender", target.String()).Str("frame", frame.Type).Msg("Dropping frame for slow WebSocket client")
	}
}

// HandleWebSocket upgrades the connection and runs the session until it closes.
func HandleWebSocket(sessions *SessionRegistry, allowedOrigins []string) http.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			getLog().Error().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		s := &session{
			sender: protocol.NewSender(),
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
		}
		if !sessions.add(s) {
			getLog().Warn().Msg("WebSocket session limit reached")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many sessions"))
			conn.Close()
			return
		}
		getLog().Info().
			Str("remote", r.RemoteAddr).
			Str("sender", s.sender.String()).
			Msg("WebSocket session opened")

		sessions.sendFrame(s.sender, Frame{Type: FrameHello, Sender: s.sender.String()})

		go s.writePump()
		s.readPump(sessions)
	}
}

func (s *session) readPump(sessions *SessionRegistry) {
	defer func() {
		sessions.remove(s)
		s.conn.Close()
		getLog().Info().Str("sender", s.sender.String()).Msg("WebSocket session closed")
	}()

	s.conn.SetReadLimit(maxLineSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				getLog().Error().Err(err).Msg("WebSocket read error")
			}
			return
		}
		if kind != websocket.TextMessage {
			getLog().Debug().Int("kind", kind).Msg("Ignoring non-text WebSocket frame")
			continue
		}

		line := strings.TrimRight(string(data), "\r\n")
		if !sessions.engine.Submit(s.sender, line) {
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Session closed, send close frame.
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				getLog().Error().Err(err).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
