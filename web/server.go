// Package web exposes the orchestrator over HTTP: JSON endpoints for
// session management and messaging, plus a per-session websocket feed of
// appended turns. Sessions live in process memory only; one orchestrator
// serves all of them.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/tailored-agentic-units/roundtable/conversation"
	"github.com/tailored-agentic-units/roundtable/core/protocol"
	"github.com/tailored-agentic-units/roundtable/observability"
	"github.com/tailored-agentic-units/roundtable/orchestrator"
)

const writeTimeout = 10 * time.Second

// Server hosts independent sessions over a shared orchestrator.
type Server struct {
	orch     *orchestrator.Orchestrator
	observer observability.Observer

	mu       sync.RWMutex
	sessions map[string]*conversation.Session
	feeds    map[string]map[chan protocol.Turn]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithObserver overrides the default slog observer.
func WithObserver(obs observability.Observer) Option {
	return func(s *Server) { s.observer = obs }
}

// NewServer creates a Server over the given orchestrator.
func NewServer(orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:     orch,
		observer: observability.NewSlogObserver(slog.Default()),
		sessions: make(map[string]*conversation.Session),
		feeds:    make(map[string]map[chan protocol.Turn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleMessage)
	mux.HandleFunc("GET /api/sessions/{id}/turns", s.handleTurns)
	mux.HandleFunc("GET /api/sessions/{id}/feed", s.handleFeed)
	return mux
}

type sessionResponse struct {
	ID string `json:"id"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Turns []protocol.Turn `json:"turns"`
	Error string          `json:"error,omitempty"`
}

type turnsResponse struct {
	Turns []protocol.Turn `json:"turns"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := conversation.NewSession()

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.emit(r.Context(), EventSessionCreated, observability.LevelInfo, map[string]any{
		"session": sess.ID(),
	})

	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID()})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "invalid message body", http.StatusBadRequest)
		return
	}

	before := sess.Log().Len()
	turns, err := s.orch.ProcessUserMessage(r.Context(), sess, req.Text)

	// Feed subscribers get everything the log gained, user turn included.
	if appended := sess.Log().Turns(); len(appended) > before {
		s.broadcast(sess.ID(), appended[before:])
	}

	switch {
	case errors.Is(err, orchestrator.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, messageResponse{Error: err.Error()})
	case err != nil:
		// The failed round already kept its earlier turns; report both.
		writeJSON(w, http.StatusBadGateway, messageResponse{Turns: turns, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, messageResponse{Turns: turns})
	}
}

func (s *Server) handleTurns(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, turnsResponse{Turns: sess.Log().Turns()})
}

// handleFeed upgrades to a websocket and streams every turn appended to
// the session from this point on, one JSON-encoded turn per message.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.emit(r.Context(), EventError, observability.LevelWarning, map[string]any{
			"session": sess.ID(),
			"error":   err.Error(),
		})
		return
	}
	defer conn.CloseNow()

	ch, cancel := s.subscribe(sess.ID())
	defer cancel()

	s.emit(r.Context(), EventFeedOpened, observability.LevelVerbose, map[string]any{
		"session": sess.ID(),
	})

	// Reads are drained only to learn about client disconnects; the feed
	// is one-way.
	ctx := r.Context()
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for turn := range ch {
		data, err := json.Marshal(turn)
		if err != nil {
			continue
		}

		writeCtx, done := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		done()
		if err != nil {
			return
		}
	}

	conn.Close(websocket.StatusNormalClosure, "feed closed")
}

func (s *Server) session(id string) (*conversation.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// subscribe registers a feed channel for the session. The returned cancel
// removes the registration and closes the channel; it is safe to call more
// than once.
func (s *Server) subscribe(sessionID string) (chan protocol.Turn, func()) {
	ch := make(chan protocol.Turn, 16)

	s.mu.Lock()
	if s.feeds[sessionID] == nil {
		s.feeds[sessionID] = make(map[chan protocol.Turn]struct{})
	}
	s.feeds[sessionID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// Closing under the write lock excludes broadcast, which only
			// sends while holding the read lock.
			s.mu.Lock()
			delete(s.feeds[sessionID], ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// broadcast delivers turns to every feed subscriber of the session. Slow
// subscribers drop turns rather than block the round loop's caller.
func (s *Server) broadcast(sessionID string, turns []protocol.Turn) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.feeds[sessionID] {
		for _, turn := range turns {
			select {
			case ch <- turn:
			default:
			}
		}
	}
}

func (s *Server) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "web.Server",
		Data:      data,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
