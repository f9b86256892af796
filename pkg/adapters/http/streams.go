package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/intake/pkg/domain"
)

// StreamManager fans session transition events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionKey -> set of channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(key string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(key string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping event", "session_key", key)
		}
	}
}

// Hooks returns lifecycle hooks that publish transitions and rejections.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(key string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			sm.logger.Error("SSE: event encode failed", "err", err)
			return
		}
		sm.Broadcast(key, string(data))
	}
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			publish(ev.SessionKey, ev)
		},
		OnRejection: func(_ context.Context, ev *domain.RejectionEvent) {
			publish(ev.SessionKey, ev)
		},
	}
}

// SubscribeEvents handles GET /v1/events?session_key=...&watch=transition,rejection
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	key := r.URL.Query().Get("session_key")
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "session_key query parameter is required")
		return
	}

	var watch map[string]bool
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watch = make(map[string]bool)
		for _, t := range strings.Split(raw, ",") {
			watch[strings.TrimSpace(t)] = true
		}
	}

	ch, cancel := s.streams.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil {
				var base domain.EventBase
				if err := json.Unmarshal([]byte(msg), &base); err == nil && !watch[string(base.Type)] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
