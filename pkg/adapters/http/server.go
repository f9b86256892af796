package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/sanitize"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
)

// Server exposes the agent over HTTP: a request/response endpoint, a
// websocket chat and an SSE stream of session transitions.
type Server struct {
	handle   dispatch.Handler
	form     *domain.Form
	streams  *StreamManager
	metrics  http.Handler
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams shares a StreamManager whose hooks are registered on the agent.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.streams = streams
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler. handle is usually
// (*dispatch.Dispatcher).Dispatch so requests of one session stay ordered.
func NewHandler(handle dispatch.Handler, form *domain.Form, opts ...Option) http.Handler {
	s := &Server{
		handle: handle,
		form:   form,
		logger: logging.NewNop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(api chi.Router) {
		api.Get("/form", s.GetForm)
		api.Post("/messages", s.PostMessage)
		api.Get("/chat/ws", s.ChatWebSocket)
		api.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// prepare validates and sanitizes an inbound message.
func prepare(msg *domain.Message) error {
	msg.SessionKey = strings.TrimSpace(msg.SessionKey)
	if msg.SessionKey == "" {
		return errors.New("session_key is required")
	}
	clean, err := sanitize.Input(msg.Text)
	if err != nil {
		return err
	}
	msg.Text = clean
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Sender.ID == "" {
		msg.Sender.ID = msg.SessionKey
	}
	return nil
}

// PostMessage handles POST /v1/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&msg); err != nil {
		s.logger.Warn("PostMessage: invalid request body", "err", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := prepare(&msg); err != nil {
		s.logger.Warn("PostMessage: input rejected", "err", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.handle(r.Context(), msg)
	if err != nil {
		s.logger.Error("PostMessage: handle failed", "session_key", msg.SessionKey, "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// GetForm handles GET /v1/form.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"fields": s.form.Fields})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "intake-http",
		"version": strings.TrimSpace(intake.Version),
	})
}
