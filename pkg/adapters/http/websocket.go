package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/aretw0/intake/internal/sanitize"
	"github.com/aretw0/intake/pkg/domain"
)

// chatFrame is one inbound websocket frame.
type chatFrame struct {
	Text   string        `json:"text"`
	Sender domain.Sender `json:"sender"`
}

// replyFrame is one outbound websocket frame.
type replyFrame struct {
	Type  string        `json:"type"` // "reply" or "error"
	Reply *domain.Reply `json:"reply,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ChatWebSocket handles GET /v1/chat/ws?session_key=...
// The session key is fixed for the connection; every text frame is one
// message and gets exactly one reply frame.
func (s *Server) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("session_key"))
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "session_key query parameter is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(sanitize.DefaultMaxInputSize) * 4)

	s.logger.Info("websocket chat opened", "session_key", key)
	ctx := r.Context()
	for {
		var frame chatFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", "session_key", key, "err", err)
			}
			return
		}

		msg := domain.Message{SessionKey: key, Text: frame.Text, Sender: frame.Sender}
		out := replyFrame{Type: "reply"}
		if err := prepare(&msg); err != nil {
			out = replyFrame{Type: "error", Error: err.Error()}
		} else if reply, err := s.handle(ctx, msg); err != nil {
			s.logger.Error("websocket handle failed", "session_key", key, "err", err)
			out = replyFrame{Type: "error", Error: "failed to process message"}
		} else {
			out.Reply = &reply
		}

		if err := conn.WriteJSON(out); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				s.logger.Debug("websocket write failed", "session_key", key, "err", err)
			}
			return
		}
	}
}
