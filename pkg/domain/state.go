package domain

import (
	"fmt"
	"time"
)

// Phase defines where a session is in the dialogue.
type Phase string

const (
	PhaseIdle       Phase = "idle"       // No active form
	PhaseCollecting Phase = "collecting" // Answering Form.Fields[Step]
	PhaseConfirming Phase = "confirming" // Reviewing the summary
)

// Session represents one user's dialogue state.
//
// A session is only kept in the store while the user is mid-dialogue. Loading
// an unknown key yields an idle Session rather than nil, so callers never have
// to treat "missing" as a state of its own.
type Session struct {
	// Key is the transport identity of the user (one session per user).
	Key string `json:"key"`

	// Phase indicates whether the user is idle, answering, or confirming.
	Phase Phase `json:"phase"`

	// Step is the index of the field being collected. Only meaningful while
	// Phase == PhaseCollecting.
	Step int `json:"step"`

	// Answers holds the accepted raw answers by field name.
	Answers Answers `json:"answers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an idle session for the given key.
func NewSession(key string, now time.Time) *Session {
	return &Session{
		Key:       key,
		Phase:     PhaseIdle,
		Answers:   make(Answers),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsIdle reports whether the session has no active form.
func (s *Session) IsIdle() bool {
	return s == nil || s.Phase == PhaseIdle || s.Phase == ""
}

// State returns the human readable state name, e.g. "collecting:size".
func (s *Session) State(form *Form) string {
	if s.IsIdle() {
		return string(PhaseIdle)
	}
	if s.Phase == PhaseCollecting && form != nil {
		if f, ok := form.At(s.Step); ok {
			return fmt.Sprintf("%s:%s", PhaseCollecting, f.Name)
		}
	}
	return string(s.Phase)
}

// Snapshot returns a deep copy of the session, safe to mutate.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = s.Answers.Clone()
	return &next
}

// Answers maps field names to the raw text the user gave.
// Iteration order is never relied upon; Form defines the order.
type Answers map[string]string

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
