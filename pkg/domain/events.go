package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventRejection  EventType = "rejection"
	EventSink       EventType = "sink"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	SessionKey string    `json:"session_key"`
}

// TransitionEvent represents a move between dialogue states.
type TransitionEvent struct {
	EventBase
	From    string `json:"from"`
	To      string `json:"to"`
	Command string `json:"command,omitempty"`
}

// RejectionEvent represents an answer refused by the validator.
type RejectionEvent struct {
	EventBase
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SinkEvent represents a single sink delivery attempt.
type SinkEvent struct {
	EventBase
	RecordID string        `json:"record_id"`
	Sink     string        `json:"sink"`
	Status   SinkStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnRejection  func(context.Context, *RejectionEvent)
	OnSink       func(context.Context, *SinkEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnRejection:  chain(h.OnRejection, other.OnRejection),
		OnSink:       chain(h.OnSink, other.OnSink),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
