package domain

import "time"

// Sender is the transport identity of whoever sent a message.
type Sender struct {
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle,omitempty"`
	ID          string `json:"id"`
}

// Message is a single inbound event delivered by a transport.
type Message struct {
	// SessionKey identifies the dialogue (usually the user or chat id).
	SessionKey string    `json:"session_key"`
	Text       string    `json:"text"`
	Sender     Sender    `json:"sender"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reply is the single outbound render produced for an inbound Message.
type Reply struct {
	Text string `json:"text"`

	// Keyboard is an ordered list of quick-reply labels. It is advisory:
	// transports may ignore it, and the engine still validates free text.
	Keyboard []string `json:"keyboard,omitempty"`

	// FreeText is set when the prompt accepts typed answers outside the
	// keyboard, so transports must not rewrite input into a quick reply.
	FreeText bool `json:"free_text,omitempty"`

	// Document is an optional file to attach (e.g. the catalog).
	Document *Document `json:"document,omitempty"`
}

// IsZero reports whether there is nothing to render.
func (r Reply) IsZero() bool {
	return r.Text == "" && len(r.Keyboard) == 0 && r.Document == nil
}

// Document is a static file sent to the user.
type Document struct {
	Path    string `json:"path"`
	Caption string `json:"caption,omitempty"`
}
