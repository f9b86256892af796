package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// SessionStore defines the interface for keeping dialogue sessions.
// Sessions are ephemeral: implementations are not expected to survive a
// process restart.
type SessionStore interface {
	// Save stores the session under the given key.
	Save(ctx context.Context, key string, session *domain.Session) error

	// Load retrieves the session for a given key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, key string) (*domain.Session, error)

	// Delete removes the session. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
