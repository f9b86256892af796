// Package logsink provides a Notifier that prints operator notifications
// instead of sending them, for local runs.
package logsink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/intake/internal/logging"
)

// Notifier writes each notification to w and logs its delivery.
type Notifier struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// New creates a Notifier. A nil logger disables logging.
func New(w io.Writer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{w: w, logger: logger}
}

// Notify implements ports.Notifier.
func (n *Notifier) Notify(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.w, "── notification to %s ──\n%s\n\n", destination, text); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	n.logger.Info("operator notified", "destination", destination, "bytes", len(text))
	return nil
}
