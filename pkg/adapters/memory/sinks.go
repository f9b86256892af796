package memory

import (
	"context"
	"sync"
)

// Notification is a message captured by Notifier.
type Notification struct {
	Destination string
	Text        string
}

// Notifier records notifications in memory. Useful for tests and dry runs.
type Notifier struct {
	mu   sync.Mutex
	sent []Notification

	// Err, when set, is returned by every Notify call instead of recording.
	Err error
}

// NewNotifier creates an empty recording notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify records the notification.
func (n *Notifier) Notify(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, Notification{Destination: destination, Text: text})
	return nil
}

// Sent returns a copy of the recorded notifications.
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// Ledger keeps appended rows in memory.
type Ledger struct {
	mu   sync.Mutex
	rows [][]string

	// Err, when set, is returned by every AppendRow call instead of recording.
	Err error
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AppendRow stores a copy of the columns.
func (l *Ledger) AppendRow(ctx context.Context, columns []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.rows = append(l.rows, append([]string(nil), columns...))
	return nil
}

// Rows returns a copy of every appended row.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}
