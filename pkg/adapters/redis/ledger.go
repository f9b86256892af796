package redis

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	backend "github.com/redis/go-redis/v9"
)

// rowField is the stream entry field that holds the JSON encoded columns.
const rowField = "row"

// Ledger implements ports.Ledger as an append-only Redis stream.
// Each row becomes one stream entry (XADD), so the stream ID doubles as an
// insertion timestamp and order is preserved.
type Ledger struct {
	client *backend.Client
	stream string
	maxLen int64
}

type Option func(*Ledger)

// WithStream sets the stream key.
func WithStream(stream string) Option {
	return func(l *Ledger) {
		if stream != "" {
			l.stream = stream
		}
	}
}

// WithMaxLen caps the stream length (approximate trimming). Zero keeps
// every entry.
func WithMaxLen(n int64) Option {
	return func(l *Ledger) {
		l.maxLen = n
	}
}

// New creates a Redis ledger from a connection URL (redis://host:port/db).
func New(url string, opts ...Option) (*Ledger, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(options), opts...), nil
}

// NewFromClient creates a Redis ledger from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Ledger {
	l := &Ledger{
		client: client,
		stream: "intake:ledger",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ping checks the connection. Used at startup to decide availability.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

// AppendRow adds the columns as a new stream entry.
func (l *Ledger) AppendRow(ctx context.Context, columns []string) error {
	data, err := sonic.MarshalString(columns)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	args := &backend.XAddArgs{
		Stream: l.stream,
		Values: map[string]any{rowField: data},
	}
	if l.maxLen > 0 {
		args.MaxLen = l.maxLen
		args.Approx = true
	}
	if err := l.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", l.stream, err)
	}
	return nil
}

// Rows reads the whole stream back in insertion order.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	entries, err := l.client.XRange(ctx, l.stream, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", l.stream, err)
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.Values[rowField].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no %q field", entry.ID, rowField)
		}
		var row []string
		if err := sonic.UnmarshalString(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode stream entry %s: %w", entry.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close closes the underlying client.
func (l *Ledger) Close() error {
	return l.client.Close()
}
