package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// Notifier delivers a text message to an operator address.
type Notifier interface {
	Notify(ctx context.Context, destination, text string) error
}

// Ledger appends a row of columns to an append-only table.
type Ledger interface {
	AppendRow(ctx context.Context, columns []string) error
}

// Catalog resolves the static catalog document sent on request.
type Catalog interface {
	Document(ctx context.Context) (*domain.Document, error)
}
