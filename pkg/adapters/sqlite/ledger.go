package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	appended_at DATETIME NOT NULL,
	columns TEXT NOT NULL
);`

// Ledger implements ports.Ledger on a local SQLite table.
// Rows are never updated or deleted.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

// AppendRow inserts the columns as one row.
func (l *Ledger) AppendRow(ctx context.Context, columns []string) error {
	data, err := sonic.MarshalString(columns)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO ledger (appended_at, columns) VALUES (?, ?)`,
		l.now().UTC(), data)
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// Rows returns every row in insertion order.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	rs, err := l.db.QueryContext(ctx, `SELECT columns FROM ledger ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rs.Close()

	var rows [][]string
	for rs.Next() {
		var raw string
		if err := rs.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var row []string
		if err := sonic.UnmarshalString(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
