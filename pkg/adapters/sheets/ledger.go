package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	api "google.golang.org/api/sheets/v4"
)

// Ledger implements ports.Ledger by appending rows to a Google Sheet.
type Ledger struct {
	service       *api.Service
	spreadsheetID string
	sheet         string
}

// New connects to the Sheets API. Pass option.WithCredentialsFile for a
// service account; tests use option.WithEndpoint.
func New(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*Ledger, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if sheet == "" {
		sheet = "Sheet1"
	}

	opts = append([]option.ClientOption{option.WithScopes(api.SpreadsheetsScope)}, opts...)
	service, err := api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Ledger{service: service, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

// AppendRow appends the columns after the last row of the sheet.
func (l *Ledger) AppendRow(ctx context.Context, columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}

	_, err := l.service.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheet+"!A1", &api.ValueRange{Values: [][]any{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to sheet %s: %w", l.sheet, err)
	}
	return nil
}

// Rows reads every populated row of the sheet.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	resp, err := l.service.Spreadsheets.Values.Get(l.spreadsheetID, l.sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", l.sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}
