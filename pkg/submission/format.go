package submission

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// TimestampLayout is the layout of the ledger's first column.
const TimestampLayout = "2006-01-02 15:04"

// NoHandle replaces an empty submitter handle in notifications and rows.
const NoHandle = "no username"

// Formatter renders a record for the sinks.
type Formatter struct {
	// Title heads the notification.
	Title string
	// Columns fixes the ledger answer columns. Empty means the record's own
	// answer order.
	Columns []string
}

// DefaultFormatter returns the built-in notification layout.
func DefaultFormatter() Formatter {
	return Formatter{Title: "📥 New request:"}
}

// handle renders the submitter handle, or the placeholder.
func handle(s domain.Submitter) string {
	if s.Handle == "" {
		return NoHandle
	}
	return s.Handle
}

// Notification renders the operator message: title, one line per answer in
// form order, then the submitter identity.
func (f Formatter) Notification(rec domain.Record) string {
	var b strings.Builder
	b.WriteString(f.Title)
	b.WriteString("\n\n")
	for _, a := range rec.Answers {
		fmt.Fprintf(&b, "%s: %s\n", a.Label, a.Value)
	}

	b.WriteString("\nFrom: ")
	if rec.Submitter.DisplayName != "" {
		b.WriteString(rec.Submitter.DisplayName)
		b.WriteString(" ")
	}
	if rec.Submitter.Handle != "" {
		b.WriteString("@" + rec.Submitter.Handle)
	} else {
		b.WriteString(NoHandle)
	}
	if rec.Submitter.ID != "" {
		fmt.Fprintf(&b, " (id %s)", rec.Submitter.ID)
	}
	return b.String()
}

// Row renders the ledger row:
// [timestamp, name, handle, id, answers...].
func (f Formatter) Row(rec domain.Record) []string {
	row := []string{
		rec.SubmittedAt.Format(TimestampLayout),
		rec.Submitter.DisplayName,
		handle(rec.Submitter),
		rec.Submitter.ID,
	}

	if len(f.Columns) == 0 {
		for _, a := range rec.Answers {
			row = append(row, a.Value)
		}
		return row
	}
	for _, name := range f.Columns {
		v, _ := rec.Value(name)
		row = append(row, v)
	}
	return row
}

// Header returns the column titles matching Row, for ledgers that keep one.
func Header(form *domain.Form) []string {
	header := []string{"timestamp", "name", "handle", "id"}
	return append(header, form.Names()...)
}
