package domain

import "time"

// Answer is one field's value in form order.
type Answer struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Submitter identifies who filled in the form.
type Submitter struct {
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle,omitempty"`
	ID          string `json:"id"`
}

// Record is the finalized form, produced once at confirmation.
type Record struct {
	ID          string    `json:"id"`
	Submitter   Submitter `json:"submitter"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Value returns the answer for the named field.
func (r Record) Value(field string) (string, bool) {
	for _, a := range r.Answers {
		if a.Field == field {
			return a.Value, true
		}
	}
	return "", false
}

// SinkStatus is the outcome of a single delivery attempt.
type SinkStatus string

const (
	SinkDelivered SinkStatus = "delivered"
	SinkFailed    SinkStatus = "failed"  // Transient, per-call failure
	SinkSkipped   SinkStatus = "skipped" // Sink unavailable since startup
)

// SubmissionResult reports what happened to each sink.
type SubmissionResult struct {
	RecordID string     `json:"record_id"`
	Notifier SinkStatus `json:"notifier"`
	Ledger   SinkStatus `json:"ledger"`
}
