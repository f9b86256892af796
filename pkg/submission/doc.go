// Package submission commits a confirmed record to its two sinks.
//
// The Notifier receives a human readable summary addressed to a fixed operator
// destination; the Ledger receives one fixed-column row. Delivery is best
// effort: one attempt per sink, bounded by a timeout, with failures logged
// and reported in the SubmissionResult but never surfaced to the user.
package submission
