// Package sqlite provides a SQLite backed Ledger.
package sqlite
