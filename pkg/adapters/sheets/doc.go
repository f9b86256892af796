// Package sheets provides a Google Sheets backed Ledger.
package sheets
