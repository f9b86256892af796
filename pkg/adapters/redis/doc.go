// Package redis provides a Redis stream backed Ledger.
package redis
