// Package dispatch serializes inbound messages per session key.
//
// Transports hand every message to a Dispatcher. Messages from different users
// are processed concurrently, while a user who double-sends has the second
// message wait for the first, in arrival order.
package dispatch
