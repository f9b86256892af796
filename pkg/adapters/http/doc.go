// Package http serves the agent over HTTP with a chi router: JSON messages,
// a websocket chat, SSE session events, health and metrics.
package http
