// Package mcp exposes the intake agent as a Model Context Protocol server
// over stdio or SSE.
package mcp
