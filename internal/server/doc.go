// Package server exposes the terminal-facing HTTP API: device connect and
// input delivery, session status queries, and the health surface.
package server
