// Package api defines the shared types of the shuttle engine: module
// definitions loaded into the cache, the screen payload contract consumed by
// terminal clients, and the HTTP request/response messages.
package api
