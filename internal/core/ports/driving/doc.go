// Package driving provides interfaces for user-facing adapters (primary/inbound ports).
//
// The CLI and MCP server drive the application exclusively through
// these interfaces.
package driving
