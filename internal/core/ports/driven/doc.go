// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// The core services depend only on these interfaces; concrete adapters
// (HTTP clients, SQLite, the filesystem) are injected at startup.
package driven
