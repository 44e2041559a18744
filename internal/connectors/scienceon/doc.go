// Package scienceon implements the literature-search gateway client.
//
// The gateway authenticates with short-lived access tokens issued
// against an AES-encrypted account parameter, and serves search results
// as XML. This package hides both behind the core's LiteratureService
// and TokenProvider ports: callers see collections (papers, patents,
// reports, trends), plain hits, and two failure modes (token expired,
// rate limited).
package scienceon
