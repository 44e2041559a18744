package driven

import (
	"context"
	"time"
)

// LiteratureTarget selects which collection a literature search hits.
type LiteratureTarget string

// Literature collections supported by the ScienceON gateway.
const (
	// TargetPapers searches academic papers (ARTI).
	TargetPapers LiteratureTarget = "ARTI"

	// TargetPatents searches patents.
	TargetPatents LiteratureTarget = "PATENT"

	// TargetReports searches research reports.
	TargetReports LiteratureTarget = "REPORT"

	// TargetTrends searches trend analyses (ATT).
	TargetTrends LiteratureTarget = "ATT"
)

// LiteratureHit is one record returned from a literature search.
type LiteratureHit struct {
	// Title is the record title.
	Title string `json:"title"`

	// Authors is the formatted author list, may be empty.
	Authors string `json:"authors,omitempty"`

	// Year is the publication year, may be empty.
	Year string `json:"year,omitempty"`

	// Abstract is the record abstract, may be empty.
	Abstract string `json:"abstract,omitempty"`

	// Identifier is the gateway's record identifier.
	Identifier string `json:"identifier,omitempty"`
}

// LiteratureService searches an external literature database for prior
// art. Failure modes: ErrTokenExpired when the access token cannot be
// refreshed, ErrRateLimited when the gateway throttles the caller.
type LiteratureService interface {
	// Search queries one collection and returns up to limit hits.
	Search(ctx context.Context, target LiteratureTarget, query string, limit int) ([]LiteratureHit, error)

	// Ping validates the gateway is reachable and the token is valid.
	Ping(ctx context.Context) error
}

// Token carries literature-gateway credentials with their lifetimes.
type Token struct {
	// AccessToken authenticates search requests.
	AccessToken string

	// AccessExpiry is when the access token stops working.
	AccessExpiry time.Time

	// RefreshToken obtains a replacement access token.
	RefreshToken string

	// RefreshExpiry is when the refresh token stops working.
	RefreshExpiry time.Time
}

// Valid reports whether the access token is present and unexpired.
func (t Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Before(t.AccessExpiry)
}

// Refreshable reports whether the refresh token is present and unexpired.
func (t Token) Refreshable() bool {
	return t.RefreshToken != "" && time.Now().Before(t.RefreshExpiry)
}

// TokenProvider issues and refreshes literature-gateway tokens.
// The gateway's encryption handshake lives behind this interface;
// the core only sees issued tokens and the two failure modes
// (ErrTokenExpired, ErrRateLimited).
type TokenProvider interface {
	// Token returns a currently valid token, refreshing or re-issuing
	// as needed.
	Token(ctx context.Context) (Token, error)
}
