package scienceon

import (
	"fmt"
	"time"
)

const (
	// DefaultBaseURL is the production gateway endpoint.
	DefaultBaseURL = "https://apigateway.kisti.re.kr"

	// DefaultVersion is the gateway API version.
	DefaultVersion = "1.0"

	// DefaultSessionID identifies this client in search requests.
	DefaultSessionID = "cnteval"

	// DefaultSearchField is the basic-index search field.
	DefaultSearchField = "BI"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRowCount is the gateway's per-request result cap.
	MaxRowCount = 100
)

// Config holds gateway credentials and connection settings.
type Config struct {
	// APIKey is the AES-256 key used in the token handshake.
	// Must be exactly 32 bytes.
	APIKey string

	// ClientID identifies the registered client.
	ClientID string

	// MACAddress is the registered machine address in hyphenated
	// form (XX-XX-XX-XX-XX-XX).
	MACAddress string

	// BaseURL overrides the gateway endpoint. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// Version overrides the API version. Defaults to DefaultVersion.
	Version string

	// SessionID identifies the caller in search requests. Defaults
	// to DefaultSessionID.
	SessionID string

	// SearchField selects the indexed field to query. Defaults to
	// DefaultSearchField (basic index).
	SearchField string

	// Timeout bounds each HTTP request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Validate checks required credentials and applies defaults.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("scienceon: client id is required")
	}
	if len(c.APIKey) != 32 {
		return fmt.Errorf("scienceon: api key must be 32 bytes, got %d", len(c.APIKey))
	}
	if c.MACAddress == "" {
		return fmt.Errorf("scienceon: mac address is required")
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.SessionID == "" {
		c.SessionID = DefaultSessionID
	}
	if c.SearchField == "" {
		c.SearchField = DefaultSearchField
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
