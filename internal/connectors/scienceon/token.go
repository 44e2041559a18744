package scienceon

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// Ensure both providers implement the interface.
var (
	_ driven.TokenProvider = (*GatewayTokenProvider)(nil)
	_ driven.TokenProvider = (*StaticTokenProvider)(nil)
)

// fixedIV is the gateway's fixed AES initialisation vector.
const fixedIV = "jvHJ1EFA0IXBrxxz"

// timeLayout is the gateway's token expiry timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// GatewayTokenProvider issues and refreshes gateway tokens using the
// encrypted account handshake. Tokens are cached and reused until they
// expire; refresh is attempted before re-issuing from scratch.
type GatewayTokenProvider struct {
	mu    sync.Mutex
	cfg   Config
	http  *http.Client
	token driven.Token
	now   func() time.Time
}

// NewGatewayTokenProvider creates a token provider for the gateway.
func NewGatewayTokenProvider(cfg Config) (*GatewayTokenProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &GatewayTokenProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
	}, nil
}

// Token returns a currently valid access token, refreshing or
// re-issuing as needed.
func (p *GatewayTokenProvider) Token(ctx context.Context) (driven.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.Valid() {
		return p.token, nil
	}

	if p.token.Refreshable() {
		if err := p.refresh(ctx); err == nil {
			return p.token, nil
		}
		logger.Debug("token refresh failed, re-issuing")
	}

	if err := p.issue(ctx); err != nil {
		return driven.Token{}, err
	}
	return p.token, nil
}

// Invalidate discards the cached token, forcing a fresh issue on the
// next call. Used when the gateway rejects a token the provider still
// considered valid.
func (p *GatewayTokenProvider) Invalidate() {
	p.mu.Lock()
	p.token = driven.Token{}
	p.mu.Unlock()
}

// issue requests a brand-new token pair (caller must hold lock).
func (p *GatewayTokenProvider) issue(ctx context.Context) error {
	accounts, err := p.accountsParam()
	if err != nil {
		return fmt.Errorf("build accounts parameter: %w", err)
	}

	// accounts is already URL-encoded; build the query by hand so it
	// is not escaped twice.
	reqURL := fmt.Sprintf("%s/tokenrequest.do?client_id=%s&accounts=%s",
		p.cfg.BaseURL, url.QueryEscape(p.cfg.ClientID), accounts)

	return p.requestToken(ctx, reqURL, true)
}

// refresh exchanges the refresh token for a new access token (caller
// must hold lock).
func (p *GatewayTokenProvider) refresh(ctx context.Context) error {
	q := url.Values{}
	q.Set("refresh_token", p.token.RefreshToken)
	q.Set("client_id", p.cfg.ClientID)
	reqURL := p.cfg.BaseURL + "/tokenrequest.do?" + q.Encode()

	return p.requestToken(ctx, reqURL, false)
}

// requestToken performs a token request and updates the cached token.
func (p *GatewayTokenProvider) requestToken(ctx context.Context, reqURL string, fresh bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var payload struct {
		AccessToken        string `json:"access_token"`
		AccessTokenExpire  string `json:"access_token_expire"`
		RefreshToken       string `json:"refresh_token"`
		RefreshTokenExpire string `json:"refresh_token_expire"`
		ErrorCode          string `json:"errorCode"`
		ErrorMessage       string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if payload.ErrorCode != "" {
		return &APIError{StatusCode: resp.StatusCode, Code: payload.ErrorCode, Message: payload.ErrorMessage}
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("token response contained no access token")
	}

	token := p.token
	if fresh {
		token = driven.Token{}
	}
	token.AccessToken = payload.AccessToken
	token.AccessExpiry = parseExpiry(payload.AccessTokenExpire)
	if payload.RefreshToken != "" {
		token.RefreshToken = payload.RefreshToken
		token.RefreshExpiry = parseExpiry(payload.RefreshTokenExpire)
	}
	p.token = token

	logger.Debug("gateway token issued, expires %s", token.AccessExpiry.Format(timeLayout))
	return nil
}

// accountsParam builds the encrypted accounts parameter: a compact
// JSON document of the current timestamp and the registered MAC
// address, AES-256-CBC encrypted with the gateway's fixed IV, then
// URL-safe base64 and URL-escaped.
func (p *GatewayTokenProvider) accountsParam() (string, error) {
	stamp := p.now().Format("20060102150405")
	plain := fmt.Sprintf(`{"datetime":%q,"mac_address":%q}`, stamp, p.cfg.MACAddress)

	encrypted, err := encryptAccounts([]byte(p.cfg.APIKey), []byte(plain))
	if err != nil {
		return "", err
	}
	return url.QueryEscape(encrypted), nil
}

// encryptAccounts applies the gateway's AES-256-CBC scheme with PKCS7
// padding and URL-safe base64 encoding.
func encryptAccounts(key, plain []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	padded := pkcs7Pad(plain, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(fixedIV)).CryptBlocks(out, padded)

	return base64.URLEncoding.EncodeToString(out), nil
}

// pkcs7Pad pads data to a multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// parseExpiry parses a gateway expiry timestamp, truncating any
// fractional-second suffix. A zero time is returned on failure so the
// token is treated as already expired.
func parseExpiry(s string) time.Time {
	if len(s) > len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StaticTokenProvider serves a fixed access token, for environments
// where a long-lived token is provisioned out of band. Internally it
// wraps an oauth2 static token source.
type StaticTokenProvider struct {
	src oauth2.TokenSource
}

// NewStaticTokenProvider creates a provider around a fixed token.
func NewStaticTokenProvider(accessToken string) *StaticTokenProvider {
	return &StaticTokenProvider{
		src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
	}
}

// Token returns the static token. Static tokens carry no expiry, so a
// far-future one is reported to keep them valid.
func (p *StaticTokenProvider) Token(_ context.Context) (driven.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return driven.Token{}, fmt.Errorf("static token source: %w", err)
	}
	if tok.AccessToken == "" {
		return driven.Token{}, fmt.Errorf("static token is empty: %w", domain.ErrTokenExpired)
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(24 * 365 * time.Hour)
	}
	return driven.Token{AccessToken: tok.AccessToken, AccessExpiry: expiry}, nil
}
