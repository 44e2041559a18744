package scienceon

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.LiteratureService = (*Client)(nil)

// searchRate is the proactive request throttle (requests/second).
const searchRate = 2

// supportedTargets lists the collections the gateway serves.
var supportedTargets = map[driven.LiteratureTarget]bool{
	driven.TargetPapers:  true,
	driven.TargetPatents: true,
	driven.TargetReports: true,
	driven.TargetTrends:  true,
}

// Client is the gateway search client.
type Client struct {
	cfg     Config
	http    *http.Client
	tokens  driven.TokenProvider
	limiter *rate.Limiter
}

// NewClient creates a gateway client using the given token provider.
func NewClient(cfg Config, tokens driven.TokenProvider) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("scienceon: token provider is required")
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(searchRate), 1),
	}, nil
}

// Search queries one collection and returns up to limit hits.
// A rejected token is re-fetched once before giving up with
// ErrTokenExpired; throttling surfaces as ErrRateLimited.
func (c *Client) Search(ctx context.Context, target driven.LiteratureTarget, query string, limit int) ([]driven.LiteratureHit, error) {
	if !supportedTargets[target] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("scienceon: %w: query must not be empty", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > MaxRowCount {
		limit = MaxRowCount
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	hits, retry, err := c.search(ctx, target, query, limit)
	if retry {
		// Token rejected: discard the cache and try once more.
		if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
		logger.Debug("gateway rejected token, retrying search")
		hits, _, err = c.search(ctx, target, query, limit)
	}
	return hits, err
}

// Ping validates the gateway is reachable and a token can be issued.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.tokens.Token(ctx); err != nil {
		return fmt.Errorf("scienceon: ping: %w", err)
	}
	return nil
}

// search performs one search request. The second return value reports
// whether the request failed with a rejected token and may be retried.
func (c *Client) search(ctx context.Context, target driven.LiteratureTarget, query string, limit int) ([]driven.LiteratureHit, bool, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get token: %w", err)
	}

	searchQuery, err := json.Marshal(map[string]string{c.cfg.SearchField: query})
	if err != nil {
		return nil, false, fmt.Errorf("build search query: %w", err)
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("token", token.AccessToken)
	q.Set("version", c.cfg.Version)
	q.Set("action", "search")
	q.Set("target", string(target))
	q.Set("searchQuery", string(searchQuery))
	q.Set("curPage", "1")
	q.Set("rowCount", strconv.Itoa(limit))
	q.Set("session_id", c.cfg.SessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/openapicall.do?"+q.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to parsing
	case http.StatusUnauthorized:
		return nil, true, fmt.Errorf("scienceon: %w", domain.ErrTokenExpired)
	case http.StatusTooManyRequests:
		return nil, false, fmt.Errorf("scienceon: %w", domain.ErrRateLimited)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, false, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	hits, err := parseSearchResponse(resp.Body, target)
	if err != nil {
		return nil, false, err
	}
	return hits, false, nil
}

// xmlRecord is one result record: a flat list of metadata items keyed
// by metaCode attributes.
type xmlRecord struct {
	Items []struct {
		MetaCode string `xml:"metaCode,attr"`
		Value    string `xml:",chardata"`
	} `xml:"item"`
}

// fields returns the record's items as a lookup map.
func (r xmlRecord) fields() map[string]string {
	m := make(map[string]string, len(r.Items))
	for _, item := range r.Items {
		if item.MetaCode != "" {
			m[item.MetaCode] = strings.TrimSpace(item.Value)
		}
	}
	return m
}

// parseSearchResponse walks the response XML. Status and record
// elements are matched by name wherever they appear, since the
// envelope nesting varies between collections.
func parseSearchResponse(r io.Reader, target driven.LiteratureTarget) ([]driven.LiteratureHit, error) {
	dec := xml.NewDecoder(r)

	var (
		hits       []driven.LiteratureHit
		statusCode string
		errorCode  string
		errorMsg   string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scienceon: parse response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "statusCode":
			if err := dec.DecodeElement(&statusCode, &start); err != nil {
				return nil, fmt.Errorf("scienceon: parse status: %w", err)
			}
		case "errorCode":
			if err := dec.DecodeElement(&errorCode, &start); err != nil {
				return nil, fmt.Errorf("scienceon: parse error code: %w", err)
			}
		case "errorMessage":
			if err := dec.DecodeElement(&errorMsg, &start); err != nil {
				return nil, fmt.Errorf("scienceon: parse error message: %w", err)
			}
		case "record":
			var rec xmlRecord
			if err := dec.DecodeElement(&rec, &start); err != nil {
				return nil, fmt.Errorf("scienceon: parse record: %w", err)
			}
			hits = append(hits, hitFromRecord(rec.fields(), target))
		}
	}

	if statusCode != "" && statusCode != "200" {
		return nil, &APIError{Code: errorCode, Message: errorMsg}
	}
	return hits, nil
}

// hitFromRecord maps gateway metadata codes onto a literature hit.
// Each collection uses its own codes with older short-form fallbacks.
func hitFromRecord(fields map[string]string, target driven.LiteratureTarget) driven.LiteratureHit {
	hit := driven.LiteratureHit{
		Title:      first(fields, "Title", "TI"),
		Abstract:   first(fields, "Abstract", "AB"),
		Identifier: first(fields, "CN", "ArticleId"),
		Authors:    first(fields, "Authors", "AU"),
		Year:       first(fields, "Pubyear", "PY"),
	}

	if target == driven.TargetPatents {
		hit.Authors = first(fields, "Inventor", "IN", "Applicant", "AP")
		if hit.Identifier == "" {
			hit.Identifier = first(fields, "ApplicationNo", "AN")
		}
		if hit.Year == "" {
			if d := first(fields, "PublicationDate", "PD", "ApplicationDate", "AD"); len(d) >= 4 {
				hit.Year = d[:4]
			}
		}
	}

	return hit
}

// first returns the first non-empty field among the given keys.
func first(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return ""
}
