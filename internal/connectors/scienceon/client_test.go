package scienceon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// staticTokens is a test token provider with invalidation tracking.
type staticTokens struct {
	token       string
	err         error
	invalidated atomic.Int32
}

func (s *staticTokens) Token(context.Context) (driven.Token, error) {
	if s.err != nil {
		return driven.Token{}, s.err
	}
	return driven.Token{AccessToken: s.token}, nil
}

func (s *staticTokens) Invalidate() {
	s.invalidated.Add(1)
}

const articleXML = `<?xml version="1.0" encoding="UTF-8"?>
<MetaData>
	<resultSummary>
		<statusCode>200</statusCode>
		<TotalCount>2</TotalCount>
	</resultSummary>
	<recordList>
		<record>
			<item metaCode="CN">ART001</item>
			<item metaCode="Title">Self-healing concrete admixture</item>
			<item metaCode="Authors">Kim; Lee</item>
			<item metaCode="Pubyear">2024</item>
			<item metaCode="Abstract">A crack-sealing admixture.</item>
		</record>
		<record>
			<item metaCode="TI">Short-form record</item>
			<item metaCode="AU">Park</item>
			<item metaCode="PY">2023</item>
		</record>
	</recordList>
</MetaData>`

const patentXML = `<?xml version="1.0" encoding="UTF-8"?>
<MetaData>
	<resultSummary><statusCode>200</statusCode></resultSummary>
	<recordList>
		<record>
			<item metaCode="Title">Crack sealing apparatus</item>
			<item metaCode="Inventor">Choi</item>
			<item metaCode="ApplicationNo">10-2023-0001234</item>
			<item metaCode="PublicationDate">20240115</item>
		</record>
	</recordList>
</MetaData>`

const errorXML = `<?xml version="1.0" encoding="UTF-8"?>
<MetaData>
	<resultSummary>
		<statusCode>500</statusCode>
		<errorCode>E9001</errorCode>
		<errorMessage>internal gateway failure</errorMessage>
	</resultSummary>
</MetaData>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *staticTokens) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &staticTokens{token: "tok-1"}
	c, err := NewClient(testConfig(srv.URL), tokens)
	require.NoError(t, err)
	return c, tokens
}

func TestSearchPapers(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openapicall.do", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "search", q.Get("action"))
		assert.Equal(t, "ARTI", q.Get("target"))
		assert.Equal(t, "tok-1", q.Get("token"))
		assert.Equal(t, `{"BI":"self-healing concrete"}`, q.Get("searchQuery"))
		assert.Equal(t, "5", q.Get("rowCount"))
		fmt.Fprint(w, articleXML)
	})

	hits, err := c.Search(context.Background(), driven.TargetPapers, "self-healing concrete", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "Self-healing concrete admixture", hits[0].Title)
	assert.Equal(t, "Kim; Lee", hits[0].Authors)
	assert.Equal(t, "2024", hits[0].Year)
	assert.Equal(t, "A crack-sealing admixture.", hits[0].Abstract)
	assert.Equal(t, "ART001", hits[0].Identifier)

	// Short-form metadata codes are honoured as fallbacks.
	assert.Equal(t, "Short-form record", hits[1].Title)
	assert.Equal(t, "Park", hits[1].Authors)
	assert.Equal(t, "2023", hits[1].Year)
}

func TestSearchPatentsFieldMapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATENT", r.URL.Query().Get("target"))
		fmt.Fprint(w, patentXML)
	})

	hits, err := c.Search(context.Background(), driven.TargetPatents, "crack sealing", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "Crack sealing apparatus", hits[0].Title)
	assert.Equal(t, "Choi", hits[0].Authors)
	assert.Equal(t, "10-2023-0001234", hits[0].Identifier)
	assert.Equal(t, "2024", hits[0].Year, "year derived from publication date")
}

func TestSearchUnsupportedTarget(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Search(context.Background(), driven.LiteratureTarget("BOOKS"), "x", 5)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}

func TestSearchEmptyQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Search(context.Background(), driven.TargetPapers, "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchRetriesRejectedToken(t *testing.T) {
	var calls atomic.Int32
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, articleXML)
	})

	hits, err := c.Search(context.Background(), driven.TargetPapers, "concrete", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, int32(1), tokens.invalidated.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchTokenExpiredAfterRetry(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), driven.TargetPapers, "concrete", 5)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestSearchRateLimited(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), driven.TargetPapers, "concrete", 5)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestSearchGatewayError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, errorXML)
	})

	_, err := c.Search(context.Background(), driven.TargetPapers, "concrete", 5)
	require.Error(t, err)
	assert.True(t, IsGatewayError(err))
	assert.Contains(t, err.Error(), "E9001")
}

func TestSearchClampsRowCount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("rowCount"))
		fmt.Fprint(w, articleXML)
	})

	_, err := c.Search(context.Background(), driven.TargetPapers, "concrete", 0)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), driven.TargetPapers, "concrete", 500)
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, c.Ping(context.Background()))

	tokens.err = fmt.Errorf("gateway down")
	assert.Error(t, c.Ping(context.Background()))
}
