package hyperliquid

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/cassette"
	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replays a recorded fundingHistory call. Skips unless the cassette exists
// or RECORD_CASSETTES=1.
func TestAdapterFetchFunding_Recorded(t *testing.T) {
	cassettePath := filepath.Join("testdata", "cassettes", "hyperliquid_funding")
	if _, err := os.Stat(cassettePath + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassettePath)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassettePath), 0o755))
	}

	r, err := recorder.New(cassettePath)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()
	// fundingHistory and metaAndAssetCtxs share one URL; tell them apart by body.
	r.SetMatcher(func(req *http.Request, rec cassette.Request) bool {
		if req.Method != rec.Method || req.URL.String() != rec.URL {
			return false
		}
		if req.Body == nil {
			return rec.Body == ""
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return false
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		return string(body) == rec.Body
	})

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}))
	tickers, err := NewAdapter(client).FetchFunding(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, float64(1), tickers[0].FundingPeriodHours)
	assert.NotEmpty(t, tickers[0].History)
}
