package binance

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fujiscan-api/pkg/symbols"
)

// Replays a recorded premiumIndex + fundingRate exchange. Skips unless the
// cassette exists or RECORD_CASSETTES=1.
func TestFetchFunding_Recorded(t *testing.T) {
	cassettePath := filepath.Join("testdata", "cassettes", "binance_funding")
	if _, err := os.Stat(cassettePath + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassettePath)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassettePath), 0o755))
	}

	r, err := recorder.New(cassettePath)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	a := New(symbols.Binance, WithHTTPClient(&http.Client{Transport: r}))
	tickers, err := a.FetchFunding(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "BTC", tickers[0].Base)
	assert.NotNil(t, tickers[0].LastFundingRate)
	assert.NotEmpty(t, tickers[0].NextFundingTime)
}
