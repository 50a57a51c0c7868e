package lighter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `{"code":200,"funding_rates":[
	{"market_id":1,"exchange":"binance","symbol":"BTC","rate":0.0009},
	{"market_id":1,"exchange":"lighter","symbol":"BTC","rate":0.0001},
	{"market_id":2,"exchange":"lighter","market":"ETH-USDT","fundingRate":"-0.0002"},
	{"market_id":3,"coin":"sol","funding_rate":"0.00005"}
]}`

func newServer(t *testing.T, listingStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/funding-rates":
			if listingStatus != http.StatusOK {
				w.WriteHeader(listingStatus)
				return
			}
			_, _ = w.Write([]byte(listing))
		case "/api/v1/fundings":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			switch r.URL.Query().Get("symbol") {
			case "BTC":
				_, _ = w.Write([]byte(`[
					{"timestamp":1735718400000,"fundingRate":"0.0001"},
					{"timestamp":1735689600000,"fundingRate":"0.0002"},
					{"timestamp":1735704000000,"fundingRate":"0.00015"}
				]`))
			case "ETH":
				_, _ = w.Write([]byte(`{"fundings":[{"t":1735689600000,"rate":-0.0002}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestAdapterFetchFunding(t *testing.T) {
	server := newServer(t, http.StatusOK)
	defer server.Close()

	now := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
	a := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	a.now = func() time.Time { return now }

	tickers, err := a.FetchFunding(context.Background(), []string{"BTC", "ETH", "SOL", "HYPE"})
	require.NoError(t, err)
	require.Len(t, tickers, 3)

	btc := tickers[0]
	assert.Equal(t, "lighter-BTC", btc.ID)
	assert.InDelta(t, 0.0001, *btc.LastFundingRate, 1e-12)
	assert.Equal(t, float64(4), btc.FundingPeriodHours)
	assert.Equal(t, "2025-01-01T10:00:00.000Z", btc.NextFundingTime)
	require.Len(t, btc.History, 3)
	assert.Equal(t, int64(1735689600000), btc.History[0].TS)

	eth := tickers[1]
	assert.InDelta(t, -0.0002, *eth.LastFundingRate, 1e-12)
	assert.Equal(t, float64(8), eth.FundingPeriodHours)
	assert.Len(t, eth.History, 1)

	sol := tickers[2]
	assert.InDelta(t, 0.00005, *sol.CurrentEstRate, 1e-12)
	assert.Empty(t, sol.History)
}

func TestAdapterListingFailureFailsVenue(t *testing.T) {
	server := newServer(t, http.StatusServiceUnavailable)
	defer server.Close()

	_, err := New(WithBaseURL(server.URL), WithHTTPClient(server.Client())).
		FetchFunding(context.Background(), []string{"BTC"})
	assert.Error(t, err)
}

func TestAdapterOmitsAssetWithoutRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/funding-rates" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"funding_rates":[
			{"market_id":1,"exchange":"lighter","symbol":"BTC"},
			{"market_id":2,"exchange":"lighter","symbol":"ETH","rate":0.0003}
		]}`))
	}))
	defer server.Close()

	tickers, err := New(WithBaseURL(server.URL), WithHTTPClient(server.Client())).
		FetchFunding(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "ETH", tickers[0].Base)

	_, err = New(WithBaseURL(server.URL), WithHTTPClient(server.Client())).
		FetchFunding(context.Background(), []string{"BTC"})
	assert.Error(t, err)
}
