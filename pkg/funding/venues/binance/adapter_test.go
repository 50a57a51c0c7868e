package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fujiscan-api/pkg/symbols"
)

const hour = int64(3_600_000)

func newMockFapi(t *testing.T, historyStep int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("symbol")
		if sym == "SOLUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		switch r.URL.Path {
		case "/fapi/v1/premiumIndex":
			writeJSON(t, w, map[string]any{
				"symbol":          sym,
				"markPrice":       "100.0",
				"lastFundingRate": "0.00010000",
				"nextFundingTime": int64(1_735_718_400_000),
				"time":            int64(1_735_700_000_000),
			})
		case "/fapi/v1/fundingRate":
			assert.NotEmpty(t, r.URL.Query().Get("limit"))
			base := int64(1_735_689_600_000)
			writeJSON(t, w, []map[string]any{
				{"symbol": sym, "fundingRate": "0.00008", "fundingTime": base},
				{"symbol": sym, "fundingRate": "0.00009", "fundingTime": base + historyStep},
				{"symbol": sym, "fundingRate": "0.00010", "fundingTime": base + 2*historyStep},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func TestFetchFunding(t *testing.T) {
	srv := newMockFapi(t, 8*hour)
	defer srv.Close()

	a := New(symbols.Binance, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	tickers, err := a.FetchFunding(context.Background(), []string{"BTC", "SOL", "ETH"})
	require.NoError(t, err)
	require.Len(t, tickers, 2)

	btc := tickers[0]
	assert.Equal(t, "binance-BTCUSDT", btc.ID)
	assert.Equal(t, "BTC", btc.Base)
	assert.Equal(t, "USDT", btc.Quote)
	assert.Equal(t, float64(8), btc.FundingPeriodHours)
	require.NotNil(t, btc.LastFundingRate)
	assert.InDelta(t, 0.0001, *btc.LastFundingRate, 1e-12)
	assert.Nil(t, btc.NextFundingRate)
	assert.InDelta(t, 0.1095, btc.APRSigned, 1e-9)
	assert.Equal(t, "2025-01-01T08:00:00.000Z", btc.NextFundingTime)
	require.Len(t, btc.History, 3)
	assert.Less(t, btc.History[0].TS, btc.History[2].TS)

	assert.Equal(t, "ETH", tickers[1].Base)
}

func TestFetchFundingInferredPeriod(t *testing.T) {
	srv := newMockFapi(t, 4*hour)
	defer srv.Close()

	a := New(symbols.Aster, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithInferredPeriod(8), WithHistoryLimit(10))
	tickers, err := a.FetchFunding(context.Background(), []string{"HYPE"})
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "aster-HYPEUSDT", tickers[0].ID)
	assert.Equal(t, float64(4), tickers[0].FundingPeriodHours)
}

func TestFetchFundingWholeVenueDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	a := New(symbols.Binance, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := a.FetchFunding(ctx, []string{"BTC", "ETH"})
	require.Error(t, err)
}
