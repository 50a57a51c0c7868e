package aster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/symbols"
)

func TestBuildInfersPeriodAndFallsBackToNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/fapi/v1/premiumIndex":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"symbol":          r.URL.Query().Get("symbol"),
				"lastFundingRate": "-0.00002",
				"nextFundingTime": 0,
			})
		case "/fapi/v1/fundingRate":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"fundingRate": "-0.00002", "fundingTime": 1_735_689_600_000},
			})
		}
	}))
	defer srv.Close()

	adapter, err := Build(&funding.VenueConfig{BaseURL: srv.URL}, funding.Deps{Base: srv.Client().Transport})
	require.NoError(t, err)
	assert.Equal(t, symbols.Aster, adapter.Exchange())

	tickers, err := adapter.FetchFunding(context.Background(), []string{"ETH"})
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	tk := tickers[0]
	assert.Equal(t, "aster-ETHUSDT", tk.ID)
	assert.Equal(t, float64(8), tk.FundingPeriodHours)
	assert.Less(t, tk.APRSigned, 0.0)
	assert.NotEmpty(t, tk.NextFundingTime)
}
