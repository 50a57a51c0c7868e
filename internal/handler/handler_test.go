package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"fujiscan-api/internal/cache"
	"fujiscan-api/internal/config"
	"fujiscan-api/internal/svc"
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/symbols"
	"fujiscan-api/pkg/valuecontext"
)

type fakeAdapter struct {
	ex    symbols.Exchange
	rates map[string]float64
	err   error
}

func (f fakeAdapter) Exchange() symbols.Exchange { return f.ex }

func (f fakeAdapter) FetchFunding(_ context.Context, assets []string) ([]funding.Ticker, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now()
	var out []funding.Ticker
	for _, a := range assets {
		rate, ok := f.rates[a]
		if !ok {
			continue
		}
		raw := symbols.ForExchange(a, f.ex)
		pair, _ := symbols.Normalize(raw, f.ex)
		out = append(out, funding.NewTicker(f.ex, funding.Quote{
			Pair:            pair,
			SymbolRaw:       raw,
			PeriodHours:     8,
			LastRate:        funding.Float(rate),
			NextFundingTime: now.Add(30 * time.Minute),
		}, now))
	}
	return out, nil
}

func newTestContext(adapters ...funding.Adapter) *svc.ServiceContext {
	m := make(map[symbols.Exchange]funding.Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Exchange()] = a
	}
	return &svc.ServiceContext{
		Config:     config.Config{Env: "test"},
		TTL:        cache.NewTTLSet(config.CacheTTL{Short: 10, Medium: 60}),
		Adapters:   m,
		Aggregator: funding.NewAggregator(m),
		Catalog:    valuecontext.DefaultCatalog(),
		Wages:      valuecontext.DefaultWagePresets(),
	}
}

func serve(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	return serveRequest(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

func serveRequest(t *testing.T, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	httpx.SetErrorHandlerCtx(ErrorHandler)
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func TestFundingHandler(t *testing.T) {
	ctx := newTestContext(
		fakeAdapter{ex: symbols.Binance, rates: map[string]float64{"BTC": 0.0001, "ETH": -0.0003}},
		fakeAdapter{ex: symbols.Bybit, err: errors.New("down")},
	)

	rec := serve(t, FundingHandler(ctx), "/api/funding?assets=BTC,ETH&exchanges=binance,bybit&sort=apr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=60, stale-while-revalidate=120", rec.Header().Get("Cache-Control"))

	var resp funding.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "binance-BTCUSDT", resp.Data[0].ID)
	assert.InDelta(t, 0.1095, resp.Data[0].APRSigned, 1e-12)
	assert.True(t, resp.Meta.Stale)
	assert.Equal(t, 1, resp.Meta.FailedExchanges)
	for _, tk := range resp.Data {
		assert.True(t, tk.Stale)
	}

	rec = serve(t, FundingHandler(ctx), "/api/funding?assets=BTC,ETH&exchanges=binance&negativesOnly=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ETH", resp.Data[0].Base)
}

func TestFundingHandlerInvalidSelection(t *testing.T) {
	ctx := newTestContext(fakeAdapter{ex: symbols.Binance})

	rec := serve(t, FundingHandler(ctx), "/api/funding?assets=DOGE&exchanges=binance")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid assets or exchanges"}`, rec.Body.String())

	rec = serve(t, FundingHandler(ctx), "/api/funding?mode=weird")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFundingHandlerBlankSelection(t *testing.T) {
	ctx := newTestContext(fakeAdapter{ex: symbols.Binance, rates: map[string]float64{"BTC": 0.0001}})

	for _, target := range []string{
		"/api/funding?assets=&exchanges=binance",
		"/api/funding?assets=BTC&exchanges=",
		"/api/funding?assets=%20&exchanges=binance",
	} {
		rec := serve(t, FundingHandler(ctx), target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.JSONEq(t, `{"error":"Invalid assets or exchanges"}`, rec.Body.String(), target)
	}

	rec := serve(t, SignalsHandler(ctx), "/api/funding/signals?assets=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// absent parameters still select everything
	rec = serve(t, FundingHandler(ctx), "/api/funding?exchanges=binance")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp funding.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, symbols.SupportedAssets, resp.Meta.Assets)
}

func TestFundingHandlerDisplayFields(t *testing.T) {
	ctx := newTestContext(fakeAdapter{ex: symbols.Binance, rates: map[string]float64{"BTC": 0.0001, "ETH": -0.0003}})

	rec := serve(t, FundingHandler(ctx), "/api/funding?assets=BTC,ETH&exchanges=binance")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			Base    string `json:"base"`
			APRText string `json:"aprText"`
			Tone    string `json:"tone"`
			NextIn  string `json:"nextIn"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "BTC", body.Data[0].Base)
	assert.Equal(t, "+10.95%", body.Data[0].APRText)
	assert.Equal(t, "positive", body.Data[0].Tone)
	assert.Regexp(t, `^(29|30)m$`, body.Data[0].NextIn)
	assert.Equal(t, "-32.85%", body.Data[1].APRText)
	assert.Equal(t, "negative", body.Data[1].Tone)
}

func TestSignalsHandler(t *testing.T) {
	ctx := newTestContext(fakeAdapter{ex: symbols.Binance, rates: map[string]float64{"BTC": 0.0001, "ETH": -0.0003}})

	rec := serve(t, SignalsHandler(ctx), "/api/funding/signals?exchanges=binance")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["activeAssets"])
	assert.Contains(t, body, "meta")
	assert.Contains(t, body, "topNegative")
	assert.Equal(t, "+10.95%", body["topPositiveApr"])
	assert.Equal(t, "-32.85%", body["topNegativeApr"])
	assert.Regexp(t, `^(29|30)m$`, body["soonestIn"])
}

func TestValueContextHandler(t *testing.T) {
	ctx := newTestContext()

	rec := serve(t, ValueContextHandler(ctx), "/api/value/context?amount=1000")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AmountText string `json:"amountText"`
		Items      []struct {
			Multiple     float64 `json:"multiple"`
			MultipleText string  `json:"multipleText"`
		} `json:"items"`
		Summary  string `json:"summary"`
		WageLine string `json:"wageLine"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "$1,000", body.AmountText)
	assert.Len(t, body.Items, 5)
	assert.NotEmpty(t, body.Summary)
	assert.Contains(t, body.WageLine, "(US)")

	rec = serve(t, ValueContextHandler(ctx), "/api/value/context?amount=1000&categories=yachts")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, ValueContextHandler(ctx), "/api/value/context")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, ValueContextHandler(ctx), "/api/value/context?amount=1000&sort=cheapest")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValueContextComparisons(t *testing.T) {
	ctx := newTestContext()

	rec := serve(t, ValueContextHandler(ctx), "/api/value/context?amount=1000&sort=priority&filters=monthly,annual")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Comparisons []struct {
			Item struct {
				Category string `json:"category"`
			} `json:"item"`
			MultipleText string `json:"multipleText"`
		} `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Comparisons)
	essentials := map[string]bool{"housing": true, "food": true, "utilities": true}
	seenLeisure := false
	for _, c := range body.Comparisons {
		assert.Contains(t, []string{"housing", "food", "utilities", "leisure"}, c.Item.Category)
		assert.NotEmpty(t, c.MultipleText)
		if !essentials[c.Item.Category] {
			seenLeisure = true
		} else {
			assert.False(t, seenLeisure, "essentials must come before leisure")
		}
	}
	assert.True(t, seenLeisure)
}

func TestCostEditing(t *testing.T) {
	ctx := newTestContext()

	post := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/value/costs", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		return serveRequest(t, UpsertCostHandler(ctx), r)
	}
	remove := func(id string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodDelete, "/api/value/costs/"+id, nil)
		return serveRequest(t, RemoveCostHandler(ctx), pathvar.WithVars(r, map[string]string{"id": id}))
	}

	rec := post(`{"id":"espresso","label":"Espresso","usd":3.5,"category":"food"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"espresso"`)
	assert.Len(t, ctx.Catalog.InCategories(valuecontext.Food), len(valuecontext.DefaultCatalog().InCategories(valuecontext.Food))+1)

	rec = post(`{"id":"espresso","label":"Espresso","usd":-1,"category":"food"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = remove("espresso")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"espresso"`)

	rec = remove("espresso")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWagesHandler(t *testing.T) {
	ctx := newTestContext()

	rec := serve(t, WagesHandler(ctx), "/api/value/wages?amount=-62192&region=us")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []struct {
			Region string  `json:"region"`
			Unit   string  `json:"unit"`
			Value  float64 `json:"value"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "US", body.Items[0].Region)
	assert.Equal(t, "years", body.Items[0].Unit)
	assert.InDelta(t, -1.0, body.Items[0].Value, 1e-9)

	rec = serve(t, WagesHandler(ctx), "/api/value/wages?amount=100&region=mars")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCostsAndHealth(t *testing.T) {
	ctx := newTestContext()

	rec := serve(t, CostsHandler(ctx), "/api/value/costs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"coffee"`)

	rec = serve(t, HealthHandler(ctx), "/api/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	code, body := ErrorHandler(context.Background(), errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, errorBody{Error: "Internal server error"}, body)
}
