// Package lighter reads perpetual funding from the Lighter (zkLighter) API.
//
// The funding-rates listing is fetched once per batch and matched per asset;
// the listing does not use one fixed symbol field, so several are probed.
package lighter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/funding/probe"
	"fujiscan-api/pkg/rates"
	"fujiscan-api/pkg/symbols"
	"fujiscan-api/pkg/venuehttp"
)

const (
	DefaultBaseURL      = "https://mainnet.zklighter.elliot.ai"
	defaultPeriodHours  = 8
	defaultHistoryLimit = 10
)

var (
	symbolFields = []string{"symbol", "market", "pair", "token", "coin"}
	rateFields   = []string{"fundingRate", "rate", "funding_rate", "lastFundingRate"}
)

func init() {
	funding.RegisterVenue(string(symbols.Lighter), func(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
		return New(
			WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
			WithHTTPClient(cfg.HTTPClient(symbols.Lighter, deps)),
			WithFallbackPeriod(cfg.PeriodOr(defaultPeriodHours)),
			WithHistoryLimit(cfg.HistoryLimitOr(defaultHistoryLimit)),
			WithAssetConcurrency(cfg.AssetConcurrency),
		), nil
	})
}

// Adapter implements funding.Adapter for Lighter.
type Adapter struct {
	baseURL        string
	httpClient     *http.Client
	fallbackPeriod float64
	historyLimit   int
	concurrency    int
	now            func() time.Time
}

type Option func(*Adapter)

func WithBaseURL(u string) Option {
	return func(a *Adapter) {
		if u != "" {
			a.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithFallbackPeriod applies when fewer than two settlements are known.
func WithFallbackPeriod(h float64) Option {
	return func(a *Adapter) {
		if h > 0 {
			a.fallbackPeriod = h
		}
	}
}

func WithHistoryLimit(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.historyLimit = n
		}
	}
}

func WithAssetConcurrency(n int) Option {
	return func(a *Adapter) { a.concurrency = n }
}

func New(opts ...Option) *Adapter {
	a := &Adapter{
		baseURL:        DefaultBaseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		fallbackPeriod: defaultPeriodHours,
		historyLimit:   defaultHistoryLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Exchange() symbols.Exchange { return symbols.Lighter }

// FetchFunding fails the whole batch when the funding-rates listing cannot be
// read; per-asset history failures only drop history.
func (a *Adapter) FetchFunding(ctx context.Context, assets []string) ([]funding.Ticker, error) {
	listing, err := a.fundingRates(ctx)
	if err != nil {
		return nil, err
	}
	return funding.Collect(ctx, symbols.Lighter, assets, a.concurrency, func(ctx context.Context, raw string, pair symbols.Pair) (funding.Quote, error) {
		return a.fetch(ctx, listing, raw, pair)
	})
}

func (a *Adapter) fundingRates(ctx context.Context) ([]gjson.Result, error) {
	body, err := venuehttp.GetJSON(ctx, a.httpClient, string(symbols.Lighter), a.baseURL+"/api/v1/funding-rates", nil)
	if err != nil {
		return nil, fmt.Errorf("funding rates: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("lighter: funding rates: invalid json")
	}
	items, _ := probe.Array(gjson.ParseBytes(body), "funding_rates")
	return items, nil
}

func (a *Adapter) fetch(ctx context.Context, listing []gjson.Result, raw string, pair symbols.Pair) (funding.Quote, error) {
	item, ok := findItem(listing, raw, pair.Base)
	if !ok {
		return funding.Quote{}, funding.ErrNoData
	}
	rate, ok := probe.Float(item, rateFields...)
	if !ok {
		return funding.Quote{}, fmt.Errorf("lighter: %s: no funding rate in listing", raw)
	}

	history, err := a.history(ctx, raw)
	if err != nil {
		logx.WithContext(ctx).Infof("lighter: history for %s unavailable: %v", raw, err)
	}

	period := a.fallbackPeriod
	if len(history) >= 2 {
		period = rates.InferPeriodHoursFromHistory(funding.HistoryTimestamps(history))
	}

	return funding.Quote{
		SymbolRaw:       raw,
		PeriodHours:     period,
		LastRate:        funding.Float(rate),
		CurrentEstRate:  funding.Float(rate),
		NextFundingTime: a.now().Add(time.Duration(period * float64(time.Hour))),
		History:         history,
	}, nil
}

func (a *Adapter) history(ctx context.Context, raw string) ([]funding.HistoryPoint, error) {
	q := url.Values{}
	q.Set("symbol", raw)
	q.Set("limit", strconv.Itoa(a.historyLimit))
	body, err := venuehttp.GetJSON(ctx, a.httpClient, string(symbols.Lighter), a.baseURL+"/api/v1/fundings?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	items, ok := probe.Array(gjson.ParseBytes(body), "", "fundings", "data")
	if !ok {
		return nil, nil
	}
	out := make([]funding.HistoryPoint, 0, len(items))
	for _, it := range items {
		ts, okTS := probe.Int(it, "timestamp", "t")
		rate, okRate := probe.Float(it, "fundingRate", "rate")
		if !okTS || !okRate {
			continue
		}
		out = append(out, funding.HistoryPoint{TS: ts, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out, nil
}

// findItem matches the first listing entry naming asset in any accepted form.
// Entries tagged with another venue are ignored.
func findItem(listing []gjson.Result, raw, asset string) (gjson.Result, bool) {
	candidates := []string{
		raw,
		asset,
		asset + "USDT",
		asset + "-USDT",
		asset + "_USDT",
		strings.ToUpper(asset),
		strings.ToLower(asset),
	}
	for _, item := range listing {
		if ex := item.Get("exchange").String(); ex != "" && !strings.EqualFold(ex, string(symbols.Lighter)) {
			continue
		}
		sym, ok := probe.String(item, symbolFields...)
		if !ok {
			continue
		}
		for _, c := range candidates {
			if sym == c {
				return item, true
			}
		}
	}
	return gjson.Result{}, false
}
