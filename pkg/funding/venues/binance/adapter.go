// Package binance reads funding from Binance USDⓈ-M futures and from venues
// that expose the same /fapi API.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/rates"
	"fujiscan-api/pkg/symbols"
)

const (
	DefaultBaseURL      = "https://fapi.binance.com"
	defaultPeriodHours  = 8
	defaultHistoryLimit = 3
)

func init() {
	funding.RegisterVenue(string(symbols.Binance), func(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
		return New(symbols.Binance,
			WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
			WithHTTPClient(cfg.HTTPClient(symbols.Binance, deps)),
			WithFixedPeriod(cfg.PeriodOr(defaultPeriodHours)),
			WithHistoryLimit(cfg.HistoryLimitOr(defaultHistoryLimit)),
			WithAssetConcurrency(cfg.AssetConcurrency),
		), nil
	})
}

// Adapter implements funding.Adapter over a /fapi compatible API.
type Adapter struct {
	exchange       symbols.Exchange
	client         *futures.Client
	fixedPeriod    float64
	fallbackPeriod float64
	historyLimit   int
	concurrency    int
}

// Option customises the adapter.
type Option func(*Adapter)

// WithBaseURL points the futures client at another host.
func WithBaseURL(u string) Option {
	return func(a *Adapter) {
		if u != "" {
			a.client.BaseURL = u
		}
	}
}

// WithHTTPClient injects the HTTP client used by the futures SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client.HTTPClient = c
		}
	}
}

// WithFixedPeriod pins the settlement period in hours.
func WithFixedPeriod(h float64) Option {
	return func(a *Adapter) { a.fixedPeriod = h }
}

// WithInferredPeriod derives the period from history, using fallback when
// fewer than two settlements are known.
func WithInferredPeriod(fallback float64) Option {
	return func(a *Adapter) { a.fixedPeriod, a.fallbackPeriod = 0, fallback }
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

// New builds an adapter reporting as exchange.
func New(exchange symbols.Exchange, opts ...Option) *Adapter {
	client := futures.NewClient("", "")
	client.BaseURL = DefaultBaseURL
	a := &Adapter{
		exchange:       exchange,
		client:         client,
		fixedPeriod:    defaultPeriodHours,
		fallbackPeriod: defaultPeriodHours,
		historyLimit:   defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Exchange() symbols.Exchange { return a.exchange }

// FetchFunding implements funding.Adapter.
func (a *Adapter) FetchFunding(ctx context.Context, assets []string) ([]funding.Ticker, error) {
	return funding.Collect(ctx, a.exchange, assets, a.concurrency, a.fetch)
}

func (a *Adapter) fetch(ctx context.Context, raw string, _ symbols.Pair) (funding.Quote, error) {
	premium, err := a.client.NewPremiumIndexService().Symbol(raw).Do(ctx)
	if err != nil {
		return funding.Quote{}, fmt.Errorf("premium index: %w", err)
	}
	if len(premium) == 0 || premium[0] == nil {
		return funding.Quote{}, funding.ErrNoData
	}
	p := premium[0]
	rate, err := strconv.ParseFloat(p.LastFundingRate, 64)
	if err != nil {
		return funding.Quote{}, fmt.Errorf("parse lastFundingRate %q: %w", p.LastFundingRate, err)
	}

	history, err := a.history(ctx, raw)
	if err != nil {
		logx.WithContext(ctx).Errorf("%s: funding history for %s err=%v", a.exchange, raw, err)
	}

	period := a.fixedPeriod
	if period <= 0 {
		period = a.fallbackPeriod
		if len(history) >= 2 {
			period = rates.InferPeriodHoursFromHistory(funding.HistoryTimestamps(history))
		}
	}

	next := time.Now().Add(time.Duration(period * float64(time.Hour)))
	if p.NextFundingTime > 0 {
		next = time.UnixMilli(p.NextFundingTime)
	}

	return funding.Quote{
		SymbolRaw:       raw,
		PeriodHours:     period,
		LastRate:        funding.Float(rate),
		CurrentEstRate:  funding.Float(rate),
		NextFundingTime: next,
		History:         history,
	}, nil
}

func (a *Adapter) history(ctx context.Context, raw string) ([]funding.HistoryPoint, error) {
	rows, err := a.client.NewFundingRateService().Symbol(raw).Limit(a.historyLimit).Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]funding.HistoryPoint, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		r, err := strconv.ParseFloat(row.FundingRate, 64)
		if err != nil {
			continue
		}
		out = append(out, funding.HistoryPoint{TS: row.FundingTime, Rate: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out, nil
}
