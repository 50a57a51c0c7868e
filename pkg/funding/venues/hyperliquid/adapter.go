// Package hyperliquid reads perpetual funding from the Hyperliquid info API.
//
// Hyperliquid computes funding over an 8h window but settles, and reports,
// the rate every hour, so the reporting period of one hour is what gets
// annualized.
package hyperliquid

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/symbols"
)

const (
	reportingPeriodHours = 1
	historyWindow        = 24 * time.Hour
)

func init() {
	funding.RegisterVenue(string(symbols.Hyperliquid), func(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
		client := NewClient(
			WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
			WithHTTPClient(cfg.HTTPClient(symbols.Hyperliquid, deps)),
		)
		return NewAdapter(client, WithAssetConcurrency(cfg.AssetConcurrency)), nil
	})
}

// Adapter implements funding.Adapter for Hyperliquid.
type Adapter struct {
	client      *Client
	concurrency int
	now         func() time.Time
}

type AdapterOption func(*Adapter)

func WithAssetConcurrency(n int) AdapterOption {
	return func(a *Adapter) { a.concurrency = n }
}

func NewAdapter(client *Client, opts ...AdapterOption) *Adapter {
	if client == nil {
		client = NewClient()
	}
	a := &Adapter{client: client, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Exchange() symbols.Exchange { return symbols.Hyperliquid }

func (a *Adapter) FetchFunding(ctx context.Context, assets []string) ([]funding.Ticker, error) {
	return funding.Collect(ctx, symbols.Hyperliquid, assets, a.concurrency, a.fetch)
}

func (a *Adapter) fetch(ctx context.Context, coin string, _ symbols.Pair) (funding.Quote, error) {
	end := a.now()
	entries, err := a.client.FundingHistory(ctx, coin, end.Add(-historyWindow), end)
	if err != nil {
		return funding.Quote{}, fmt.Errorf("funding history: %w", err)
	}

	history := make([]funding.HistoryPoint, 0, len(entries))
	for _, e := range entries {
		rate, err := parseFloat(e.FundingRate)
		if err != nil {
			continue
		}
		history = append(history, funding.HistoryPoint{TS: e.Time, Rate: rate})
	}
	if len(history) == 0 {
		return funding.Quote{}, funding.ErrNoData
	}
	sort.Slice(history, func(i, j int) bool { return history[i].TS < history[j].TS })
	latest := history[len(history)-1]

	estimate := latest.Rate
	if predicted, err := a.client.PredictedFunding(ctx, coin); err == nil {
		estimate = predicted
	} else {
		logx.WithContext(ctx).Infof("hyperliquid: predicted funding for %s unavailable: %v", coin, err)
	}

	return funding.Quote{
		SymbolRaw:       coin,
		PeriodHours:     reportingPeriodHours,
		LastRate:        funding.Float(latest.Rate),
		CurrentEstRate:  funding.Float(estimate),
		NextFundingTime: time.UnixMilli(latest.TS).Add(reportingPeriodHours * time.Hour),
		History:         history,
	}, nil
}
