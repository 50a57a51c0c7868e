// Package bybit reads linear perpetual funding from Bybit v5.
package bybit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	bybitapi "github.com/bybit-exchange/bybit.go.api"
	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/funding/probe"
	"fujiscan-api/pkg/symbols"
)

const (
	DefaultBaseURL      = "https://api.bybit.com"
	category            = "linear"
	defaultPeriodHours  = 8
	defaultHistoryLimit = 3
)

func init() {
	funding.RegisterVenue(string(symbols.Bybit), func(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
		return New(
			WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
			WithHTTPClient(cfg.HTTPClient(symbols.Bybit, deps)),
			WithDefaultPeriod(cfg.PeriodOr(defaultPeriodHours)),
			WithHistoryLimit(cfg.HistoryLimitOr(defaultHistoryLimit)),
			WithAssetConcurrency(cfg.AssetConcurrency),
		), nil
	})
}

// Adapter implements funding.Adapter for Bybit.
type Adapter struct {
	baseURL       string
	httpClient    *http.Client
	client        *bybitapi.Client
	defaultPeriod float64
	historyLimit  int
	concurrency   int
}

type Option func(*Adapter)

func WithBaseURL(u string) Option {
	return func(a *Adapter) {
		if u != "" {
			a.baseURL = u
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

// WithDefaultPeriod is used when instruments-info has no funding interval.
func WithDefaultPeriod(h float64) Option {
	return func(a *Adapter) {
		if h > 0 {
			a.defaultPeriod = h
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
		baseURL:       DefaultBaseURL,
		defaultPeriod: defaultPeriodHours,
		historyLimit:  defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.client = bybitapi.NewBybitHttpClient("", "", bybitapi.WithBaseURL(a.baseURL))
	if a.httpClient != nil {
		a.client.HTTPClient = a.httpClient
	}
	return a
}

func (a *Adapter) Exchange() symbols.Exchange { return symbols.Bybit }

func (a *Adapter) FetchFunding(ctx context.Context, assets []string) ([]funding.Ticker, error) {
	return funding.Collect(ctx, symbols.Bybit, assets, a.concurrency, a.fetch)
}

func (a *Adapter) fetch(ctx context.Context, raw string, _ symbols.Pair) (funding.Quote, error) {
	result, err := a.call(ctx, "funding history", func(svc *bybitapi.BybitClientRequest) (*bybitapi.ServerResponse, error) {
		return svc.GetFundingRateHistory(ctx)
	}, map[string]interface{}{"category": category, "symbol": raw, "limit": a.historyLimit})
	if err != nil {
		return funding.Quote{}, err
	}

	rows, _ := probe.Array(result, "list")
	history := make([]funding.HistoryPoint, 0, len(rows))
	for _, row := range rows {
		rate, ok := probe.Float(row, "fundingRate")
		if !ok {
			continue
		}
		ts, ok := probe.Int(row, "fundingRateTimestamp")
		if !ok {
			continue
		}
		history = append(history, funding.HistoryPoint{TS: ts, Rate: rate})
	}
	if len(history) == 0 {
		return funding.Quote{}, funding.ErrNoData
	}
	sort.Slice(history, func(i, j int) bool { return history[i].TS < history[j].TS })
	latest := history[len(history)-1]

	period := a.period(ctx, raw)
	return funding.Quote{
		SymbolRaw:       raw,
		PeriodHours:     period,
		LastRate:        funding.Float(latest.Rate),
		CurrentEstRate:  funding.Float(latest.Rate),
		NextFundingTime: time.UnixMilli(latest.TS).Add(time.Duration(period * float64(time.Hour))),
		History:         history,
	}, nil
}

// period reads fundingInterval (minutes) from instruments-info. Failures fall
// back to the default period.
func (a *Adapter) period(ctx context.Context, raw string) float64 {
	result, err := a.call(ctx, "instruments info", func(svc *bybitapi.BybitClientRequest) (*bybitapi.ServerResponse, error) {
		return svc.GetInstrumentInfo(ctx)
	}, map[string]interface{}{"category": category, "symbol": raw})
	if err != nil {
		logx.WithContext(ctx).Errorf("bybit: instruments info for %s err=%v", raw, err)
		return a.defaultPeriod
	}
	minutes, ok := probe.Float(result, "list.0.fundingInterval")
	if !ok || minutes <= 0 {
		return a.defaultPeriod
	}
	return minutes / 60
}

var errRetCode = errors.New("bybit: non-zero retCode")

func (a *Adapter) call(ctx context.Context, op string, fn func(*bybitapi.BybitClientRequest) (*bybitapi.ServerResponse, error), params map[string]interface{}) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}
	resp, err := fn(a.client.NewUtaBybitServiceWithParams(params))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil {
		return gjson.Result{}, fmt.Errorf("%s: empty response", op)
	}
	if resp.RetCode != 0 {
		return gjson.Result{}, fmt.Errorf("%s: %w %d: %s", op, errRetCode, resp.RetCode, resp.RetMsg)
	}
	payload, err := json.Marshal(resp.Result)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: marshal result: %w", op, err)
	}
	return gjson.ParseBytes(payload), nil
}
