// Package extended reads perpetual funding from the Extended (Starknet) API.
package extended

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

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/funding/probe"
	"fujiscan-api/pkg/symbols"
	"fujiscan-api/pkg/venuehttp"
)

const (
	DefaultBaseURL      = "https://api.starknet.extended.exchange"
	periodHours         = 1
	historyWindow       = 24 * time.Hour
	defaultHistoryLimit = 10
)

func init() {
	funding.RegisterVenue(string(symbols.Extended), func(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
		return New(
			WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
			WithHTTPClient(cfg.HTTPClient(symbols.Extended, deps)),
			WithHistoryLimit(cfg.HistoryLimitOr(defaultHistoryLimit)),
			WithAssetConcurrency(cfg.AssetConcurrency),
		), nil
	})
}

// Adapter implements funding.Adapter for Extended.
type Adapter struct {
	baseURL      string
	httpClient   *http.Client
	historyLimit int
	concurrency  int
	now          func() time.Time
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
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Exchange() symbols.Exchange { return symbols.Extended }

func (a *Adapter) FetchFunding(ctx context.Context, assets []string) ([]funding.Ticker, error) {
	return funding.Collect(ctx, symbols.Extended, assets, a.concurrency, a.fetch)
}

// fetch reads the last day of hourly settlements for market raw (BASE-USD).
// Each item is {m: market, T: ms timestamp, f: hourly rate as string}.
func (a *Adapter) fetch(ctx context.Context, raw string, _ symbols.Pair) (funding.Quote, error) {
	end := a.now()
	q := url.Values{}
	q.Set("startTime", strconv.FormatInt(end.Add(-historyWindow).UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(a.historyLimit))
	endpoint := fmt.Sprintf("%s/api/v1/info/%s/funding?%s", a.baseURL, url.PathEscape(raw), q.Encode())

	body, err := venuehttp.GetJSON(ctx, a.httpClient, string(symbols.Extended), endpoint, nil)
	if err != nil {
		return funding.Quote{}, err
	}
	items, _ := probe.Array(gjson.ParseBytes(body), "data")
	history := make([]funding.HistoryPoint, 0, len(items))
	for _, it := range items {
		ts, okTS := probe.Int(it, "T")
		rate, okRate := probe.Float(it, "f")
		if !okTS || !okRate {
			continue
		}
		history = append(history, funding.HistoryPoint{TS: ts, Rate: rate})
	}
	if len(history) == 0 {
		return funding.Quote{}, funding.ErrNoData
	}
	sort.Slice(history, func(i, j int) bool { return history[i].TS < history[j].TS })
	latest := history[len(history)-1]

	return funding.Quote{
		SymbolRaw:       raw,
		PeriodHours:     periodHours,
		LastRate:        funding.Float(latest.Rate),
		CurrentEstRate:  funding.Float(latest.Rate),
		NextFundingTime: time.UnixMilli(latest.TS).Add(periodHours * time.Hour),
		History:         history,
	}, nil
}
