package funding

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"fujiscan-api/pkg/symbols"
)

var nowFunc = time.Now

// Meta describes how a response was assembled.
type Meta struct {
	Timestamp       string   `json:"timestamp"`
	Assets          []string `json:"assets"`
	Exchanges       []string `json:"exchanges"`
	Stale           bool     `json:"stale"`
	FailedExchanges int      `json:"failedExchanges"`
}

// Response is the merged result of one aggregation.
type Response struct {
	Data []Ticker `json:"data"`
	Meta Meta     `json:"meta"`
}

// VenueOutcome reports how one venue call ended.
type VenueOutcome struct {
	Exchange symbols.Exchange
	Count    int
	Err      error
	Elapsed  time.Duration
}

// Aggregator fans a request out to every selected venue and merges the results.
type Aggregator struct {
	adapters map[symbols.Exchange]Adapter
	timeout  time.Duration
	timeouts map[symbols.Exchange]time.Duration
	observe  func(VenueOutcome)
}

// AggregatorOption customises an Aggregator.
type AggregatorOption func(*Aggregator)

// WithVenueTimeout bounds every venue call.
func WithVenueTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithVenueTimeouts overrides the timeout for specific venues.
func WithVenueTimeouts(m map[symbols.Exchange]time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		for ex, d := range m {
			if d > 0 {
				a.timeouts[ex] = d
			}
		}
	}
}

// WithObserver receives every venue outcome, e.g. for logging in the poller.
func WithObserver(fn func(VenueOutcome)) AggregatorOption {
	return func(a *Aggregator) { a.observe = fn }
}

// NewAggregator builds an Aggregator over adapters.
func NewAggregator(adapters map[symbols.Exchange]Adapter, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		adapters: adapters,
		timeout:  defaultVenueTimeout,
		timeouts: make(map[symbols.Exchange]time.Duration),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ResolveSelection filters the requested assets and exchanges against the
// supported sets, keeping request order and dropping duplicates. A nil list
// selects everything; a list that filters down to nothing is invalid.
func ResolveSelection(assets, exchanges []string) ([]string, []symbols.Exchange, error) {
	var outAssets []string
	if assets == nil {
		outAssets = append(outAssets, symbols.SupportedAssets...)
	} else {
		seen := make(map[string]struct{}, len(assets))
		for _, raw := range assets {
			asset, ok := symbols.ParseAsset(raw)
			if !ok {
				continue
			}
			if _, dup := seen[asset]; dup {
				continue
			}
			seen[asset] = struct{}{}
			outAssets = append(outAssets, asset)
		}
	}

	var outExchanges []symbols.Exchange
	if exchanges == nil {
		outExchanges = append(outExchanges, symbols.SupportedExchanges...)
	} else {
		seen := make(map[symbols.Exchange]struct{}, len(exchanges))
		for _, raw := range exchanges {
			ex, ok := symbols.ParseExchange(raw)
			if !ok {
				continue
			}
			if _, dup := seen[ex]; dup {
				continue
			}
			seen[ex] = struct{}{}
			outExchanges = append(outExchanges, ex)
		}
	}

	if len(outAssets) == 0 || len(outExchanges) == 0 {
		return nil, nil, ErrInvalidSelection
	}
	return outAssets, outExchanges, nil
}

// GetAggregatedFunding calls every selected venue concurrently, waits for all
// of them and merges what succeeded. A venue that errors, panics, times out
// or has no adapter contributes nothing and counts as failed; any failure
// marks the whole result stale.
func (a *Aggregator) GetAggregatedFunding(ctx context.Context, assets, exchanges []string) (*Response, error) {
	selAssets, selExchanges, err := ResolveSelection(assets, exchanges)
	if err != nil {
		return nil, err
	}

	outcomes := make([]venueResult, len(selExchanges))
	group := threading.NewRoutineGroup()
	for i, ex := range selExchanges {
		outcomes[i] = venueResult{err: errVenuePanic}
		group.RunSafe(func() {
			outcomes[i] = a.callVenue(ctx, ex, selAssets)
		})
	}
	group.Wait()

	data := make([]Ticker, 0)
	failed := 0
	for _, r := range outcomes {
		if r.err != nil {
			failed++
			continue
		}
		data = append(data, r.tickers...)
	}
	if failed > 0 {
		for i := range data {
			data[i].Stale = true
		}
	}

	exNames := make([]string, len(selExchanges))
	for i, ex := range selExchanges {
		exNames[i] = string(ex)
	}
	return &Response{
		Data: data,
		Meta: Meta{
			Timestamp:       FormatTime(nowFunc()),
			Assets:          selAssets,
			Exchanges:       exNames,
			Stale:           failed > 0,
			FailedExchanges: failed,
		},
	}, nil
}

type venueResult struct {
	tickers []Ticker
	err     error
}

var errNoAdapter = errors.New("no adapter registered")

func (a *Aggregator) callVenue(ctx context.Context, ex symbols.Exchange, assets []string) venueResult {
	start := time.Now()
	result := venueResult{err: errNoAdapter}
	defer func() {
		elapsed := time.Since(start)
		outcome := "ok"
		switch {
		case result.err == nil:
		case errors.Is(result.err, context.DeadlineExceeded):
			outcome = "timeout"
		case errors.Is(result.err, errVenuePanic):
			outcome = "panic"
		default:
			outcome = "error"
		}
		venueCalls.Inc(string(ex), outcome)
		venueDuration.Observe(elapsed.Milliseconds(), string(ex))
		if result.err != nil {
			logx.WithContext(ctx).Errorf("funding: venue %s failed after %s err=%v", ex, elapsed.Round(time.Millisecond), result.err)
		}
		if a.observe != nil {
			a.observe(VenueOutcome{Exchange: ex, Count: len(result.tickers), Err: result.err, Elapsed: elapsed})
		}
	}()

	adapter, ok := a.adapters[ex]
	if !ok || adapter == nil {
		return result
	}

	timeout := a.timeout
	if d, ok := a.timeouts[ex]; ok {
		timeout = d
	}
	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan venueResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logx.WithContext(vctx).Errorf("funding: venue %s panic: %v\n%s", ex, p, debug.Stack())
				done <- venueResult{err: fmt.Errorf("%w: %v", errVenuePanic, p)}
			}
		}()
		tickers, err := adapter.FetchFunding(vctx, assets)
		done <- venueResult{tickers: tickers, err: err}
	}()

	select {
	case r := <-done:
		result = r
		if result.tickers == nil && result.err == nil {
			result.tickers = []Ticker{}
		}
	case <-vctx.Done():
		result = venueResult{err: fmt.Errorf("venue %s: %w", ex, vctx.Err())}
	}
	return result
}

var errVenuePanic = errors.New("venue panicked")

// SelectionList is ParseList for a query parameter that may be absent. An
// absent parameter selects everything (nil); a present one is a list even when
// blank, so "?assets=" filters down to nothing.
func SelectionList(raw string, present bool) []string {
	out := ParseList(raw)
	if out == nil && present {
		return []string{}
	}
	return out
}

// ParseList splits a comma separated query value. An empty or whitespace-only
// value yields nil, meaning "not provided".
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
