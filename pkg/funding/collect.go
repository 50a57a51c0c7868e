package funding

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond"
	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/symbols"
)

// AssetFetcher produces the quote for one asset. raw is the venue-native
// symbol and pair its normalized form.
type AssetFetcher func(ctx context.Context, raw string, pair symbols.Pair) (Quote, error)

// Collect runs fetch for every asset on venue ex and builds tickers. Assets
// whose symbol cannot be normalized are skipped, and a failing asset is
// logged and omitted. An error is returned only when every attempted asset
// failed. With concurrency > 1 assets are fetched on a bounded pool; output
// keeps the request order either way.
func Collect(ctx context.Context, ex symbols.Exchange, assets []string, concurrency int, fetch AssetFetcher) ([]Ticker, error) {
	type job struct {
		raw  string
		pair symbols.Pair
	}
	jobs := make([]job, 0, len(assets))
	for _, asset := range assets {
		raw := symbols.ForExchange(asset, ex)
		pair, ok := symbols.Normalize(raw, ex)
		if !ok {
			continue
		}
		jobs = append(jobs, job{raw: raw, pair: pair})
	}
	if len(jobs) == 0 {
		return []Ticker{}, nil
	}

	quotes := make([]*Quote, len(jobs))
	errs := make([]error, len(jobs))
	run := func(i int) {
		q, err := safeFetch(ctx, fetch, jobs[i].raw, jobs[i].pair)
		if err != nil {
			errs[i] = err
			return
		}
		if q.Pair.Base == "" {
			q.Pair = jobs[i].pair
		}
		if q.SymbolRaw == "" {
			q.SymbolRaw = jobs[i].raw
		}
		quotes[i] = &q
	}

	if concurrency > 1 && len(jobs) > 1 {
		pool := pond.New(min(concurrency, len(jobs)), len(jobs))
		group := pool.Group()
		for i := range jobs {
			group.Submit(func() { run(i) })
		}
		group.Wait()
		pool.StopAndWait()
	} else {
		for i := range jobs {
			run(i)
		}
	}

	now := nowFunc()
	tickers := make([]Ticker, 0, len(jobs))
	var failures []error
	skipped := 0
	for i, q := range quotes {
		switch {
		case q != nil:
			tickers = append(tickers, NewTicker(ex, *q, now))
		case errors.Is(errs[i], ErrNoData):
			skipped++
			logx.WithContext(ctx).Infof("%s: no funding data for %s", ex, jobs[i].raw)
		default:
			failures = append(failures, fmt.Errorf("%s: %w", jobs[i].raw, errs[i]))
			logx.WithContext(ctx).Errorf("%s: fetch funding for %s err=%v", ex, jobs[i].raw, errs[i])
		}
	}
	if len(failures) > 0 && len(failures) == len(jobs)-skipped {
		return nil, fmt.Errorf("%s: all assets failed: %w", ex, errors.Join(failures...))
	}
	return tickers, nil
}

func safeFetch(ctx context.Context, fetch AssetFetcher, raw string, pair symbols.Pair) (q Quote, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	return fetch(ctx, raw, pair)
}
