// Package aster registers the Aster perpetual venue. Aster serves a
// Binance-compatible /fapi API but does not publish a fixed settlement period.
package aster

import (
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/funding/venues/binance"
	"fujiscan-api/pkg/symbols"
)

const (
	DefaultBaseURL      = "https://fapi.asterdex.com"
	defaultPeriodHours  = 8
	defaultHistoryLimit = 10
)

func init() {
	funding.RegisterVenue(string(symbols.Aster), Build)
}

// Build constructs the Aster adapter from venue configuration.
func Build(cfg *funding.VenueConfig, deps funding.Deps) (funding.Adapter, error) {
	opts := []binance.Option{
		binance.WithBaseURL(cfg.BaseURLOr(DefaultBaseURL)),
		binance.WithHTTPClient(cfg.HTTPClient(symbols.Aster, deps)),
		binance.WithHistoryLimit(cfg.HistoryLimitOr(defaultHistoryLimit)),
		binance.WithAssetConcurrency(cfg.AssetConcurrency),
	}
	if cfg.PeriodHours > 0 {
		opts = append(opts, binance.WithFixedPeriod(cfg.PeriodHours))
	} else {
		opts = append(opts, binance.WithInferredPeriod(defaultPeriodHours))
	}
	return binance.New(symbols.Aster, opts...), nil
}
