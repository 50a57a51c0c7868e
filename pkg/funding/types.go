// Package funding normalizes perpetual funding rates from several venues into
// one comparable ticker shape and aggregates them concurrently.
package funding

import (
	"context"
	"errors"
	"time"

	"fujiscan-api/pkg/rates"
	"fujiscan-api/pkg/symbols"
)

// TimeLayout is the ISO-8601 form used for every timestamp in a ticker.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var (
	// ErrInvalidSelection is returned when no supported asset or exchange remains
	// after filtering a request.
	ErrInvalidSelection = errors.New("funding: invalid assets or exchanges")
	// ErrNoData marks an asset the venue does not list. It is skipped, not
	// counted as a failure.
	ErrNoData = errors.New("funding: no data for symbol")
)

// Adapter fetches funding data for a batch of assets from one venue.
type Adapter interface {
	Exchange() symbols.Exchange
	FetchFunding(ctx context.Context, assets []string) ([]Ticker, error)
}

// HistoryPoint is one settled funding payment.
type HistoryPoint struct {
	TS   int64   `json:"ts"`
	Rate float64 `json:"rate"`
}

// Ticker is the normalized funding view of one venue symbol.
type Ticker struct {
	ID                 string           `json:"id"`
	Exchange           symbols.Exchange `json:"exchange"`
	Base               string           `json:"base"`
	Quote              string           `json:"quote"`
	SymbolRaw          string           `json:"symbolRaw"`
	FundingPeriodHours float64          `json:"fundingPeriodHours"`
	LastFundingRate    *float64         `json:"lastFundingRate,omitempty"`
	NextFundingRate    *float64         `json:"nextFundingRate,omitempty"`
	CurrentEstRate     *float64         `json:"currentEstRate,omitempty"`
	APRSigned          float64          `json:"aprSigned"`
	NextFundingTime    string           `json:"nextFundingTime,omitempty"`
	TS                 string           `json:"ts"`
	History            []HistoryPoint   `json:"history"`
	Source             string           `json:"source"`
	Stale              bool             `json:"stale"`
}

// Quote is what an adapter knows about one symbol before normalization.
type Quote struct {
	Pair            symbols.Pair
	SymbolRaw       string
	PeriodHours     float64
	LastRate        *float64
	NextRate        *float64
	CurrentEstRate  *float64
	NextFundingTime time.Time
	History         []HistoryPoint
}

// NewTicker builds a ticker from q. The APR is always derived here from the
// period rate and period length.
func NewTicker(ex symbols.Exchange, q Quote, now time.Time) Ticker {
	period := q.PeriodHours
	if period <= 0 {
		period = 1
	}
	history := q.History
	if history == nil {
		history = []HistoryPoint{}
	}
	t := Ticker{
		ID:                 TickerID(ex, q.SymbolRaw),
		Exchange:           ex,
		Base:               q.Pair.Base,
		Quote:              q.Pair.Quote,
		SymbolRaw:          q.SymbolRaw,
		FundingPeriodHours: period,
		LastFundingRate:    q.LastRate,
		NextFundingRate:    q.NextRate,
		CurrentEstRate:     q.CurrentEstRate,
		TS:                 FormatTime(now),
		History:            history,
		Source:             string(ex),
	}
	if !q.NextFundingTime.IsZero() {
		t.NextFundingTime = FormatTime(q.NextFundingTime)
	}
	t.APRSigned = t.APR(rates.Simple)
	return t
}

// APR annualizes the ticker's period rate under mode. The last settled rate
// is preferred, the venue's current estimate is the fallback.
func (t Ticker) APR(mode rates.Mode) float64 {
	rate := t.LastFundingRate
	if rate == nil {
		rate = t.CurrentEstRate
	}
	if rate == nil {
		return 0
	}
	return rates.CalculateAPR(*rate, t.FundingPeriodHours, mode)
}

// NextFunding parses NextFundingTime; ok is false when absent or malformed.
func (t Ticker) NextFunding() (time.Time, bool) {
	if t.NextFundingTime == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, t.NextFundingTime)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// TickerID is stable per exchange and venue-native symbol.
func TickerID(ex symbols.Exchange, symbolRaw string) string {
	return string(ex) + "-" + symbolRaw
}

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Float returns a pointer to f, for optional rate fields.
func Float(f float64) *float64 {
	return &f
}

// HistoryTimestamps extracts settlement times for period inference.
func HistoryTimestamps(history []HistoryPoint) []int64 {
	out := make([]int64, len(history))
	for i, h := range history {
		out[i] = h.TS
	}
	return out
}
