package funding

import (
	"fmt"
	"sort"
	"time"
)

// soonWindow is how close a settlement must be to show up as a signal.
const soonWindow = time.Hour

// Signals summarises a ticker set for the dashboard header.
type Signals struct {
	TopPositive  *Ticker `json:"topPositive,omitempty"`
	TopNegative  *Ticker `json:"topNegative,omitempty"`
	SoonestNext  *Ticker `json:"soonestNext,omitempty"`
	SoonestIn    string  `json:"soonestIn,omitempty"`
	SoonestInMs  int64   `json:"soonestInMs,omitempty"`
	ActiveAssets int     `json:"activeAssets"`
	ActiveVenues int     `json:"activeVenues"`
	HasStaleData bool    `json:"hasStaleData"`
}

// ComputeSignals picks the highest and lowest APR, the soonest settlement
// inside the next hour and coverage counts.
func ComputeSignals(tickers []Ticker, now time.Time) Signals {
	var s Signals
	assets := make(map[string]struct{})
	venues := make(map[string]struct{})
	var soonest time.Duration

	for i := range tickers {
		t := &tickers[i]
		assets[t.Base] = struct{}{}
		venues[string(t.Exchange)] = struct{}{}
		if t.Stale {
			s.HasStaleData = true
		}
		if t.APRSigned > 0 && (s.TopPositive == nil || t.APRSigned > s.TopPositive.APRSigned) {
			s.TopPositive = t
		}
		if t.APRSigned < 0 && (s.TopNegative == nil || t.APRSigned < s.TopNegative.APRSigned) {
			s.TopNegative = t
		}
		next, ok := t.NextFunding()
		if !ok {
			continue
		}
		until := next.Sub(now)
		if until <= 0 || until >= soonWindow {
			continue
		}
		if s.SoonestNext == nil || until < soonest {
			s.SoonestNext, soonest = t, until
		}
	}
	if s.SoonestNext != nil {
		s.SoonestInMs = soonest.Milliseconds()
		s.SoonestIn = FormatTimeRemaining(soonest)
	}
	s.ActiveAssets = len(assets)
	s.ActiveVenues = len(venues)
	return s
}

// SortMode orders the funding table.
type SortMode string

const (
	SortAPR            SortMode = "apr"
	SortAbsAPR         SortMode = "absApr"
	SortNegativesFirst SortMode = "negativesFirst"
)

// ParseSortMode defaults to SortAbsAPR for unknown or empty input.
func ParseSortMode(raw string) SortMode {
	switch SortMode(raw) {
	case SortAPR, SortNegativesFirst:
		return SortMode(raw)
	default:
		return SortAbsAPR
	}
}

// SortTickers orders tickers in place. The sort is stable.
func SortTickers(tickers []Ticker, mode SortMode) {
	abs := func(f float64) float64 {
		if f < 0 {
			return -f
		}
		return f
	}
	sort.SliceStable(tickers, func(i, j int) bool {
		a, b := tickers[i].APRSigned, tickers[j].APRSigned
		switch mode {
		case SortAPR:
			return a > b
		case SortNegativesFirst:
			if (a < 0) != (b < 0) {
				return a < 0
			}
			return abs(a) > abs(b)
		default:
			return abs(a) > abs(b)
		}
	})
}

// QuickFilters narrow the funding table.
type QuickFilters struct {
	NegativesOnly bool
	NextUnder1h   bool
}

// FilterTickers returns the tickers passing every enabled filter.
func FilterTickers(tickers []Ticker, f QuickFilters, now time.Time) []Ticker {
	out := make([]Ticker, 0, len(tickers))
	for _, t := range tickers {
		if f.NegativesOnly && t.APRSigned >= 0 {
			continue
		}
		if f.NextUnder1h {
			next, ok := t.NextFunding()
			if !ok {
				continue
			}
			until := next.Sub(now)
			if until <= 0 || until >= soonWindow {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// FormatTimeRemaining renders d as "Xh Ym" or "Ym".
func FormatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// TimeUntilNextFunding returns the positive delay to t's next settlement.
func TimeUntilNextFunding(t Ticker, now time.Time) (time.Duration, bool) {
	next, ok := t.NextFunding()
	if !ok {
		return 0, false
	}
	d := next.Sub(now)
	return d, d > 0
}
