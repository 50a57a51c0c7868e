// Package rates converts per-period funding rates into hourly and annual figures.
package rates

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// HoursPerYear is the annualization horizon (24 * 365).
const HoursPerYear = 24 * 365

// Mode selects the annualization rule.
type Mode int

const (
	// Simple scales linearly and is the default.
	Simple Mode = iota
	// Compound reinvests every hourly payment.
	Compound
)

func (m Mode) String() string {
	if m == Compound {
		return "compound"
	}
	return "simple"
}

// ParseMode accepts "simple", "compound" or an empty string (simple).
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "simple":
		return Simple, nil
	case "compound":
		return Compound, nil
	default:
		return Simple, fmt.Errorf("rates: unknown mode %q", raw)
	}
}

// PeriodCandidates are the settlement periods a venue can snap to.
var PeriodCandidates = []float64{1, 2, 4, 8, 12}

// ToHourlyRate converts a rate paid every periodHours into a per-hour rate.
// A non-positive period contributes nothing.
func ToHourlyRate(periodRate, periodHours float64, mode Mode) float64 {
	if periodHours <= 0 {
		return 0
	}
	if mode == Compound {
		return math.Pow(1+periodRate, 1/periodHours) - 1
	}
	return periodRate / periodHours
}

// AnnualizeFromHourly projects an hourly rate over a year.
func AnnualizeFromHourly(hourlyRate float64, mode Mode) float64 {
	if mode == Compound {
		return math.Pow(1+hourlyRate, HoursPerYear) - 1
	}
	return hourlyRate * HoursPerYear
}

// CalculateAPR is the only path from a period rate to an annualized rate.
func CalculateAPR(periodRate, periodHours float64, mode Mode) float64 {
	return AnnualizeFromHourly(ToHourlyRate(periodRate, periodHours, mode), mode)
}

// InferPeriodHoursFromHistory estimates the settlement period from settlement
// timestamps (milliseconds, either order). The median gap at index n/2 is
// snapped to the nearest candidate; fewer than two timestamps yield 1.
func InferPeriodHoursFromHistory(timestampsMs []int64) float64 {
	if len(timestampsMs) < 2 {
		return 1
	}
	gaps := make([]float64, 0, len(timestampsMs)-1)
	for i := 1; i < len(timestampsMs); i++ {
		diff := timestampsMs[i] - timestampsMs[i-1]
		if diff < 0 {
			diff = -diff
		}
		gaps = append(gaps, float64(diff)/float64(3_600_000))
	}
	sort.Float64s(gaps)
	return SnapPeriod(gaps[len(gaps)/2])
}

// SnapPeriod returns the candidate closest to hours; ties keep the earlier one.
func SnapPeriod(hours float64) float64 {
	best := PeriodCandidates[0]
	bestDist := math.Abs(hours - best)
	for _, c := range PeriodCandidates[1:] {
		if d := math.Abs(hours - c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
