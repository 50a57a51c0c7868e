package rates

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tone buckets an APR for display.
type Tone string

const (
	ToneMuted    Tone = "muted"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// mutedBand is the |APR| below which a rate is considered noise.
const mutedBand = 0.02

// FormatAPR renders an annualized fraction as a signed percentage with two
// decimals, e.g. 0.1095 -> "+10.95%". Negatives keep their sign even when
// they round to zero ("-0.00%").
func FormatAPR(apr float64) string {
	if math.IsNaN(apr) || math.IsInf(apr, 0) {
		return "n/a"
	}
	// Rounds the exact binary value rather than its shortest decimal form.
	pct := decimal.NewFromFloatWithExponent(math.Abs(apr)*100, -2).StringFixed(2)
	if apr < 0 {
		return "-" + pct + "%"
	}
	return "+" + pct + "%"
}

// ToneOf classifies an APR; anything within ±2% is muted.
func ToneOf(apr float64) Tone {
	switch {
	case math.Abs(apr) < mutedBand:
		return ToneMuted
	case apr > 0:
		return TonePositive
	default:
		return ToneNegative
	}
}
