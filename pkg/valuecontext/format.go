package valuecontext

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMultiple renders m with magnitude-tiered precision: whole numbers from
// 10 up, one decimal in [2, 10), two below 2. Multiples near an integer get a
// leading "~", e.g. "~-3.0×".
func FormatMultiple(m float64) string {
	abs := math.Abs(m)
	var body string
	switch {
	case abs >= 10:
		body = strconv.FormatFloat(math.Round(abs), 'f', 0, 64)
	case abs >= 2:
		body = decimalFixed(abs, 1)
	default:
		body = decimalFixed(abs, 2)
	}
	sign := ""
	if m < 0 {
		sign = "-"
	}
	if IsNiceInteger(m) {
		return "~" + sign + body + "×"
	}
	return sign + body + "×"
}

// FormatUSD renders whole dollars with thousands separators: "$1,200",
// "-$45".
func FormatUSD(amount float64) string {
	whole := decimal.NewFromFloat(math.Abs(amount)).Round(0).String()
	out := "$" + groupThousands(whole)
	if amount < 0 && whole != "0" {
		out = "-" + out
	}
	return out
}

// formatAmount keeps up to three decimals, like a locale number format.
func formatAmount(amount float64) string {
	d := decimal.NewFromFloat(math.Abs(amount)).Round(3)
	intPart, frac, _ := strings.Cut(d.String(), ".")
	out := "$" + groupThousands(intPart)
	if frac != "" {
		out += "." + frac
	}
	if amount < 0 {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// decimalFixed rounds the exact binary value of v half-up to places digits,
// so 1.005 renders as "1.00". A negative v keeps its sign even when the
// rounded digits are zero.
func decimalFixed(v float64, places int32) string {
	out := decimal.NewFromFloatWithExponent(math.Abs(v), -places).StringFixed(places)
	if v < 0 {
		return "-" + out
	}
	return out
}
