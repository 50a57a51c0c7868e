// Package symbols maps canonical assets to venue-native perpetual symbols and back.
package symbols

import (
	"regexp"
	"strings"
)

// Exchange identifies a supported perpetual venue.
type Exchange string

const (
	Binance     Exchange = "binance"
	Bybit       Exchange = "bybit"
	Hyperliquid Exchange = "hyperliquid"
	Lighter     Exchange = "lighter"
	Extended    Exchange = "extended"
	Aster       Exchange = "aster"
)

// SupportedExchanges lists venues in their canonical display order.
var SupportedExchanges = []Exchange{Binance, Bybit, Hyperliquid, Lighter, Extended, Aster}

// SupportedAssets lists the base assets the service tracks.
var SupportedAssets = []string{"BTC", "ETH", "SOL", "HYPE"}

const (
	QuoteUSDT = "USDT"
	QuoteUSD  = "USD"
)

// Pair is a canonical base/quote pair.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

var usdtSuffix = regexp.MustCompile(`^([A-Z]+)USDT$`)

// known holds the exact venue symbols for every supported asset.
var known = buildKnown()

func buildKnown() map[Exchange]map[string]Pair {
	out := make(map[Exchange]map[string]Pair, len(SupportedExchanges))
	for _, ex := range SupportedExchanges {
		table := make(map[string]Pair, len(SupportedAssets))
		for _, asset := range SupportedAssets {
			quote := QuoteUSDT
			if ex == Extended {
				quote = QuoteUSD
			}
			table[ForExchange(asset, ex)] = Pair{Base: asset, Quote: quote}
		}
		out[ex] = table
	}
	return out
}

// ParseExchange lower-cases raw and reports whether it names a supported venue.
func ParseExchange(raw string) (Exchange, bool) {
	ex := Exchange(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range SupportedExchanges {
		if candidate == ex {
			return ex, true
		}
	}
	return "", false
}

// ParseAsset upper-cases raw and reports whether it is a supported asset.
func ParseAsset(raw string) (string, bool) {
	asset := strings.ToUpper(strings.TrimSpace(raw))
	for _, candidate := range SupportedAssets {
		if candidate == asset {
			return asset, true
		}
	}
	return "", false
}

// Normalize resolves a venue-native symbol into its canonical pair. It returns
// false for symbols it cannot place; callers skip those assets.
func Normalize(raw string, ex Exchange) (Pair, bool) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if sym == "" {
		return Pair{}, false
	}
	if pair, ok := known[ex][sym]; ok {
		return pair, true
	}

	switch {
	case ex == Extended && strings.Contains(sym, "-"):
		parts := strings.SplitN(sym, "-", 2)
		if parts[0] == "" || parts[1] == "" {
			return Pair{}, false
		}
		return Pair{Base: parts[0], Quote: parts[1]}, true
	case ex == Hyperliquid || ex == Lighter:
		// both venues key markets by bare base asset
		return Pair{Base: sym, Quote: QuoteUSDT}, true
	}

	if m := usdtSuffix.FindStringSubmatch(sym); m != nil {
		return Pair{Base: m[1], Quote: QuoteUSDT}, true
	}
	return Pair{}, false
}

// ForExchange renders base in the venue's native symbol format.
func ForExchange(base string, ex Exchange) string {
	base = strings.ToUpper(strings.TrimSpace(base))
	switch ex {
	case Hyperliquid, Lighter:
		return base
	case Extended:
		return base + "-" + QuoteUSD
	default:
		return base + QuoteUSDT
	}
}
