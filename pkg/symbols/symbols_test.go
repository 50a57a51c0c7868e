package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripForSupportedPairs(t *testing.T) {
	for _, ex := range SupportedExchanges {
		for _, asset := range SupportedAssets {
			raw := ForExchange(asset, ex)
			pair, ok := Normalize(raw, ex)
			require.Truef(t, ok, "%s on %s", raw, ex)
			assert.Equalf(t, asset, pair.Base, "%s on %s", raw, ex)
		}
	}
}

func TestForExchange(t *testing.T) {
	tests := []struct {
		ex   Exchange
		want string
	}{
		{Binance, "BTCUSDT"},
		{Bybit, "BTCUSDT"},
		{Aster, "BTCUSDT"},
		{Hyperliquid, "BTC"},
		{Lighter, "BTC"},
		{Extended, "BTC-USD"},
		{Exchange("okx"), "BTCUSDT"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ex), func(t *testing.T) {
			assert.Equal(t, tt.want, ForExchange("btc", tt.ex))
		})
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ex   Exchange
		want Pair
		ok   bool
	}{
		{name: "static table", raw: "ethusdt", ex: Binance, want: Pair{"ETH", "USDT"}, ok: true},
		{name: "extended hyphen", raw: "DOGE-USD", ex: Extended, want: Pair{"DOGE", "USD"}, ok: true},
		{name: "extended dangling hyphen", raw: "DOGE-", ex: Extended, ok: false},
		{name: "hyperliquid bare base", raw: "kPEPE", ex: Hyperliquid, want: Pair{"KPEPE", "USDT"}, ok: true},
		{name: "lighter bare base", raw: "AVAX", ex: Lighter, want: Pair{"AVAX", "USDT"}, ok: true},
		{name: "usdt suffix", raw: "AVAXUSDT", ex: Bybit, want: Pair{"AVAX", "USDT"}, ok: true},
		{name: "unknown format", raw: "BTC_PERP", ex: Binance, ok: false},
		{name: "empty", raw: " ", ex: Binance, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw, tt.ex)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseExchangeAndAsset(t *testing.T) {
	ex, ok := ParseExchange(" Bybit ")
	assert.True(t, ok)
	assert.Equal(t, Bybit, ex)

	_, ok = ParseExchange("okx")
	assert.False(t, ok)

	asset, ok := ParseAsset("hype")
	assert.True(t, ok)
	assert.Equal(t, "HYPE", asset)

	_, ok = ParseAsset("DOGE")
	assert.False(t, ok)
}
