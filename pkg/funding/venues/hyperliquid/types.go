package hyperliquid

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// InfoRequest is the envelope for parameterless info requests.
type InfoRequest struct {
	Type string `json:"type"`
}

// FundingHistoryRequest asks for settled funding of one coin.
type FundingHistoryRequest struct {
	Type      string `json:"type"`
	Coin      string `json:"coin"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime,omitempty"`
}

// FundingHistoryEntry is one hourly settlement.
type FundingHistoryEntry struct {
	Coin        string `json:"coin"`
	FundingRate string `json:"fundingRate"`
	Premium     string `json:"premium"`
	Time        int64  `json:"time"`
}

// MetaAndAssetCtxsResponse pairs the perp universe with per-asset contexts.
type MetaAndAssetCtxsResponse struct {
	Universe  []UniverseEntry
	AssetCtxs []AssetCtx
}

type UniverseEntry struct {
	Name       string `json:"name"`
	IsDelisted bool   `json:"isDelisted"`
}

// AssetCtx holds the live context of one asset; Funding is the current
// hourly estimate.
type AssetCtx struct {
	Funding  string `json:"funding"`
	Premium  string `json:"premium"`
	MarkPx   string `json:"markPx"`
	OraclePx string `json:"oraclePx"`
}

// UnmarshalJSON accepts both the live two-element array and the single
// object form.
func (m *MetaAndAssetCtxsResponse) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch len(raw) {
	case 0:
		return fmt.Errorf("unexpected metaAndAssetCtxs payload: empty array")
	case 1:
		var meta struct {
			Universe  []UniverseEntry `json:"universe"`
			AssetCtxs []AssetCtx      `json:"assetCtxs"`
		}
		if err := json.Unmarshal(raw[0], &meta); err != nil {
			return err
		}
		m.Universe, m.AssetCtxs = meta.Universe, meta.AssetCtxs
	default:
		var meta struct {
			Universe []UniverseEntry `json:"universe"`
		}
		if err := json.Unmarshal(raw[0], &meta); err != nil {
			return err
		}
		if err := json.Unmarshal(raw[1], &m.AssetCtxs); err != nil {
			return err
		}
		m.Universe = meta.Universe
	}
	return nil
}

func parseFloat(val string) (float64, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(val, 64)
}
