package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fujiscan-api/pkg/venuehttp"
)

const (
	DefaultBaseURL     = "https://api.hyperliquid.xyz/info"
	defaultHTTPTimeout = 10 * time.Second
	directoryTTL       = 30 * time.Second
)

// ErrSymbolNotFound indicates the coin is not in the perp universe.
var ErrSymbolNotFound = errors.New("hyperliquid: symbol not found")

// Client wraps the Hyperliquid info endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client

	dirMu     sync.RWMutex
	dirLoaded time.Time
	funding   map[string]float64
}

// Option configures a new Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest posts req and decodes the response into result. Retries live in
// the transport.
func (c *Client) doRequest(ctx context.Context, req any, result any) error {
	body, err := venuehttp.PostJSON(ctx, c.httpClient, "hyperliquid", c.baseURL, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("hyperliquid: decode response: %w", err)
	}
	return nil
}

// FundingHistory returns settled funding for coin in [start, end], oldest first.
func (c *Client) FundingHistory(ctx context.Context, coin string, start, end time.Time) ([]FundingHistoryEntry, error) {
	var out []FundingHistoryEntry
	req := FundingHistoryRequest{
		Type:      "fundingHistory",
		Coin:      coin,
		StartTime: start.UnixMilli(),
		EndTime:   end.UnixMilli(),
	}
	if err := c.doRequest(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictedFunding returns the current hourly funding estimate for coin from
// the cached metaAndAssetCtxs directory, refreshing it when older than
// directoryTTL.
func (c *Client) PredictedFunding(ctx context.Context, coin string) (float64, error) {
	c.dirMu.RLock()
	fresh := time.Since(c.dirLoaded) < directoryTTL
	rate, ok := c.funding[normalizeKey(coin)]
	c.dirMu.RUnlock()
	if fresh {
		if !ok {
			return 0, ErrSymbolNotFound
		}
		return rate, nil
	}
	if err := c.refreshDirectory(ctx); err != nil {
		return 0, err
	}
	c.dirMu.RLock()
	rate, ok = c.funding[normalizeKey(coin)]
	c.dirMu.RUnlock()
	if !ok {
		return 0, ErrSymbolNotFound
	}
	return rate, nil
}

func (c *Client) refreshDirectory(ctx context.Context) error {
	var payload MetaAndAssetCtxsResponse
	if err := c.doRequest(ctx, InfoRequest{Type: "metaAndAssetCtxs"}, &payload); err != nil {
		return err
	}
	funding := make(map[string]float64, len(payload.Universe))
	for i, entry := range payload.Universe {
		key := normalizeKey(entry.Name)
		if key == "" || entry.IsDelisted || i >= len(payload.AssetCtxs) {
			continue
		}
		rate, err := parseFloat(payload.AssetCtxs[i].Funding)
		if err != nil {
			continue
		}
		funding[key] = rate
	}
	c.dirMu.Lock()
	c.funding = funding
	c.dirLoaded = time.Now()
	c.dirMu.Unlock()
	return nil
}

func normalizeKey(symbol string) string {
	trimmed := strings.TrimSpace(symbol)
	if len(trimmed) > 4 && strings.EqualFold(trimmed[len(trimmed)-4:], "USDT") {
		trimmed = trimmed[:len(trimmed)-4]
	}
	return strings.ToUpper(trimmed)
}
