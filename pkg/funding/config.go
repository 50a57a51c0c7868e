package funding

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"fujiscan-api/pkg/confkit"
	"fujiscan-api/pkg/symbols"
	"fujiscan-api/pkg/venuehttp"
)

const (
	defaultVenueTimeout = 8 * time.Second
	defaultHTTPTimeout  = 6 * time.Second
)

// Config lists the venues the aggregator may call.
type Config struct {
	TimeoutRaw string                  `yaml:"timeout"`
	Timeout    time.Duration           `yaml:"-"`
	Venues     map[string]*VenueConfig `yaml:"venues"`
}

// VenueConfig tunes one venue adapter and its HTTP stack.
type VenueConfig struct {
	Type    string `yaml:"type"`
	Enabled *bool  `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	RevalidateRaw  string        `yaml:"revalidate"`
	Revalidate     time.Duration `yaml:"-"`

	MaxRetries       int     `yaml:"max_retries"`
	RateLimit        float64 `yaml:"rate_limit"`
	Burst            int     `yaml:"burst"`
	AssetConcurrency int     `yaml:"asset_concurrency"`
	PeriodHours      float64 `yaml:"period_hours"`
	HistoryLimit     int     `yaml:"history_limit"`
	UserAgent        string  `yaml:"user_agent"`
}

// Deps carries shared infrastructure into venue builders.
type Deps struct {
	Store   venuehttp.Store
	KeyFunc func(venue, url string) string
	Base    http.RoundTripper
}

// VenueBuilder constructs an Adapter from configuration.
type VenueBuilder func(cfg *VenueConfig, deps Deps) (Adapter, error)

var (
	venueRegistry   = make(map[string]VenueBuilder)
	venueRegistryMu sync.RWMutex
)

// RegisterVenue makes a venue type available to BuildAdapters. Venue packages
// call it from init.
func RegisterVenue(typeName string, builder VenueBuilder) {
	venueRegistryMu.Lock()
	defer venueRegistryMu.Unlock()
	venueRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupVenueBuilder(typeName string) (VenueBuilder, bool) {
	venueRegistryMu.RLock()
	defer venueRegistryMu.RUnlock()
	b, ok := venueRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return b, ok
}

// RegisteredVenues returns the registered venue types, sorted.
func RegisteredVenues() []string {
	venueRegistryMu.RLock()
	defer venueRegistryMu.RUnlock()
	out := make([]string, 0, len(venueRegistry))
	for name := range venueRegistry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadConfig reads venue configuration from path.
func LoadConfig(path string) (*Config, error) {
	cfg, err := confkit.LoadYAML[Config](path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.normalise()
}

// LoadConfigFromReader decodes venue configuration from r.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg, err := confkit.DecodeYAML[Config](r)
	if err != nil {
		return nil, fmt.Errorf("venue config: %w", err)
	}
	return cfg, cfg.normalise()
}

// DefaultConfig enables every registered venue with default settings.
func DefaultConfig() *Config {
	cfg := &Config{Venues: make(map[string]*VenueConfig)}
	for _, ex := range symbols.SupportedExchanges {
		cfg.Venues[string(ex)] = &VenueConfig{}
	}
	_ = cfg.normalise()
	return cfg
}

func (c *Config) normalise() error {
	d, err := confkit.Duration(c.TimeoutRaw, defaultVenueTimeout)
	if err != nil {
		return fmt.Errorf("venue config: invalid timeout %q: %w", c.TimeoutRaw, err)
	}
	c.Timeout = d
	if c.Venues == nil {
		c.Venues = make(map[string]*VenueConfig)
	}
	for name, v := range c.Venues {
		if v == nil {
			v = &VenueConfig{}
			c.Venues[name] = v
		}
		if strings.TrimSpace(v.Type) == "" {
			v.Type = name
		}
		v.Type = strings.ToLower(strings.TrimSpace(v.Type))
		if err := v.parseDurations(name, c.Timeout); err != nil {
			return err
		}
	}
	return c.Validate()
}

func (v *VenueConfig) parseDurations(name string, venueTimeout time.Duration) error {
	var err error
	if v.Timeout, err = confkit.Duration(v.TimeoutRaw, venueTimeout); err != nil {
		return fmt.Errorf("venue %s: invalid timeout %q: %w", name, v.TimeoutRaw, err)
	}
	if v.HTTPTimeout, err = confkit.Duration(v.HTTPTimeoutRaw, defaultHTTPTimeout); err != nil {
		return fmt.Errorf("venue %s: invalid http_timeout %q: %w", name, v.HTTPTimeoutRaw, err)
	}
	if v.Revalidate, err = confkit.Duration(v.RevalidateRaw, 0); err != nil {
		return fmt.Errorf("venue %s: invalid revalidate %q: %w", name, v.RevalidateRaw, err)
	}
	return nil
}

// Validate checks that every venue names a known exchange and a registered type.
func (c *Config) Validate() error {
	for name, v := range c.Venues {
		if _, ok := symbols.ParseExchange(name); !ok {
			return fmt.Errorf("venue config: %q is not a supported exchange", name)
		}
		if _, ok := lookupVenueBuilder(v.Type); !ok {
			return fmt.Errorf("venue config: venue %s has unsupported type %q", name, v.Type)
		}
		if v.PeriodHours < 0 {
			return fmt.Errorf("venue config: venue %s period_hours must not be negative", name)
		}
	}
	return nil
}

// IsEnabled reports whether the venue should be built; absent means enabled.
func (v *VenueConfig) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

// BaseURLOr returns the configured base URL, or fallback when unset.
func (v *VenueConfig) BaseURLOr(fallback string) string {
	if u := strings.TrimRight(strings.TrimSpace(v.BaseURL), "/"); u != "" {
		return u
	}
	return fallback
}

// PeriodOr returns the configured fixed period, or fallback when unset.
func (v *VenueConfig) PeriodOr(fallback float64) float64 {
	if v.PeriodHours > 0 {
		return v.PeriodHours
	}
	return fallback
}

// HistoryLimitOr returns the configured history window, or fallback when unset.
func (v *VenueConfig) HistoryLimitOr(fallback int) int {
	if v.HistoryLimit > 0 {
		return v.HistoryLimit
	}
	return fallback
}

// HTTPClient builds the resilient client for venue.
func (v *VenueConfig) HTTPClient(venue symbols.Exchange, deps Deps) *http.Client {
	opts := []venuehttp.Option{
		venuehttp.WithRateLimit(v.RateLimit, v.Burst),
	}
	if v.MaxRetries > 0 {
		opts = append(opts, venuehttp.WithMaxRetries(v.MaxRetries))
	}
	if v.UserAgent != "" {
		opts = append(opts, venuehttp.WithUserAgent(v.UserAgent))
	}
	if deps.Store != nil && v.Revalidate > 0 {
		opts = append(opts, venuehttp.WithRevalidation(deps.Store, v.Revalidate))
	}
	if deps.KeyFunc != nil {
		opts = append(opts, venuehttp.WithKeyFunc(deps.KeyFunc))
	}
	if deps.Base != nil {
		opts = append(opts, venuehttp.WithBase(deps.Base))
	}
	return venuehttp.NewClient(string(venue), v.HTTPTimeout, opts...)
}

// BuildAdapters instantiates every enabled venue.
func (c *Config) BuildAdapters(deps Deps) (map[symbols.Exchange]Adapter, error) {
	out := make(map[symbols.Exchange]Adapter, len(c.Venues))
	for name, v := range c.Venues {
		if !v.IsEnabled() {
			continue
		}
		ex, ok := symbols.ParseExchange(name)
		if !ok {
			return nil, fmt.Errorf("venue %s: not a supported exchange", name)
		}
		builder, ok := lookupVenueBuilder(v.Type)
		if !ok {
			return nil, fmt.Errorf("venue %s: unsupported type %q", name, v.Type)
		}
		adapter, err := builder(v, deps)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", name, err)
		}
		out[ex] = adapter
	}
	return out, nil
}

// Timeouts returns the per-venue timeout of every enabled venue.
func (c *Config) Timeouts() map[symbols.Exchange]time.Duration {
	out := make(map[symbols.Exchange]time.Duration, len(c.Venues))
	for name, v := range c.Venues {
		if ex, ok := symbols.ParseExchange(name); ok && v.IsEnabled() {
			out[ex] = v.Timeout
		}
	}
	return out
}
