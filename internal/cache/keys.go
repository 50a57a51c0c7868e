package cache

import (
	"fmt"
	"strings"
	"time"

	"fujiscan-api/internal/config"
)

// Namespace is the Redis key prefix for the service.
const Namespace = "fujiscan"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// UpstreamKey stores a revalidated venue response. It matches the key func
// signature the venue transport expects.
func UpstreamKey(venue, url string) string {
	return formatKey("upstream", venue, url)
}

// UpstreamTTL is the fallback revalidation window for venues that do not set
// their own.
func UpstreamTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// FundingCacheControl renders the edge caching header for /api/funding:
// fresh for the medium TTL, servable stale for twice that.
func FundingCacheControl(ttl TTLSet) string {
	maxAge := ttl.Duration(TTLMedium)
	swr := ttl.Scaled(TTLMedium, 2)
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", int(maxAge.Seconds()), int(swr.Seconds()))
}
