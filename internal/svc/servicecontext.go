package svc

import (
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"fujiscan-api/internal/cache"
	"fujiscan-api/internal/config"
	"fujiscan-api/pkg/funding"
	_ "fujiscan-api/pkg/funding/venues/aster"
	_ "fujiscan-api/pkg/funding/venues/binance"
	_ "fujiscan-api/pkg/funding/venues/bybit"
	_ "fujiscan-api/pkg/funding/venues/extended"
	_ "fujiscan-api/pkg/funding/venues/hyperliquid"
	_ "fujiscan-api/pkg/funding/venues/lighter"
	"fujiscan-api/pkg/symbols"
	"fujiscan-api/pkg/valuecontext"
	"fujiscan-api/pkg/venuehttp"
)

type ServiceContext struct {
	Config config.Config
	TTL    cache.TTLSet

	// Store backs upstream revalidation; Redis when configured, else memory.
	Store venuehttp.Store

	VenueConfig *funding.Config
	Adapters    map[symbols.Exchange]funding.Adapter
	Aggregator  *funding.Aggregator

	Catalog *valuecontext.Catalog
	Wages   valuecontext.WagePresets
}

func NewServiceContext(c config.Config) *ServiceContext {
	ttl := cache.NewTTLSet(c.TTL)
	svc := &ServiceContext{
		Config:  c,
		TTL:     ttl,
		Catalog: c.CatalogOrDefault(),
		Wages:   c.WagesOrDefault(),
	}

	if c.Redis.Host != "" {
		svc.Store = venuehttp.NewRedisStore(redis.MustNewRedis(c.Redis))
	} else {
		store, err := venuehttp.NewMemoryStore(cache.UpstreamTTL(ttl))
		logx.Must(err)
		svc.Store = store
	}

	venues := c.VenuesOrDefault()
	adapters, err := venues.BuildAdapters(funding.Deps{
		Store:   svc.Store,
		KeyFunc: cache.UpstreamKey,
	})
	logx.Must(err)
	svc.VenueConfig = venues
	svc.Adapters = adapters
	svc.Aggregator = funding.NewAggregator(adapters,
		funding.WithVenueTimeout(venues.Timeout),
		funding.WithVenueTimeouts(venues.Timeouts()),
	)
	return svc
}
