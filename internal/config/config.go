package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"fujiscan-api/pkg/confkit"
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/valuecontext"
)

const (
	defaultTTLShort  = 10
	defaultTTLMedium = 60
)

type CacheTTL struct {
	Short  int `json:",default=10"` // seconds, upstream revalidation fallback
	Medium int `json:",default=60"` // seconds, edge cache on /api/funding
}

type Config struct {
	rest.RestConf
	// Env is one of test | dev | prod. Defaults to test.
	Env   string          `json:",default=test"`
	Redis redis.RedisConf `json:",optional"`
	TTL   CacheTTL        `json:",optional"`

	Venues confkit.Section[funding.Config]           `json:",optional"`
	Costs  confkit.Section[valuecontext.Catalog]     `json:",optional"`
	Wages  confkit.Section[valuecontext.WagePresets] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fillDefaults covers fields whose tag defaults go-zero skips because the
// enclosing section is optional and absent.
func (c *Config) fillDefaults() {
	if c.TTL.Short == 0 {
		c.TTL.Short = defaultTTLShort
	}
	if c.TTL.Medium == 0 {
		c.TTL.Medium = defaultTTLMedium
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.Venues.Hydrate(base, funding.LoadConfig); err != nil {
		return fmt.Errorf("load venues config: %w", err)
	}
	if err := c.Costs.Hydrate(base, valuecontext.LoadCatalog); err != nil {
		return fmt.Errorf("load costs config: %w", err)
	}
	if err := c.Wages.Hydrate(base, loadWages); err != nil {
		return fmt.Errorf("load wages config: %w", err)
	}
	return nil
}

func loadWages(path string) (*valuecontext.WagePresets, error) {
	presets, err := valuecontext.LoadWagePresets(path)
	if err != nil {
		return nil, err
	}
	return &presets, nil
}

// VenuesOrDefault returns the hydrated venue config, or every supported
// venue with defaults when no file is configured.
func (c *Config) VenuesOrDefault() *funding.Config {
	if c.Venues.Loaded() {
		return c.Venues.Value
	}
	return funding.DefaultConfig()
}

func (c *Config) CatalogOrDefault() *valuecontext.Catalog {
	if c.Costs.Loaded() {
		return c.Costs.Value
	}
	return valuecontext.DefaultCatalog()
}

func (c *Config) WagesOrDefault() valuecontext.WagePresets {
	if c.Wages.Loaded() {
		return *c.Wages.Value
	}
	return valuecontext.DefaultWagePresets()
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
