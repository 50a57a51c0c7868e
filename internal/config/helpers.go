package config

import (
	"fmt"

	"fujiscan-api/pkg/confkit"
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/valuecontext"
)

// MustLoadVenues loads etc/venues.yaml from the project root and panics on
// error. Tools that only poll venues use it instead of the full app config.
func MustLoadVenues() *funding.Config {
	path := confkit.MustProjectPath("etc/venues.yaml")
	cfg, err := funding.LoadConfig(path)
	if err != nil {
		panic(fmt.Errorf("load venues config %s: %w", path, err))
	}
	return cfg
}

// MustLoadCatalog loads etc/costs.yaml from the project root and panics on error.
func MustLoadCatalog() *valuecontext.Catalog {
	path := confkit.MustProjectPath("etc/costs.yaml")
	cat, err := valuecontext.LoadCatalog(path)
	if err != nil {
		panic(fmt.Errorf("load costs config %s: %w", path, err))
	}
	return cat
}
