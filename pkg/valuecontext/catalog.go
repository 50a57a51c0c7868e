// Package valuecontext turns a dollar amount into everyday comparisons: how
// many coffees, rents or laptops it buys, and how long it takes to earn.
package valuecontext

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"fujiscan-api/pkg/confkit"
)

// Category groups cost items for filtering.
type Category string

const (
	Housing   Category = "housing"
	Tech      Category = "tech"
	Travel    Category = "travel"
	Food      Category = "food"
	Utilities Category = "utilities"
	Leisure   Category = "leisure"
)

var categories = []Category{Housing, Tech, Travel, Food, Utilities, Leisure}

// ParseCategory lower-cases raw and reports whether it is a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range categories {
		if known == c {
			return c, true
		}
	}
	return "", false
}

// CostItem is a priced anchor an amount can be compared against.
type CostItem struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	USD      float64  `json:"usd" yaml:"usd"`
	Category Category `json:"category,omitempty" yaml:"category"`
	Editable bool     `json:"editable" yaml:"editable"`
}

func (c CostItem) validate() error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(c.Label) == "":
		return fmt.Errorf("%s: missing label", c.ID)
	case math.IsNaN(c.USD) || math.IsInf(c.USD, 0) || c.USD <= 0:
		return fmt.Errorf("%s: usd must be a positive number", c.ID)
	}
	if c.Category != "" {
		if _, ok := ParseCategory(string(c.Category)); !ok {
			return fmt.Errorf("%s: unknown category %q", c.ID, c.Category)
		}
	}
	return nil
}

// Catalog is the editable set of cost items. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	items []CostItem
}

type catalogFile struct {
	Items []CostItem `yaml:"items"`
}

// NewCatalog validates items and wraps them; ids must be unique.
func NewCatalog(items []CostItem) (*Catalog, error) {
	seen := make(map[string]struct{}, len(items))
	out := make([]CostItem, 0, len(items))
	for _, it := range items {
		it.Category = Category(strings.ToLower(string(it.Category)))
		if err := it.validate(); err != nil {
			return nil, fmt.Errorf("valuecontext: catalog: %w", err)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("valuecontext: catalog: duplicate id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return &Catalog{items: out}, nil
}

// LoadCatalog reads a YAML catalog of the form `items: [...]`. An empty file
// yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := confkit.LoadYAML[catalogFile](path)
	if err != nil {
		return nil, err
	}
	if len(file.Items) == 0 {
		return DefaultCatalog(), nil
	}
	return NewCatalog(file.Items)
}

// Items returns a copy of the catalog.
func (c *Catalog) Items() []CostItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CostItem, len(c.items))
	copy(out, c.items)
	return out
}

// InCategories returns items whose category is in cats; no cats means all.
func (c *Catalog) InCategories(cats ...Category) []CostItem {
	items := c.Items()
	if len(cats) == 0 {
		return items
	}
	out := items[:0]
	for _, it := range items {
		for _, cat := range cats {
			if it.Category == cat {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Upsert replaces the item with the same id or appends a new one.
// Non-editable items cannot be replaced.
func (c *Catalog) Upsert(item CostItem) error {
	item.Category = Category(strings.ToLower(string(item.Category)))
	if err := item.validate(); err != nil {
		return fmt.Errorf("valuecontext: upsert: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.ID != item.ID {
			continue
		}
		if !existing.Editable {
			return fmt.Errorf("valuecontext: upsert: %s is not editable", item.ID)
		}
		c.items[i] = item
		return nil
	}
	c.items = append(c.items, item)
	return nil
}

// Remove deletes the item with id and reports whether it existed.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in anchors.
func DefaultCatalog() *Catalog {
	items := make([]CostItem, len(defaultItems))
	copy(items, defaultItems)
	return &Catalog{items: items}
}

var defaultItems = []CostItem{
	// housing
	{ID: "rent_1br", Label: "Month of rent (1BR)", USD: 1200, Category: Housing, Editable: true},
	{ID: "rent_room", Label: "Month of rent (room in shared apt.)", USD: 700, Category: Housing, Editable: true},
	{ID: "living_barebones_month", Label: "Barebones living basket (1 month)", USD: 1000, Category: Housing, Editable: true},
	{ID: "living_comfortable_month", Label: "Comfortable living basket (1 month)", USD: 1800, Category: Housing, Editable: true},

	// food
	{ID: "groceries_month", Label: "Groceries (1 month)", USD: 250, Category: Food, Editable: true},
	{ID: "coffee", Label: "Coffee", USD: 3, Category: Food, Editable: true},
	{ID: "ramen_bowl", Label: "Ramen bowl", USD: 9, Category: Food, Editable: true},
	{ID: "conbini_bento", Label: "Convenience-store bento", USD: 5, Category: Food, Editable: true},
	{ID: "sushi_omakase_mid", Label: "Sushi omakase (mid-range, per person)", USD: 60, Category: Food, Editable: true},
	{ID: "casual_dinner_for_two", Label: "Casual dinner for two", USD: 80, Category: Food, Editable: true},
	{ID: "cocktail_bar", Label: "Cocktail (nice bar)", USD: 12, Category: Food, Editable: true},

	// travel and local transport
	{ID: "metro_daypass", Label: "Metro/Train day pass (24h)", USD: 7, Category: Travel, Editable: true},
	{ID: "commuter_pass_month", Label: "Commuter pass (1 month)", USD: 75, Category: Travel, Editable: true},
	{ID: "rideshare_10km", Label: "Rideshare (10 km)", USD: 15, Category: Travel, Editable: true},
	{ID: "airport_train_oneway", Label: "Airport express train (one-way)", USD: 25, Category: Travel, Editable: true},
	{ID: "domestic_flight_rt", Label: "Domestic flight (RT, economy)", USD: 150, Category: Travel, Editable: true},
	{ID: "shinkansen_rt", Label: "Shinkansen Tokyo-Osaka (RT)", USD: 220, Category: Travel, Editable: true},
	{ID: "jrpass_7d", Label: "JR Pass (7 days)", USD: 330, Category: Travel, Editable: true},
	{ID: "flight_eu_jp_rt", Label: "Flight EU-JP (RT, economy)", USD: 900, Category: Travel, Editable: true},
	{ID: "gas_tank_50l", Label: "Gasoline (full tank ~50 L)", USD: 70, Category: Travel, Editable: true},

	// tech
	{ID: "macbook_air", Label: "Laptop (mid-tier)", USD: 1000, Category: Tech, Editable: true},
	{ID: "smartphone_mid", Label: "Smartphone (mid-tier)", USD: 700, Category: Tech, Editable: true},
	{ID: "monitor_27_4k", Label: "27\" 4K monitor", USD: 300, Category: Tech, Editable: true},
	{ID: "ext_ssd_2tb", Label: "External SSD (2 TB)", USD: 120, Category: Tech, Editable: true},
	{ID: "nc_headphones", Label: "Noise-cancelling headphones", USD: 250, Category: Tech, Editable: true},
	{ID: "hardware_wallet", Label: "Hardware wallet", USD: 79, Category: Tech, Editable: true},
	{ID: "domain_ssl_year", Label: "Domain + SSL (1 year)", USD: 15, Category: Tech, Editable: true},
	{ID: "vps_dev_month", Label: "VPS (dev box, 1 month)", USD: 25, Category: Tech, Editable: true},

	// utilities
	{ID: "electricity_month", Label: "Electricity (1 month)", USD: 75, Category: Utilities, Editable: true},
	{ID: "water_month", Label: "Water (1 month)", USD: 25, Category: Utilities, Editable: true},
	{ID: "heating_gas_month", Label: "Heating gas (1 month)", USD: 60, Category: Utilities, Editable: true},
	{ID: "fiber_internet_month", Label: "Fiber internet (1 month)", USD: 40, Category: Utilities, Editable: true},
	{ID: "mobile_plan_month", Label: "Mobile plan (1 month)", USD: 25, Category: Utilities, Editable: true},
	{ID: "cloud_storage_month", Label: "Cloud storage 2 TB (1 month)", USD: 10, Category: Utilities, Editable: true},

	// leisure
	{ID: "gym_month", Label: "Gym (1 month)", USD: 35, Category: Leisure, Editable: true},
	{ID: "gym_year", Label: "Gym (1 year)", USD: 300, Category: Leisure, Editable: true},
	{ID: "onsen_day", Label: "Onsen day pass", USD: 8, Category: Leisure, Editable: true},
	{ID: "karaoke_2h_room", Label: "Karaoke room (2 hours)", USD: 20, Category: Leisure, Editable: true},
	{ID: "cinema_ticket", Label: "Cinema ticket", USD: 12, Category: Leisure, Editable: true},
	{ID: "netflix_month", Label: "Netflix (1 month)", USD: 16, Category: Leisure, Editable: true},
	{ID: "museum_entry", Label: "Museum entry", USD: 10, Category: Leisure, Editable: true},
	{ID: "ski_pass_week", Label: "Ski pass (1 week, Hokkaido)", USD: 350, Category: Leisure, Editable: true},

	// vehicles
	{ID: "car_used_compact_5y", Label: "Used car (5-yr compact sedan)", USD: 15000, Category: Travel, Editable: true},
	{ID: "car_new_mid_sedan", Label: "New car (mid-tier sedan)", USD: 30000, Category: Travel, Editable: true},
	{ID: "car_tesla_model3_lr", Label: "Tesla Model 3 Long Range (new)", USD: 45000, Category: Travel, Editable: true},
	{ID: "car_land_cruiser_new", Label: "Toyota Land Cruiser (new)", USD: 65000, Category: Travel, Editable: true},
	{ID: "car_porsche_911_gt3rs", Label: "Porsche 911 GT3 RS (new, base)", USD: 250000, Category: Travel, Editable: true},
	{ID: "supercar_maintenance_year", Label: "Supercar maintenance (1 year)", USD: 10000, Category: Travel, Editable: true},

	// property, assuming a ~$400k median home
	{ID: "house_down_payment_20", Label: "20% down payment (median home)", USD: 80000, Category: Housing, Editable: true},
	{ID: "house_median_national", Label: "Median home price (national)", USD: 400000, Category: Housing, Editable: true},
	{ID: "apartment_prime_city_2br", Label: "Prime-city apartment (2BR)", USD: 1200000, Category: Housing, Editable: true},
}
