package valuecontext

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fujiscan-api/pkg/confkit"
)

// Region selects a wage preset.
type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
	RegionJP Region = "JP"
)

// Regions lists presets in display order.
var Regions = []Region{RegionUS, RegionEU, RegionJP}

func ParseRegion(raw string) (Region, bool) {
	r := Region(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Regions {
		if known == r {
			return r, true
		}
	}
	return "", false
}

const (
	DefaultFxEURUSD = 1.08
	DefaultFxJPYUSD = 150.0

	// local-currency bases the EU and JP presets are converted from
	euDailyEUR        = 113.68
	euMonthlyEUR      = 2462.75
	euAnnualEUR       = 29573.0
	jpMonthlyJPY      = 329778.0
	jpDaysWorkedMonth = 17.6
)

type WageMeta struct {
	Source string `json:"source" yaml:"source"`
	Notes  string `json:"notes,omitempty" yaml:"notes"`
}

// WagePreset is a typical full-time wage in USD.
type WagePreset struct {
	Region     Region   `json:"region" yaml:"region"`
	DailyUSD   float64  `json:"dailyUsd" yaml:"daily_usd"`
	MonthlyUSD float64  `json:"monthlyUsd" yaml:"monthly_usd"`
	AnnualUSD  float64  `json:"annualUsd" yaml:"annual_usd"`
	Meta       WageMeta `json:"meta" yaml:"meta"`
}

// WagePresets is keyed by region.
type WagePresets map[Region]WagePreset

// DefaultWagePresets returns the built-in US, EU and JP medians.
func DefaultWagePresets() WagePresets {
	return WagePresets{
		RegionUS: {
			Region:     RegionUS,
			DailyUSD:   239.20,
			MonthlyUSD: 5182.67,
			AnnualUSD:  62192.00,
			Meta: WageMeta{
				Source: "BLS: Median usual weekly earnings, Q2 2025",
				Notes:  "Median weekly $1,196; monthly = annual/12.",
			},
		},
		RegionEU: {
			Region:     RegionEU,
			DailyUSD:   122.84,
			MonthlyUSD: 2661.57,
			AnnualUSD:  31938.84,
			Meta: WageMeta{
				Source: "Eurostat: net annual earnings (EU-27, 2024)",
				Notes:  fxNote("EUR", DefaultFxEURUSD),
			},
		},
		RegionJP: {
			Region:     RegionJP,
			DailyUSD:   124.92,
			MonthlyUSD: 2198.52,
			AnnualUSD:  26382.24,
			Meta: WageMeta{
				Source: "Japan Statistical Handbook 2024 (monthly cash earnings & days worked)",
				Notes:  fxNote("JPY", DefaultFxJPYUSD),
			},
		},
	}
}

type wagesFile struct {
	Presets map[string]WagePreset `yaml:"presets"`
}

// LoadWagePresets reads `presets: {US: {...}}` from path, overlaying the
// defaults. Every rate must be positive.
func LoadWagePresets(path string) (WagePresets, error) {
	file, err := confkit.LoadYAML[wagesFile](path)
	if err != nil {
		return nil, err
	}
	out := DefaultWagePresets()
	for key, p := range file.Presets {
		region, ok := ParseRegion(key)
		if !ok {
			return nil, fmt.Errorf("valuecontext: wages: unknown region %q", key)
		}
		if p.DailyUSD <= 0 || p.MonthlyUSD <= 0 || p.AnnualUSD <= 0 {
			return nil, fmt.Errorf("valuecontext: wages: %s rates must be positive", region)
		}
		p.Region = region
		out[region] = p
	}
	return out, nil
}

// RecalculateWithFX rebuilds the EU and JP presets from their local-currency
// bases at the given rates. Non-positive rates fall back to the defaults.
func RecalculateWithFX(presets WagePresets, fxEURUSD, fxJPYUSD float64) WagePresets {
	if fxEURUSD <= 0 || math.IsNaN(fxEURUSD) {
		fxEURUSD = DefaultFxEURUSD
	}
	if fxJPYUSD <= 0 || math.IsNaN(fxJPYUSD) {
		fxJPYUSD = DefaultFxJPYUSD
	}
	out := make(WagePresets, len(presets))
	for k, v := range presets {
		out[k] = v
	}

	eu := out[RegionEU]
	eu.Region = RegionEU
	eu.DailyUSD = euDailyEUR / fxEURUSD
	eu.MonthlyUSD = euMonthlyEUR / fxEURUSD
	eu.AnnualUSD = euAnnualEUR / fxEURUSD
	eu.Meta.Notes = fxNote("EUR", fxEURUSD)
	out[RegionEU] = eu

	jp := out[RegionJP]
	jp.Region = RegionJP
	jp.DailyUSD = (jpMonthlyJPY / jpDaysWorkedMonth) / fxJPYUSD
	jp.MonthlyUSD = jpMonthlyJPY / fxJPYUSD
	jp.AnnualUSD = (jpMonthlyJPY * 12) / fxJPYUSD
	jp.Meta.Notes = fxNote("JPY", fxJPYUSD)
	out[RegionJP] = jp

	return out
}

func fxNote(ccy string, rate float64) string {
	return fmt.Sprintf("Assumes fx %s→USD = %s; adjust in presets if needed.", ccy, strconv.FormatFloat(rate, 'f', -1, 64))
}

// Equivalents is how long it takes to earn an amount; the sign follows it.
type Equivalents struct {
	Days   float64 `json:"days"`
	Months float64 `json:"months"`
	Years  float64 `json:"years"`
}

func WageEquivalents(amount float64, wage WagePreset) Equivalents {
	abs := math.Abs(amount)
	sign := 1.0
	if amount < 0 {
		sign = -1
	}
	per := func(rate float64) float64 {
		if rate <= 0 {
			return 0
		}
		return sign * abs / rate
	}
	return Equivalents{
		Days:   per(wage.DailyUSD),
		Months: per(wage.MonthlyUSD),
		Years:  per(wage.AnnualUSD),
	}
}

// Unit is a display unit for Equivalents.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

// DisplayUnit picks years from half a year up, then months from half a
// month, else days.
func (e Equivalents) DisplayUnit() (Unit, float64) {
	switch {
	case math.Abs(e.Years) >= 0.5:
		return UnitYears, e.Years
	case math.Abs(e.Months) >= 0.5:
		return UnitMonths, e.Months
	default:
		return UnitDays, e.Days
	}
}

// String renders the display unit, e.g. "≈ 1.6 years".
func (e Equivalents) String() string {
	unit, v := e.DisplayUnit()
	places := int32(1)
	if math.Abs(v) >= 10 {
		places = 0
	}
	return "≈ " + decimalFixed(v, places) + " " + string(unit)
}

// WageLine summarizes amount across every region in display order, e.g.
// "≈ 4.2 days (US) • ≈ 8.1 days (EU) • ≈ 8.0 days (JP)".
func WageLine(amount float64, presets WagePresets) string {
	parts := make([]string, 0, len(Regions))
	for _, r := range Regions {
		p, ok := presets[r]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", WageEquivalents(amount, p), r))
	}
	return strings.Join(parts, " • ")
}
