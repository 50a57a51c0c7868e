package types

import (
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/rates"
	"fujiscan-api/pkg/valuecontext"
)

type FundingRequest struct {
	Assets        string `form:"assets,optional"`
	Exchanges     string `form:"exchanges,optional"`
	Sort          string `form:"sort,optional"`
	NegativesOnly bool   `form:"negativesOnly,optional"`
	NextUnder1h   bool   `form:"nextUnder1h,optional"`
	Mode          string `form:"mode,optional"`

	// Set by the handler: whether the parameter was present at all.
	HasAssets    bool `json:"-"`
	HasExchanges bool `json:"-"`
}

// FundingRow is a ticker plus its display fields.
type FundingRow struct {
	funding.Ticker
	APRText string     `json:"aprText"`
	Tone    rates.Tone `json:"tone"`
	NextIn  string     `json:"nextIn,omitempty"`
}

type FundingResponse struct {
	Data []FundingRow `json:"data"`
	Meta funding.Meta `json:"meta"`
}

type SignalsRequest struct {
	Assets    string `form:"assets,optional"`
	Exchanges string `form:"exchanges,optional"`

	HasAssets    bool `json:"-"`
	HasExchanges bool `json:"-"`
}

type SignalsResponse struct {
	funding.Signals
	TopPositiveAPR string       `json:"topPositiveApr,omitempty"`
	TopNegativeAPR string       `json:"topNegativeApr,omitempty"`
	Meta           funding.Meta `json:"meta"`
}

type CostsResponse struct {
	Items      []valuecontext.CostItem `json:"items"`
	Categories []valuecontext.Category `json:"categories"`
}

type UpsertCostRequest struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	USD      float64 `json:"usd"`
	Category string  `json:"category,optional"`
}

type RemoveCostRequest struct {
	ID string `path:"id"`
}

type ValueContextRequest struct {
	Amount     float64 `form:"amount"`
	Categories string  `form:"categories,optional"`
	Filters    string  `form:"filters,optional"`
	Sort       string  `form:"sort,optional"`
	Limit      int     `form:"limit,default=5"`
}

type ContextItem struct {
	valuecontext.Comparison
	MultipleText string `json:"multipleText"`
	PriceText    string `json:"priceText"`
}

type ValueContextResponse struct {
	Amount     float64       `json:"amount"`
	AmountText string        `json:"amountText"`
	Items      []ContextItem `json:"items"`
	// Comparisons ranks the whole selected catalog by sort and filters.
	Comparisons []ContextItem `json:"comparisons"`
	Summary     string        `json:"summary"`
	WageLine    string        `json:"wageLine"`
}

type WagesRequest struct {
	Amount   float64 `form:"amount"`
	Region   string  `form:"region,optional"`
	FxEurUsd float64 `form:"fxEurUsd,optional"`
	FxJpyUsd float64 `form:"fxJpyUsd,optional"`
}

type WageEquivalent struct {
	Region      valuecontext.Region      `json:"region"`
	Preset      valuecontext.WagePreset  `json:"preset"`
	Equivalents valuecontext.Equivalents `json:"equivalents"`
	Unit        valuecontext.Unit        `json:"unit"`
	Value       float64                  `json:"value"`
	Text        string                   `json:"text"`
}

type WagesResponse struct {
	Amount float64          `json:"amount"`
	Items  []WageEquivalent `json:"items"`
	Line   string           `json:"line"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
