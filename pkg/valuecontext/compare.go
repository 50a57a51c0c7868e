package valuecontext

import (
	"math"
	"sort"
	"strings"
)

// niceBand is how close a multiple must be to an integer to be badged.
const niceBand = 0.15

// Comparison expresses an amount as a multiple of one item's price.
type Comparison struct {
	Item          CostItem `json:"item"`
	Multiple      float64  `json:"multiple"`
	IsNiceInteger bool     `json:"isNiceInteger"`
}

// Compare divides amount by the item's price.
func Compare(amount float64, item CostItem) Comparison {
	m := amount / item.USD
	return Comparison{Item: item, Multiple: m, IsNiceInteger: IsNiceInteger(m)}
}

// IsNiceInteger reports whether |m| is within 0.15 of a whole number.
func IsNiceInteger(m float64) bool {
	abs := math.Abs(m)
	return math.Abs(abs-math.Round(abs)) < niceBand
}

// Filter narrows a catalog to a spending horizon.
type Filter string

const (
	FilterOneOff  Filter = "oneOff"
	FilterMonthly Filter = "monthly"
	FilterAnnual  Filter = "annual"
)

// ParseFilters reads a comma separated list, dropping unknown entries.
func ParseFilters(raw string) []Filter {
	var out []Filter
	for _, part := range strings.Split(raw, ",") {
		switch f := Filter(strings.TrimSpace(part)); f {
		case FilterOneOff, FilterMonthly, FilterAnnual:
			out = append(out, f)
		}
	}
	return out
}

// comparisonCategories is the narrow mapping used for full comparison lists.
var comparisonCategories = map[Filter][]Category{
	FilterOneOff:  {Tech},
	FilterMonthly: {Housing, Food, Utilities},
	FilterAnnual:  {Leisure},
}

// contextCategories is the wider mapping used when picking context anchors.
var contextCategories = map[Filter][]Category{
	FilterOneOff:  {Tech, Travel},
	FilterMonthly: {Housing, Food, Utilities},
	FilterAnnual:  {Leisure, Housing},
}

func matches(table map[Filter][]Category, filters []Filter, item CostItem) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		for _, c := range table[f] {
			if item.Category == c {
				return true
			}
		}
	}
	return false
}

// ContextPredicate builds the predicate for SelectSmartContextItems from
// filters; no filters keeps everything.
func ContextPredicate(filters []Filter) func(CostItem) bool {
	return func(item CostItem) bool { return matches(contextCategories, filters, item) }
}

// SortMode orders a comparison list.
type SortMode string

const (
	SortAmount   SortMode = "amount"
	SortPriority SortMode = "priority"
	SortEdited   SortMode = "edited"
)

// ParseSortMode accepts amount, priority or edited; empty means amount.
func ParseSortMode(raw string) (SortMode, bool) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return SortAmount, true
	case SortAmount, SortPriority, SortEdited:
		return m, true
	default:
		return "", false
	}
}

func isEssential(c Category) bool {
	return c == Housing || c == Food || c == Utilities
}

// ComputeComparisons compares amount against every positive item passing
// filters. A zero amount yields nothing. Ordering is by |multiple| descending;
// SortPriority puts essentials first. SortEdited has no edit history to work
// from and orders like SortAmount.
func ComputeComparisons(amount float64, items []CostItem, mode SortMode, filters []Filter) []Comparison {
	if amount == 0 {
		return []Comparison{}
	}
	out := make([]Comparison, 0, len(items))
	for _, it := range items {
		if it.USD <= 0 || !matches(comparisonCategories, filters, it) {
			continue
		}
		out = append(out, Compare(amount, it))
	}

	byMagnitude := func(i, j int) bool { return math.Abs(out[i].Multiple) > math.Abs(out[j].Multiple) }
	switch mode {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			ei, ej := isEssential(out[i].Item.Category), isEssential(out[j].Item.Category)
			if ei != ej {
				return ei
			}
			return byMagnitude(i, j)
		})
	default:
		sort.SliceStable(out, byMagnitude)
	}
	return out
}

// OneLineSummary renders the first three comparisons, e.g.
// "$1,000 = ~333× coffee · ~4.0× groceries (1 month)".
func OneLineSummary(amount float64, comparisons []Comparison) string {
	if amount == 0 || len(comparisons) == 0 {
		return ""
	}
	n := min(3, len(comparisons))
	parts := make([]string, 0, n)
	for _, c := range comparisons[:n] {
		parts = append(parts, FormatMultiple(c.Multiple)+" "+strings.ToLower(c.Item.Label))
	}
	return formatAmount(amount) + " = " + strings.Join(parts, " · ")
}
