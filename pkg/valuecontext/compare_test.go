package valuecontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMultiple(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{333.333, "333×"},
		{12, "~12×"},
		{4.0, "~4.0×"},
		{2.5, "2.5×"},
		{1.5, "1.50×"},
		{0.95, "~0.95×"},
		{-3, "~-3.0×"},
		{-0.5, "-0.50×"},
		{3.1499, "~3.1×"},
		{3.1501, "3.2×"},
		{1.005, "~1.00×"},
		{1.015, "~1.01×"},
		{2.25, "2.3×"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatMultiple(tc.in), "multiple %v", tc.in)
	}
}

func TestIsNiceIntegerBoundary(t *testing.T) {
	assert.True(t, IsNiceInteger(5.1499))
	assert.False(t, IsNiceInteger(5.1501))
	assert.True(t, IsNiceInteger(-4.86))
	assert.False(t, IsNiceInteger(0.5))
}

func TestCompare(t *testing.T) {
	c := Compare(1000, CostItem{ID: "rent", Label: "Rent", USD: 1200})
	assert.InDelta(t, 0.8333, c.Multiple, 1e-4)
	assert.False(t, c.IsNiceInteger)
}

func TestComputeComparisons(t *testing.T) {
	items := []CostItem{
		{ID: "coffee", Label: "Coffee", USD: 3, Category: Food},
		{ID: "laptop", Label: "Laptop", USD: 1000, Category: Tech},
		{ID: "gym", Label: "Gym", USD: 35, Category: Leisure},
		{ID: "rent", Label: "Rent", USD: 1200, Category: Housing},
		{ID: "car", Label: "Car", USD: 30000, Category: Travel},
		{ID: "free", Label: "Free", USD: 0, Category: Food},
	}

	assert.Empty(t, ComputeComparisons(0, items, SortAmount, nil))

	got := ComputeComparisons(1000, items, SortAmount, nil)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"coffee", "gym", "laptop", "rent", "car"}, ids(got))

	got = ComputeComparisons(1000, items, SortPriority, nil)
	assert.Equal(t, []string{"coffee", "rent", "gym", "laptop", "car"}, ids(got))

	got = ComputeComparisons(1000, items, SortAmount, []Filter{FilterOneOff, FilterAnnual})
	assert.Equal(t, []string{"gym", "laptop"}, ids(got))
}

func ids(cs []Comparison) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Item.ID
	}
	return out
}

func TestContextPredicateIsWider(t *testing.T) {
	pred := ContextPredicate([]Filter{FilterOneOff})
	assert.True(t, pred(CostItem{Category: Travel}))
	assert.True(t, pred(CostItem{Category: Tech}))
	assert.False(t, pred(CostItem{Category: Food}))
	assert.True(t, ContextPredicate(nil)(CostItem{Category: Food}))
}

func TestParseSortMode(t *testing.T) {
	for raw, want := range map[string]SortMode{"": SortAmount, "amount": SortAmount, " Priority ": SortPriority, "edited": SortEdited} {
		got, ok := ParseSortMode(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseSortMode("random")
	assert.False(t, ok)
}

func TestParseFilters(t *testing.T) {
	assert.Equal(t, []Filter{FilterMonthly, FilterAnnual}, ParseFilters("monthly, bogus,annual"))
	assert.Nil(t, ParseFilters(""))
}

func TestOneLineSummary(t *testing.T) {
	items := []CostItem{
		{ID: "coffee", Label: "Coffee", USD: 3, Category: Food},
		{ID: "groceries", Label: "Groceries (1 month)", USD: 250, Category: Food},
		{ID: "rent", Label: "Rent", USD: 1000, Category: Housing},
		{ID: "car", Label: "Car", USD: 30000, Category: Travel},
	}
	got := OneLineSummary(1000, ComputeComparisons(1000, items, SortAmount, nil))
	assert.Equal(t, "$1,000 = 333× coffee · ~4.0× groceries (1 month) · ~1.00× rent", got)
	assert.Empty(t, OneLineSummary(0, nil))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0", FormatUSD(0))
	assert.Equal(t, "$999", FormatUSD(999.4))
	assert.Equal(t, "$1,200", FormatUSD(1200))
	assert.Equal(t, "$1,234,568", FormatUSD(1234567.5))
	assert.Equal(t, "-$45", FormatUSD(-45))
}
