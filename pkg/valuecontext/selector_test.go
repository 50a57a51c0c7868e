package valuecontext

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(prices ...float64) []CostItem {
	out := make([]CostItem, len(prices))
	for i, p := range prices {
		out[i] = CostItem{ID: fmt.Sprintf("item_%d", i), Label: fmt.Sprintf("Item %d", i), USD: p, Category: Tech}
	}
	return out
}

func prices(items []CostItem) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.USD
	}
	return out
}

func TestSelectSmartContextItemsSpread(t *testing.T) {
	catalog := priced(3, 75, 250, 1000, 14000, 1200000)

	got := SelectSmartContextItems(catalog, 1000, nil)
	// 1.2M exceeds the cap but nothing under it qualifies, so it stays
	assert.Equal(t, []float64{3, 250, 1000, 14000, 1200000}, prices(got))
}

func TestSelectSmartContextItemsPrefersCappedLargest(t *testing.T) {
	catalog := priced(3, 250, 600, 1000, 8000, 1200000)

	got := SelectSmartContextItems(catalog, 1000, nil)
	assert.Equal(t, []float64{3, 250, 600, 1000, 8000}, prices(got))
}

func TestSelectSmartContextItemsAmountAboveEverything(t *testing.T) {
	catalog := priced(10, 20, 30, 40, 50, 60, 70)

	got := SelectSmartContextItems(catalog, -70, nil)
	assert.Equal(t, []float64{70, 60, 50, 40, 30}, prices(got))

	got = SelectSmartContextItems(priced(5, 1), 100, nil)
	assert.Equal(t, []float64{5, 1}, prices(got))
}

func TestSelectSmartContextItemsNegativeAmountUsesMagnitude(t *testing.T) {
	catalog := priced(3, 75, 250, 1000, 14000, 1200000)
	assert.Equal(t,
		prices(SelectSmartContextItems(catalog, 1000, nil)),
		prices(SelectSmartContextItems(catalog, -1000, nil)))
}

func TestSelectSmartContextItemsFiltersAndEmpty(t *testing.T) {
	catalog := []CostItem{
		{ID: "a", Label: "A", USD: 0},
		{ID: "b", Label: "B", USD: -5},
		{ID: "c", Label: "C", USD: 10, Category: Food},
		{ID: "d", Label: "D", USD: 20, Category: Tech},
	}
	got := SelectSmartContextItems(catalog, 15, func(c CostItem) bool { return c.Category == Food })
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	assert.Empty(t, SelectSmartContextItems(nil, 100, nil))
	assert.NotNil(t, SelectSmartContextItems(nil, 100, nil))
}

func TestSelectSmartContextItemsBoundedAndUnique(t *testing.T) {
	items := DefaultCatalog().Items()
	for _, amount := range []float64{0.5, 1, 12, 99, 1000, 5432, 75000, 999999, 5e6} {
		got := SelectSmartContextItems(items, amount, nil)
		require.LessOrEqual(t, len(got), 5, "amount %v", amount)

		seen := map[string]bool{}
		for i, it := range got {
			assert.False(t, seen[it.ID], "duplicate %s at %v", it.ID, amount)
			seen[it.ID] = true
			if i > 0 && amount < 1200000 {
				assert.LessOrEqual(t, got[i-1].USD, it.USD)
			}
		}
	}
}

func TestSelectSmartContextItemsTieBreaksOnLabel(t *testing.T) {
	catalog := []CostItem{
		{ID: "z", Label: "Zebra", USD: 10},
		{ID: "a", Label: "Apple", USD: 10},
		{ID: "big", Label: "Big", USD: 1000},
	}
	got := SelectSmartContextItems(catalog, 500, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "z", "big"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
