package valuecontext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	items := DefaultCatalog().Items()
	require.NotEmpty(t, items)
	_, err := NewCatalog(items)
	require.NoError(t, err)
}

func TestNewCatalogRejects(t *testing.T) {
	_, err := NewCatalog([]CostItem{{ID: "a", Label: "A", USD: 1}, {ID: "a", Label: "B", USD: 2}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewCatalog([]CostItem{{ID: "a", Label: "A", USD: 0}})
	assert.Error(t, err)

	_, err = NewCatalog([]CostItem{{ID: "a", Label: "A", USD: 1, Category: "yachts"}})
	assert.Error(t, err)
}

func TestCatalogEdits(t *testing.T) {
	c, err := NewCatalog([]CostItem{
		{ID: "coffee", Label: "Coffee", USD: 3, Category: Food, Editable: true},
		{ID: "fixed", Label: "Fixed", USD: 10, Category: Tech},
	})
	require.NoError(t, err)

	require.NoError(t, c.Upsert(CostItem{ID: "coffee", Label: "Coffee", USD: 4, Category: "FOOD", Editable: true}))
	require.NoError(t, c.Upsert(CostItem{ID: "tea", Label: "Tea", USD: 2, Category: Food, Editable: true}))
	assert.Error(t, c.Upsert(CostItem{ID: "fixed", Label: "Fixed", USD: 11}))
	assert.Error(t, c.Upsert(CostItem{ID: "bad", Label: "Bad", USD: -1}))

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 4.0, items[0].USD)
	assert.Equal(t, Food, items[0].Category)

	assert.True(t, c.Remove("tea"))
	assert.False(t, c.Remove("tea"))
	assert.Len(t, c.InCategories(Food), 1)
	assert.Len(t, c.InCategories(), 2)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - id: coffee
    label: Coffee
    usd: 3.5
    category: food
    editable: true
`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 3.5, c.Items()[0].USD)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog().Items()), len(c.Items()))
}
