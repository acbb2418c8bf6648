// internal/catalog/catalog_test.go
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMenuPrices(t *testing.T) {
	s := NewService()

	cases := map[string]float64{
		"idli-sambar":    40,
		"masala-dosa":    60,
		"plain-dosa":     50,
		"samosa":         15,
		"veg-puff":       20,
		"paneer-roll":    45,
		"veg-fried-rice": 80,
		"veg-biryani":    90,
		"tea":            15,
		"coffee":         20,
	}
	for id, want := range cases {
		price, ok := s.Price(id)
		require.True(t, ok, "missing item %s", id)
		assert.Equal(t, want, price, "price for %s", id)
	}
	t.Log("✅ Built-in menu priced as expected")
}

func TestValidateAndItemLookup(t *testing.T) {
	s := NewService()

	assert.True(t, s.Validate("tea"))
	assert.False(t, s.Validate("filter-kaapi-deluxe"))

	item, ok := s.Item("masala-dosa")
	require.True(t, ok)
	assert.Equal(t, "Masala Dosa", item.Name)
	assert.NotEmpty(t, item.Category)

	_, ok = s.Item("nope")
	assert.False(t, ok)
	t.Log("✅ Lookup and validation behaved")
}

func TestLoadFromFileKeepsDefaultsOnFailure(t *testing.T) {
	s := NewService()
	before := len(s.Sections())

	dir := t.TempDir()

	// Unreadable path
	require.NoError(t, s.LoadFromFile(filepath.Join(dir, "missing.json")))
	assert.Len(t, s.Sections(), before)
	assert.True(t, s.Validate("tea"))

	// Unparseable content
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{{{"), 0o644))
	require.NoError(t, s.LoadFromFile(bad))
	assert.True(t, s.Validate("tea"))

	// Valid JSON but invalid catalog: duplicate ids
	dupe := CatalogData{Sections: []Section{{
		Category: "Snacks",
		Items: []CatalogItem{
			{ID: "x", Name: "One", UnitPrice: 5, Available: true},
			{ID: "x", Name: "Two", UnitPrice: 6, Available: true},
		},
	}}}
	raw, err := json.Marshal(dupe)
	require.NoError(t, err)
	rejected := filepath.Join(dir, "dupe.json")
	require.NoError(t, os.WriteFile(rejected, raw, 0o644))
	require.NoError(t, s.LoadFromFile(rejected))
	assert.True(t, s.Validate("tea"))
	assert.False(t, s.Validate("x"))
	t.Log("✅ Catalog load failures fell back to defaults")
}

func TestLoadFromFileReplacesMenu(t *testing.T) {
	s := NewService()

	menu := CatalogData{Sections: []Section{{
		Category: "Specials",
		Items: []CatalogItem{
			{ID: "thali", Name: "Lunch Thali", UnitPrice: 120, Available: true},
			{ID: "off-menu", Name: "Retired Dish", UnitPrice: 70, Available: false},
		},
	}}}
	raw, err := json.Marshal(menu)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	require.NoError(t, s.LoadFromFile(path))

	price, ok := s.Price("thali")
	require.True(t, ok)
	assert.Equal(t, 120.0, price)

	// Unavailable items are listed in sections but not purchasable.
	assert.False(t, s.Validate("off-menu"))
	assert.False(t, s.Validate("tea"))

	item, ok := s.Item("thali")
	require.True(t, ok)
	assert.Equal(t, "Specials", item.Category)
	t.Log("✅ Catalog file replaced the built-in menu")
}
