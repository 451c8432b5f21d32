package menu

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodbot/internal/models"
)

// fakeCatalog serves a fixed item list in insertion order
type fakeCatalog struct {
	items []models.MenuItem
}

func (c *fakeCatalog) FindByExactName(_ context.Context, name string) (models.MenuItem, bool, error) {
	for _, item := range c.items {
		if item.Name == name {
			return item, true, nil
		}
	}
	return models.MenuItem{}, false, nil
}

func (c *fakeCatalog) ListAvailable(_ context.Context) ([]models.MenuItem, error) {
	var available []models.MenuItem
	for _, item := range c.items {
		if item.Available {
			available = append(available, item)
		}
	}
	return available, nil
}

func testCatalog() *fakeCatalog {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return &fakeCatalog{items: []models.MenuItem{
		{ID: 1, Name: "Margherita Pizza", Price: price("8.99"), Available: true},
		{ID: 2, Name: "Pepperoni Pizza", Price: price("10.99"), Available: true},
		{ID: 3, Name: "BBQ Chicken Pizza", Price: price("11.99"), Available: true},
		{ID: 4, Name: "Classic Burger", Price: price("7.99"), Available: true},
		{ID: 5, Name: "Cheese Burger", Price: price("8.99"), Available: true},
		{ID: 6, Name: "Hawaiian Pizza", Price: price("12.99"), Available: false},
		{ID: 7, Name: "Coca Cola", Price: price("1.99"), Available: true},
	}}
}

func TestResolve_ExactMatch(t *testing.T) {
	r := NewResolver(testCatalog())

	// every available canonical name resolves to itself
	for _, name := range []string{"Margherita Pizza", "Pepperoni Pizza", "BBQ Chicken Pizza", "Classic Burger", "Cheese Burger", "Coca Cola"} {
		item, ok, err := r.Resolve(context.Background(), name)
		require.NoError(t, err)
		require.True(t, ok, name)
		assert.Equal(t, name, item.Name)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	r := NewResolver(testCatalog())

	item, ok, err := r.Resolve(context.Background(), "pepperoni pizza")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pepperoni Pizza", item.Name)
}

func TestResolve_AllWordsBeatShorterSubstring(t *testing.T) {
	r := NewResolver(testCatalog())

	// "chicken pizza" is not a substring of any name, but both words appear
	// in "BBQ Chicken Pizza". The word tier must win over the substring tier
	// falling back to the first "Pizza" entry.
	item, ok, err := r.Resolve(context.Background(), "chicken pizza")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BBQ Chicken Pizza", item.Name)
}

func TestResolve_SubstringLastResort(t *testing.T) {
	r := NewResolver(testCatalog())

	item, ok, err := r.Resolve(context.Background(), "pepperoni")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pepperoni Pizza", item.Name)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("10.99")))
}

func TestResolve_SubstringTieBreakIsFirstCatalogEntry(t *testing.T) {
	r := NewResolver(testCatalog())

	item, ok, err := r.Resolve(context.Background(), "pizza")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Margherita Pizza", item.Name)
}

func TestResolve_SkipsUnavailableItems(t *testing.T) {
	r := NewResolver(testCatalog())

	// "Hawaiian Pizza" exists but is unavailable; "hawaiian" must not match it
	_, ok, err := r.Resolve(context.Background(), "hawaiian")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_ExactNameOfUnavailableItem(t *testing.T) {
	r := NewResolver(testCatalog())

	_, ok, err := r.Resolve(context.Background(), "Hawaiian Pizza")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver(testCatalog())

	_, ok, err := r.Resolve(context.Background(), "sushi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver(testCatalog())

	first, ok, err := r.Resolve(context.Background(), "burger")
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok, err := r.Resolve(context.Background(), "burger")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first.Name, again.Name)
	}
}

func TestMatchName(t *testing.T) {
	names := []string{"Margherita Pizza", "Pepperoni Pizza", "Garlic Bread"}

	tests := []struct {
		name      string
		candidate string
		wantIdx   int
		wantOK    bool
	}{
		{"exact", "Garlic Bread", 2, true},
		{"case insensitive", "garlic bread", 2, true},
		{"single word substring", "garlic", 2, true},
		{"candidate contains name", "Large Garlic Bread", 2, true},
		{"multi word", "margherita pizza please", 0, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"no match", "tiramisu", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := MatchName(tt.candidate, names)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}
