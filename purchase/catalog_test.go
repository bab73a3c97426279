package purchase_test

import (
	"testing"

	"github.com/arcadia/coin-engine/purchase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	data := []byte(`[
		{"id": "coins_small", "coins": 500, "price_usd": "0.99"},
		{"id": "remove_ads", "entitlement": "no_ads", "price_usd": "2.99"}
	]`)

	catalog, err := purchase.ParseCatalog(data)
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	small, ok := catalog.Lookup("coins_small")
	require.True(t, ok)
	assert.Equal(t, int64(500), small.Coins)
	assert.Equal(t, "0.99", small.PriceUSD.StringFixed(2))

	ads, ok := catalog.Lookup("remove_ads")
	require.True(t, ok)
	assert.Equal(t, "no_ads", ads.Entitlement)
	assert.Zero(t, ads.Coins)
}

func TestParseCatalog_RejectsMissingID(t *testing.T) {
	_, err := purchase.ParseCatalog([]byte(`[{"coins": 500, "price_usd": "0.99"}]`))
	assert.Error(t, err)
}

func TestParseCatalog_RejectsBadPrice(t *testing.T) {
	_, err := purchase.ParseCatalog([]byte(`[{"id": "coins_small", "price_usd": "free"}]`))
	assert.Error(t, err)
}

func TestDefaultCatalog_LookupMiss(t *testing.T) {
	_, ok := purchase.DefaultCatalog().Lookup("coins_nonexistent")
	assert.False(t, ok)
}
