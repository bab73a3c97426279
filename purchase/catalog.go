/*
catalog.go - Closed set of purchasable products

PURPOSE:
  The catalog enumerates every product the game sells: coin packs and
  entitlements, each with the coin grant and a display price. Server
  responses are cross-checked against it; a grant exceeding the catalog
  amount is clamped and reported rather than trusted.

PRICES:
  Display prices use decimal.Decimal. Coins are integers throughout the
  ledger; money never is.

CONFIGURATION:
  Products can be loaded from JSON so the catalog ships as data:

    [{"id": "coins_small", "coins": 500, "price_usd": "0.99"}]
*/
package purchase

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT CATALOG
// =============================================================================

// Product is one purchasable item.
type Product struct {
	ID          string
	Coins       int64
	Entitlement string
	PriceUSD    decimal.Decimal
}

// Catalog maps product IDs to products.
type Catalog map[string]Product

// Lookup returns the product and whether it exists.
func (c Catalog) Lookup(id string) (Product, bool) {
	p, ok := c[id]
	return p, ok
}

// DefaultCatalog returns the built-in product set.
func DefaultCatalog() Catalog {
	return Catalog{
		"coins_small":  {ID: "coins_small", Coins: 500, PriceUSD: decimal.RequireFromString("0.99")},
		"coins_medium": {ID: "coins_medium", Coins: 1200, PriceUSD: decimal.RequireFromString("1.99")},
		"coins_large":  {ID: "coins_large", Coins: 3000, PriceUSD: decimal.RequireFromString("4.99")},
		"coins_vault":  {ID: "coins_vault", Coins: 8000, PriceUSD: decimal.RequireFromString("9.99")},
		"remove_ads":   {ID: "remove_ads", Entitlement: "no_ads", PriceUSD: decimal.RequireFromString("2.99")},
	}
}

// =============================================================================
// JSON CONFIGURATION
// =============================================================================

type productJSON struct {
	ID          string `json:"id"`
	Coins       int64  `json:"coins,omitempty"`
	Entitlement string `json:"entitlement,omitempty"`
	PriceUSD    string `json:"price_usd"`
}

// ParseCatalog builds a catalog from its JSON representation.
func ParseCatalog(data []byte) (Catalog, error) {
	var items []productJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := make(Catalog, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("catalog product missing id")
		}
		price, err := decimal.NewFromString(item.PriceUSD)
		if err != nil {
			return nil, fmt.Errorf("invalid price for product %s: %w", item.ID, err)
		}
		catalog[item.ID] = Product{
			ID:          item.ID,
			Coins:       item.Coins,
			Entitlement: item.Entitlement,
			PriceUSD:    price,
		}
	}
	return catalog, nil
}
