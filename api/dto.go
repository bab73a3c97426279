/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/arcadia/coin-engine/ledger"
	"github.com/arcadia/coin-engine/purchase"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BalanceDTO carries the verified balance.
type BalanceDTO struct {
	Balance int64 `json:"balance"`
}

// StatsDTO is the full ledger snapshot.
type StatsDTO struct {
	Balance        int64  `json:"balance"`
	LifetimeEarned int64  `json:"lifetime_earned"`
	LifetimeSpent  int64  `json:"lifetime_spent"`
	Version        int64  `json:"version"`
	LastValidated  string `json:"last_validated"`
	Status         string `json:"status"`
}

// CreditRequest credits the ledger from a named source.
type CreditRequest struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

// DebitRequest spends coins.
type DebitRequest struct {
	Amount int64 `json:"amount"`
}

// DebitResponseDTO reports whether the debit was applied.
type DebitResponseDTO struct {
	OK      bool  `json:"ok"`
	Balance int64 `json:"balance"`
}

// PurchaseRequest submits a purchase attempt for validation.
type PurchaseRequest struct {
	ProductID     string `json:"product_id"`
	Platform      string `json:"platform"`
	Receipt       string `json:"receipt"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// ProductDTO describes one catalog product.
type ProductDTO struct {
	ID          string `json:"id"`
	Coins       int64  `json:"coins,omitempty"`
	Entitlement string `json:"entitlement,omitempty"`
	PriceUSD    string `json:"price_usd"`
}

// FraudCheckRequest queries the scoring service.
type FraudCheckRequest struct {
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toStatsDTO(s ledger.Stats) StatsDTO {
	return StatsDTO{
		Balance:        s.Balance,
		LifetimeEarned: s.LifetimeEarned,
		LifetimeSpent:  s.LifetimeSpent,
		Version:        s.Version,
		LastValidated:  s.LastValidated.UTC().Format(time.RFC3339),
		Status:         string(s.Status),
	}
}

func toProductDTO(p purchase.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Coins:       p.Coins,
		Entitlement: p.Entitlement,
		PriceUSD:    p.PriceUSD.StringFixed(2),
	}
}
