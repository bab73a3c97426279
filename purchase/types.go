/*
Package purchase orchestrates in-app purchase validation.

PURPOSE:
  Reconciles purchase receipts against the remote validation service and
  credits the ledger on affirmative responses. When the service is
  unreachable it degrades to a minimal local sanity check so a paying
  user is not blocked by a transient outage, while leaving an audit
  trail for later server-side reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Attempt: One purchase attempt (ephemeral, never persisted)
  - Result: Outcome of validation
  - Validator / FraudChecker: Remote service contracts consumed here

SEE ALSO:
  - pipeline.go: Orchestration and fallback path
  - catalog.go: Closed product set with coin grants
  - ../remote: HTTP implementations of the service contracts
*/
package purchase

import "context"

// =============================================================================
// PURCHASE ATTEMPT / RESULT
// =============================================================================

// Attempt is one purchase attempt. Ephemeral: not persisted beyond the
// call.
type Attempt struct {
	ProductID     string
	Platform      string
	Receipt       string
	TransactionID string
}

// Result is the outcome of validating a purchase.
type Result struct {
	IsValid     bool   `json:"isValid"`
	Coins       int64  `json:"coins,omitempty"`
	Entitlement string `json:"entitlement,omitempty"`
	Error       string `json:"error,omitempty"`

	// Fallback marks a degraded, non-authoritative acceptance recorded
	// for later server-side reconciliation. No coins are granted.
	Fallback bool `json:"fallback,omitempty"`
}

// =============================================================================
// REMOTE SERVICE CONTRACTS
// =============================================================================

// ValidationRequest is the remote purchase-validation request body.
type ValidationRequest struct {
	UserID        string `json:"userId"`
	DeviceID      string `json:"deviceId"`
	ProductID     string `json:"productId"`
	Platform      string `json:"platform"`
	TransactionID string `json:"transactionId"`
	Receipt       string `json:"receipt"`
}

// ValidationResponse is the remote purchase-validation response body.
type ValidationResponse struct {
	Success       bool   `json:"success"`
	Coins         int64  `json:"coins,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Entitlement   string `json:"entitlement,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Validator validates a receipt against the remote service. A transport
// failure (as opposed to an explicit rejection) is returned as an error
// and triggers the fallback path.
type Validator interface {
	ValidateReceipt(ctx context.Context, req ValidationRequest) (*ValidationResponse, error)
}

// FraudVerdict is the remote scoring service's answer.
type FraudVerdict struct {
	IsSuspicious bool    `json:"isSuspicious"`
	IsCritical   bool    `json:"isCritical"`
	Action       string  `json:"action"` // "allow" | "review" | "block"
	Score        float64 `json:"score,omitempty"`
}

// FraudChecker queries the remote scoring service. Implementations fail
// open: transport failures yield an allow verdict, never an error that
// blocks gameplay.
type FraudChecker interface {
	CheckFraud(ctx context.Context, action string, amount int64) (FraudVerdict, error)
}

// Fraud verdict actions.
const (
	FraudAllow  = "allow"
	FraudReview = "review"
	FraudBlock  = "block"
)
