/*
pipeline.go - Purchase validation orchestration

PURPOSE:
  Runs one purchase attempt through fraud scoring, remote receipt
  validation, ledger crediting, and the degraded fallback path.

FLOW:
  1. Fraud check (fail-open): a "block" verdict rejects the purchase
     with no ledger mutation. Transport failure allows.
  2. Remote validation:
     - Affirmative response with a positive coin grant: credit the
       ledger directly. Server-validated purchases are an independent
       trust path and bypass the gameplay/reward anti-cheat gates.
     - Explicit negative response: authoritative rejection, no mutation.
     - Transport failure only: fallback path.
  3. Fallback: a minimal local sanity check (non-empty receipt of
     plausible minimum length). Passing yields isValid with NO coin
     grant plus one fallback_validation event so the purchase can be
     reconciled server-side rather than trusted outright.

GRANT CLAMPING:
  A server grant exceeding the catalog amount for a known product is
  clamped to the catalog amount and reported as grant_mismatch.

SEE ALSO:
  - ../ledger/ledger.go: Credit with SourcePurchase
  - ../remote/validator.go: HTTP Validator implementation
*/
package purchase

import (
	"context"
	"log"

	"github.com/arcadia/coin-engine/ledger"
	"github.com/google/uuid"
)

// MinReceiptLength is the fallback path's minimum plausible receipt
// length. Anything shorter is rejected even when the validator is down.
const MinReceiptLength = 10

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline orchestrates purchase validation against the remote service
// with a degraded local fallback.
type Pipeline struct {
	ledger    *ledger.SecureLedger
	catalog   Catalog
	validator Validator
	fraud     FraudChecker
	reporter  ledger.Reporter
}

// NewPipeline creates a pipeline. fraud may be nil to skip scoring;
// reporter may be nil to drop events.
func NewPipeline(l *ledger.SecureLedger, catalog Catalog, validator Validator, fraud FraudChecker, reporter ledger.Reporter) *Pipeline {
	if reporter == nil {
		reporter = ledger.NopReporter{}
	}
	return &Pipeline{
		ledger:    l,
		catalog:   catalog,
		validator: validator,
		fraud:     fraud,
		reporter:  reporter,
	}
}

// Apply validates one purchase attempt and credits the ledger on an
// affirmative, server-validated response.
func (p *Pipeline) Apply(ctx context.Context, attempt Attempt) Result {
	if attempt.TransactionID == "" {
		attempt.TransactionID = uuid.NewString()
	}

	product, known := p.catalog.Lookup(attempt.ProductID)

	if p.fraud != nil {
		verdict, err := p.fraud.CheckFraud(ctx, "purchase", product.Coins)
		if err != nil {
			// Fail open: availability must not depend on the scoring
			// service being reachable.
			log.Printf("purchase: fraud check unavailable, allowing: %v", err)
		} else if verdict.Action == FraudBlock {
			return Result{IsValid: false, Error: "purchase blocked"}
		}
	}

	resp, err := p.validator.ValidateReceipt(ctx, ValidationRequest{
		ProductID:     attempt.ProductID,
		Platform:      attempt.Platform,
		TransactionID: attempt.TransactionID,
		Receipt:       attempt.Receipt,
	})
	if err != nil {
		return p.fallback(ctx, attempt)
	}

	if !resp.Success {
		// Explicit, authoritative rejection. No ledger mutation.
		errMsg := resp.Error
		if errMsg == "" {
			errMsg = "validation rejected"
		}
		return Result{IsValid: false, Error: errMsg}
	}

	coins := resp.Coins
	if known && product.Coins > 0 && coins > product.Coins {
		p.reporter.Report(ctx, ledger.EventGrantMismatch, map[string]any{
			"product_id":     attempt.ProductID,
			"granted":        coins,
			"catalog_amount": product.Coins,
		})
		coins = product.Coins
	}

	if coins > 0 {
		if _, err := p.ledger.Credit(ctx, coins, ledger.SourcePurchase); err != nil {
			log.Printf("purchase: failed to credit validated purchase: %v", err)
			return Result{IsValid: false, Error: "failed to apply purchase"}
		}
	}

	entitlement := resp.Entitlement
	if entitlement == "" && known {
		entitlement = product.Entitlement
	}

	return Result{IsValid: true, Coins: coins, Entitlement: entitlement}
}

// fallback is the degraded path for transport failures only. It accepts
// plausible receipts without granting coins and records an audit event.
func (p *Pipeline) fallback(ctx context.Context, attempt Attempt) Result {
	if len(attempt.Receipt) < MinReceiptLength {
		return Result{IsValid: false, Error: "invalid receipt"}
	}

	p.reporter.Report(ctx, ledger.EventFallbackValidation, map[string]any{
		"product_id":     attempt.ProductID,
		"transaction_id": attempt.TransactionID,
		"receipt_length": len(attempt.Receipt),
	})

	return Result{IsValid: true, Fallback: true}
}
