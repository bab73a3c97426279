/*
fraud.go - Fraud scoring client

PURPOSE:
  Queries the remote scoring endpoint before sensitive operations.
  Implements purchase.FraudChecker.

FAIL OPEN:
  On any transport failure this client returns an allow verdict with a
  warning. Availability of gameplay must not depend on a third-party
  scoring service being reachable. This choice is deliberate; do not
  harden it to fail-closed.
*/
package remote

import (
	"context"
	"log"

	"github.com/arcadia/coin-engine/purchase"
)

type fraudRequest struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	Action   string `json:"action"`
	Amount   int64  `json:"amount,omitempty"`
}

// CheckFraud posts to the scoring endpoint and returns the verdict.
// Transport failures fail open.
func (c *Client) CheckFraud(ctx context.Context, action string, amount int64) (purchase.FraudVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FraudTimeout)
	defer cancel()

	req := fraudRequest{
		UserID:   c.cfg.UserID,
		DeviceID: c.cfg.DeviceID,
		Action:   action,
		Amount:   amount,
	}

	var verdict purchase.FraudVerdict
	if err := c.post(ctx, "/v1/fraud/check", req, &verdict); err != nil {
		log.Printf("fraud: scoring service unreachable, failing open: %v", err)
		return purchase.FraudVerdict{Action: purchase.FraudAllow}, nil
	}
	return verdict, nil
}
