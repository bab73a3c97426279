/*
validator.go - Purchase validation client

PURPOSE:
  Sends receipts to the remote validation endpoint. Implements
  purchase.Validator. A transport failure is returned as an error
  (wrapping ErrRemoteUnavailable) so the pipeline can take the fallback
  path; an explicit negative response comes back as a decoded body with
  Success = false and is authoritative.
*/
package remote

import (
	"context"

	"github.com/arcadia/coin-engine/purchase"
)

// ValidateReceipt posts the receipt to the validation endpoint. The
// client's user and device identity are filled in when the request
// leaves them empty.
func (c *Client) ValidateReceipt(ctx context.Context, req purchase.ValidationRequest) (*purchase.ValidationResponse, error) {
	if req.UserID == "" {
		req.UserID = c.cfg.UserID
	}
	if req.DeviceID == "" {
		req.DeviceID = c.cfg.DeviceID
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	var resp purchase.ValidationResponse
	if err := c.post(ctx, "/v1/purchases/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
