/*
Package remote implements the HTTP clients for the backend services:
purchase validation, fraud scoring, and security event reporting.

PURPOSE:
  Thin request/response proxies over authenticated HTTPS. Each call has
  a bounded timeout; how a failure propagates differs per service:
  - Validation: transport failure -> error (pipeline falls back)
  - Fraud: transport failure -> fail open (allow verdict)
  - Reporting: transport failure -> dropped, logged

AUTHENTICATION:
  When a signing secret is configured, a short-lived HS256 bearer token
  is minted per request (subject = user id, device claim = device id).
  Otherwise the deployment's static API key is attached. Both are opaque
  to the ledger core; the hosting application supplies them.

SEE ALSO:
  - validator.go, fraud.go, reporter.go: Per-service clients
  - ../purchase/types.go: Service contracts consumed by the pipeline
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrRemoteUnavailable wraps transport-level failures: network errors,
// timeouts, and non-200 responses.
var ErrRemoteUnavailable = errors.New("remote service unavailable")

// =============================================================================
// CLIENT
// =============================================================================

// Config carries the remote endpoints and credentials.
type Config struct {
	BaseURL string

	// APIKey is attached as the bearer credential when no signing
	// secret is configured.
	APIKey string

	// SigningSecret, when set, mints short-lived HS256 bearer tokens
	// instead of sending the static key.
	SigningSecret string

	UserID   string
	DeviceID string

	ValidateTimeout time.Duration
	FraudTimeout    time.Duration
	ReportTimeout   time.Duration
}

// Client is the shared authenticated HTTP client.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a client with default timeouts filled in.
func NewClient(cfg Config) *Client {
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = 5 * time.Second
	}
	if cfg.FraudTimeout <= 0 {
		cfg.FraudTimeout = 3 * time.Second
	}
	if cfg.ReportTimeout <= 0 {
		cfg.ReportTimeout = 2 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// bearer returns the credential for one request.
func (c *Client) bearer() (string, error) {
	if c.cfg.SigningSecret == "" {
		return c.cfg.APIKey, nil
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    c.cfg.UserID,
		"device": c.cfg.DeviceID,
		"iat":    now.Unix(),
		"exp":    now.Add(2 * time.Minute).Unix(),
	})
	return token.SignedString([]byte(c.cfg.SigningSecret))
}

// post sends a JSON body and decodes a JSON response into out (which
// may be nil when no response body is consumed).
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	credential, err := c.bearer()
	if err != nil {
		return fmt.Errorf("failed to mint bearer token: %w", err)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: bad response body: %v", ErrRemoteUnavailable, err)
		}
	}
	return nil
}
