package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arcadia/coin-engine/purchase"
	"github.com/arcadia/coin-engine/remote"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// capturingServer records the last request it served.
type capturingServer struct {
	*httptest.Server

	lastPath string
	lastAuth string
	lastBody []byte
}

func newCapturingServer(t *testing.T, status int, responseBody string) *capturingServer {
	t.Helper()
	cs := &capturingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.lastPath = r.URL.Path
		cs.lastAuth = r.Header.Get("Authorization")
		cs.lastBody = body
		w.WriteHeader(status)
		io.WriteString(w, responseBody)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newTestClient(baseURL string) *remote.Client {
	return remote.NewClient(remote.Config{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		UserID:   "player-1",
		DeviceID: "00112233445566778899aabbccddeeff",
	})
}

// =============================================================================
// PURCHASE VALIDATION
// =============================================================================

func TestValidateReceipt_SendsIdentityAndCredential(t *testing.T) {
	// GIVEN: A validation server
	// WHEN: A receipt is validated
	// THEN: The request carries the bearer credential and the client's
	//       user/device identity, and the response decodes

	server := newCapturingServer(t, http.StatusOK, `{"success": true, "coins": 500, "transactionId": "txn-1"}`)
	client := newTestClient(server.URL)

	resp, err := client.ValidateReceipt(context.Background(), purchase.ValidationRequest{
		ProductID:     "coins_small",
		Platform:      "android",
		TransactionID: "txn-1",
		Receipt:       "receipt-payload-0001",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(500), resp.Coins)
	assert.Equal(t, "/v1/purchases/validate", server.lastPath)
	assert.Equal(t, "Bearer test-key", server.lastAuth)

	var sent purchase.ValidationRequest
	require.NoError(t, json.Unmarshal(server.lastBody, &sent))
	assert.Equal(t, "player-1", sent.UserID)
	assert.Equal(t, "00112233445566778899aabbccddeeff", sent.DeviceID)
	assert.Equal(t, "coins_small", sent.ProductID)
}

func TestValidateReceipt_ExplicitRejection_IsNotATransportError(t *testing.T) {
	// GIVEN: The server answers 200 with success=false
	// THEN: The rejection decodes as a response, not an error; the
	//       pipeline must treat it as authoritative

	server := newCapturingServer(t, http.StatusOK, `{"success": false, "error": "receipt already redeemed"}`)
	client := newTestClient(server.URL)

	resp, err := client.ValidateReceipt(context.Background(), purchase.ValidationRequest{ProductID: "coins_small"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "receipt already redeemed", resp.Error)
}

func TestValidateReceipt_ServerError_WrapsUnavailable(t *testing.T) {
	server := newCapturingServer(t, http.StatusInternalServerError, ``)
	client := newTestClient(server.URL)

	_, err := client.ValidateReceipt(context.Background(), purchase.ValidationRequest{ProductID: "coins_small"})
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
}

func TestValidateReceipt_Unreachable_WrapsUnavailable(t *testing.T) {
	server := newCapturingServer(t, http.StatusOK, `{}`)
	server.Close()
	client := newTestClient(server.URL)

	_, err := client.ValidateReceipt(context.Background(), purchase.ValidationRequest{ProductID: "coins_small"})
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestBearer_SigningSecret_MintsShortLivedJWT(t *testing.T) {
	// GIVEN: A client configured with a signing secret
	// WHEN: A request is sent
	// THEN: The Authorization header is a valid HS256 token carrying the
	//       user as subject and the device claim

	server := newCapturingServer(t, http.StatusOK, `{"success": true}`)
	client := remote.NewClient(remote.Config{
		BaseURL:       server.URL,
		SigningSecret: "super-secret",
		UserID:        "player-1",
		DeviceID:      "00112233445566778899aabbccddeeff",
	})

	_, err := client.ValidateReceipt(context.Background(), purchase.ValidationRequest{ProductID: "coins_small"})
	require.NoError(t, err)

	require.True(t, len(server.lastAuth) > len("Bearer "))
	raw := server.lastAuth[len("Bearer "):]

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte("super-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "player-1", claims["sub"])
	assert.Equal(t, "00112233445566778899aabbccddeeff", claims["device"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), exp.Time, 30*time.Second)
}

// =============================================================================
// FRAUD SCORING
// =============================================================================

func TestCheckFraud_VerdictPassthrough(t *testing.T) {
	server := newCapturingServer(t, http.StatusOK, `{"isSuspicious": true, "action": "review", "score": 0.71}`)
	client := newTestClient(server.URL)

	verdict, err := client.CheckFraud(context.Background(), "purchase", 500)
	require.NoError(t, err)

	assert.Equal(t, purchase.FraudReview, verdict.Action)
	assert.True(t, verdict.IsSuspicious)
	assert.InDelta(t, 0.71, verdict.Score, 0.001)
	assert.Equal(t, "/v1/fraud/check", server.lastPath)
}

func TestCheckFraud_Unreachable_FailsOpen(t *testing.T) {
	// GIVEN: The scoring service is down
	// WHEN: CheckFraud runs
	// THEN: The verdict is allow with a nil error. Do not harden this to
	//       fail-closed; gameplay availability must not depend on the
	//       scoring service.

	server := newCapturingServer(t, http.StatusOK, `{}`)
	server.Close()
	client := newTestClient(server.URL)

	verdict, err := client.CheckFraud(context.Background(), "purchase", 500)

	require.NoError(t, err)
	assert.Equal(t, purchase.FraudAllow, verdict.Action)
	assert.False(t, verdict.IsSuspicious)
}

func TestCheckFraud_ServerError_FailsOpen(t *testing.T) {
	server := newCapturingServer(t, http.StatusServiceUnavailable, ``)
	client := newTestClient(server.URL)

	verdict, err := client.CheckFraud(context.Background(), "purchase", 500)

	require.NoError(t, err)
	assert.Equal(t, purchase.FraudAllow, verdict.Action)
}

// =============================================================================
// SECURITY EVENT REPORTING
// =============================================================================

func TestReport_DeliversEvent(t *testing.T) {
	// GIVEN: A telemetry endpoint
	// WHEN: An event is reported and the reporter flushed
	// THEN: The event arrives with identity, a generated event id, and
	//       the metadata payload

	server := newCapturingServer(t, http.StatusOK, ``)
	reporter := remote.NewReporter(newTestClient(server.URL))

	reporter.Report(context.Background(), "tamper_detected", map[string]any{"stored_prefix": "deadbeef"})
	reporter.Flush()

	assert.Equal(t, "/v1/security/events", server.lastPath)

	var ev struct {
		EventID  string         `json:"eventId"`
		UserID   string         `json:"userId"`
		DeviceID string         `json:"deviceId"`
		Action   string         `json:"action"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(server.lastBody, &ev))
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "player-1", ev.UserID)
	assert.Equal(t, "tamper_detected", ev.Action)
	assert.Equal(t, "deadbeef", ev.Metadata["stored_prefix"])
}

func TestReport_DoesNotBlockCaller(t *testing.T) {
	// GIVEN: A telemetry endpoint that stalls until released
	// WHEN: Report is called
	// THEN: The call returns immediately; Flush waits for delivery

	release := make(chan struct{})
	served := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		close(served)
	}))
	t.Cleanup(server.Close)

	reporter := remote.NewReporter(newTestClient(server.URL))

	done := make(chan struct{})
	go func() {
		reporter.Report(context.Background(), "high_score", map[string]any{"amount": int64(9000)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on delivery")
	}

	close(release)
	reporter.Flush()
	<-served
}

func TestReport_SwallowsDeliveryFailures(t *testing.T) {
	// GIVEN: A failing telemetry endpoint
	// WHEN: Events are reported
	// THEN: Nothing panics and nothing surfaces to the caller

	server := newCapturingServer(t, http.StatusInternalServerError, ``)
	reporter := remote.NewReporter(newTestClient(server.URL))

	reporter.Report(context.Background(), "velocity_coins", nil)
	reporter.Report(context.Background(), "invariant_violation", map[string]any{"stored": int64(1)})
	reporter.Flush()
}

func TestReport_SurvivesCancelledCallerContext(t *testing.T) {
	// GIVEN: The caller's request context is already cancelled
	// WHEN: Report is called
	// THEN: Delivery still happens; the reporter detaches from the
	//       caller's context

	server := newCapturingServer(t, http.StatusOK, ``)
	reporter := remote.NewReporter(newTestClient(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reporter.Report(ctx, "fallback_validation", map[string]any{"receipt_length": 20})
	reporter.Flush()

	assert.Equal(t, "/v1/security/events", server.lastPath)
}
