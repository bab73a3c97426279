/*
handlers.go - HTTP API handlers for the secure economy ledger

PURPOSE:
  Exposes the ledger and purchase pipeline to the hosting application.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Ledger:
    GET    /api/ledger/balance   Verified balance
    GET    /api/ledger/stats     Full snapshot
    POST   /api/ledger/credit    Credit from a named source
    POST   /api/ledger/debit     Spend coins
    POST   /api/ledger/reset     Reset economy state (device id kept)

  Purchases:
    GET    /api/purchases/products  Product catalog
    POST   /api/purchases           Validate and apply a purchase

  Fraud:
    POST   /api/fraud/check      Passthrough to the scoring service

  Account:
    DELETE /api/account          Full erasure (ledger + device id)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 502: Persisted write failed (mutation rolled back)
  - 500: Internal errors

  Policy rejections are NOT errors: a dropped reward credit returns 200
  with the unchanged balance, matching the ledger's conservative
  anti-cheat posture.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/arcadia/coin-engine/ledger"
	"github.com/arcadia/coin-engine/purchase"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *ledger.SecureLedger
	Pipeline *purchase.Pipeline
	Fraud    purchase.FraudChecker
	Catalog  purchase.Catalog
}

// NewHandler creates a new handler. fraud may be nil when no scoring
// service is configured.
func NewHandler(l *ledger.SecureLedger, pipeline *purchase.Pipeline, fraud purchase.FraudChecker, catalog purchase.Catalog) *Handler {
	return &Handler{
		Ledger:   l,
		Pipeline: pipeline,
		Fraud:    fraud,
		Catalog:  catalog,
	}
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetBalance returns the verified balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BalanceDTO{Balance: h.Ledger.VerifiedBalance(r.Context())})
}

// GetStats returns the full ledger snapshot.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStatsDTO(h.Ledger.Stats()))
}

// Credit applies a credit from a named source.
func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	var req CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	source, ok := parseSource(req.Source)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown credit source", nil)
		return
	}

	balance, err := h.Ledger.Credit(r.Context(), req.Amount, source)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to persist credit", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Balance: balance})
}

// Debit spends coins. An insufficient balance is a normal response, not
// an HTTP error.
func (h *Handler) Debit(w http.ResponseWriter, r *http.Request) {
	var req DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ok, err := h.Ledger.Debit(r.Context(), req.Amount)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to persist debit", err)
		return
	}
	writeJSON(w, http.StatusOK, DebitResponseDTO{
		OK:      ok,
		Balance: h.Ledger.VerifiedBalance(r.Context()),
	})
}

// Reset recreates a zero-state, preserving the device identifier.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.Reset(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to clear persisted state", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(h.Ledger.Stats()))
}

// DeleteAccount performs full erasure: ledger plus device identifier.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.FullReset(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to erase account state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PURCHASE HANDLERS
// =============================================================================

// ListProducts returns the catalog, sorted by id.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ProductDTO, 0, len(h.Catalog))
	for _, p := range h.Catalog {
		dtos = append(dtos, toProductDTO(p))
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].ID < dtos[j].ID })
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyPurchase validates a purchase attempt and applies any grant. The
// validation outcome (including rejections) is always a 200 with the
// result body; HTTP errors are reserved for malformed requests.
func (h *Handler) ApplyPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProductID == "" || req.Platform == "" {
		writeError(w, http.StatusBadRequest, "product_id and platform are required", nil)
		return
	}

	result := h.Pipeline.Apply(r.Context(), purchase.Attempt{
		ProductID:     req.ProductID,
		Platform:      req.Platform,
		Receipt:       req.Receipt,
		TransactionID: req.TransactionID,
	})
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// FRAUD HANDLERS
// =============================================================================

// CheckFraud proxies a scoring request. With no scoring service
// configured the verdict is allow.
func (h *Handler) CheckFraud(w http.ResponseWriter, r *http.Request) {
	var req FraudCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if h.Fraud == nil {
		writeJSON(w, http.StatusOK, purchase.FraudVerdict{Action: purchase.FraudAllow})
		return
	}

	verdict, err := h.Fraud.CheckFraud(r.Context(), req.Action, req.Amount)
	if err != nil {
		// Fail open, matching the client's own discipline.
		verdict = purchase.FraudVerdict{Action: purchase.FraudAllow}
	}
	writeJSON(w, http.StatusOK, verdict)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseSource(s string) (ledger.CreditSource, bool) {
	switch ledger.CreditSource(s) {
	case ledger.SourceGameplay, ledger.SourcePurchase, ledger.SourceReward, ledger.SourceAchievement:
		return ledger.CreditSource(s), true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		if errors.Is(err, ledger.ErrStorageWrite) {
			resp.Code = "storage_write_failed"
		}
	}
	writeJSON(w, status, resp)
}
