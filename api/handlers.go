/*
handlers.go - HTTP API handlers for the rent administration engine

ENDPOINTS:
  Contracts:
    GET    /api/contracts                      List master data
    POST   /api/contracts                      Create/replace a contract
    GET    /api/contracts/{property}/ledger    Monthly history

  Ledger:
    POST   /api/runs                           Extend every ledger to a month
    POST   /api/contracts/{property}/ledger/{month}/base-price
                                               Manual base-price correction
  Monthly file:
    GET    /api/months/{month}                 Payment computation for one month

  Receipts:
    GET    /api/contracts/{property}/receipts/{month}        Tenant receipt
    GET    /api/contracts/{property}/settlements/{month}     Owner settlement

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (month already recorded)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/receipt"
	"github.com/darioabadie/inmo/store"
	"github.com/darioabadie/inmo/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Manager *ledger.Manager
	Log     *logrus.Logger
}

// NewHandler creates a new handler.
func NewHandler(st *sqlite.Store, manager *ledger.Manager, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Store: st, Manager: manager, Log: log}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns the master data.
// GET /api/contracts
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.Contracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(records))
	for i, rec := range records {
		dtos[i] = toContractDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveContract creates or replaces a master-data row.
// POST /api/contracts
func (h *Handler) SaveContract(w http.ResponseWriter, r *http.Request) {
	var req ContractDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := req.Record()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract data", err)
		return
	}
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract", err)
		return
	}

	if err := h.Store.SaveContract(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(rec))
}

// GetLedger returns a property's monthly history.
// GET /api/contracts/{property}/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	property := chi.URLParam(r, "property")

	entries, err := h.Store.Entries(r.Context(), property)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// TriggerRun extends every contract's ledger up to the requested month.
// POST /api/runs
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	until := contract.CurrentMonth()
	if req.Until != "" {
		var err error
		if until, err = contract.ParseMonth(req.Until); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hasta (use YYYY-MM)", err)
			return
		}
	}

	records, err := h.Store.Contracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	summary := h.Manager.Run(r.Context(), records, until)
	writeJSON(w, http.StatusOK, summary)
}

// AmendBasePrice records a manual base-price correction for one month.
// POST /api/contracts/{property}/ledger/{month}/base-price
func (h *Handler) AmendBasePrice(w http.ResponseWriter, r *http.Request) {
	property := chi.URLParam(r, "property")
	month, err := contract.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	var req AmendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	price := contract.ParseAmount(req.BasePrice)
	if !price.IsPositive() {
		writeError(w, http.StatusBadRequest, "precio_base must be a positive amount", nil)
		return
	}

	if err := h.Store.AmendBasePrice(r.Context(), property, month, price); err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, "No ledger entry for that month", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to amend base price", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"property": property,
		"month":    month.String(),
		"price":    price.String(),
	}).Info("base price amended")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MONTHLY FILE HANDLERS
// =============================================================================

// GetMonth computes the payment file for one reference month.
// GET /api/months/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	month, err := contract.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	records, err := h.Store.Contracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	entries, warnings := h.Manager.ComputeMonth(r.Context(), records, month)
	writeJSON(w, http.StatusOK, MonthResponse{
		Month:    month.String(),
		Entries:  toEntryDTOs(entries),
		Warnings: warnings,
	})
}

// =============================================================================
// RECEIPT HANDLERS
// =============================================================================

// GetReceipt renders the tenant receipt for one recorded month.
// GET /api/contracts/{property}/receipts/{month}
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	h.renderEntry(w, r, receipt.Render)
}

// GetSettlement renders the owner settlement note.
// GET /api/contracts/{property}/settlements/{month}
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	h.renderEntry(w, r, receipt.RenderOwner)
}

func (h *Handler) renderEntry(w http.ResponseWriter, r *http.Request, render func(ledger.Entry) string) {
	property := chi.URLParam(r, "property")
	month, err := contract.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	entries, err := h.Store.Entries(r.Context(), property)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read ledger", err)
		return
	}
	for _, e := range entries {
		if e.Month.Equal(month) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(render(e)))
			return
		}
	}
	writeError(w, http.StatusNotFound, "No ledger entry for that month", nil)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
