package handler

import (
	"errors"
	"net/http"

	"github.com/farzamh/warlords/internal/auth"
	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/service"
)

// LoanHandler handles the loan ledger endpoints.
type LoanHandler struct {
	loanSvc *service.LoanService
}

// NewLoanHandler creates a LoanHandler.
func NewLoanHandler(loanSvc *service.LoanService) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc}
}

// Issue handles POST /api/v1/worlds/{id}/loans. An omitted or zero
// amount requests the default loan.
func (h *LoanHandler) Issue(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Amount int64 `json:"amount,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loan, err := h.loanSvc.IssueLoan(r.Context(), worldID, userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCooldownActive):
			writeError(w, http.StatusTooManyRequests, "loan cooldown active")
		case errors.Is(err, service.ErrCountryNotFound):
			writeError(w, http.StatusNotFound, "country not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// Repay handles POST /api/v1/worlds/{id}/loans/{loanId}/repay
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	remaining, err := h.loanSvc.Repay(r.Context(), worldID, loanID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoanNotFound):
			writeError(w, http.StatusNotFound, "loan not found")
		case errors.Is(err, service.ErrOverRepayment):
			writeError(w, http.StatusBadRequest, "amount exceeds remaining balance")
		case errors.Is(err, service.ErrCountryNotFound):
			writeError(w, http.StatusNotFound, "country not found")
		case errors.Is(err, game.ErrInsufficientFunds):
			writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"remaining": remaining})
}

// History handles GET /api/v1/worlds/{id}/loans
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	loans, err := h.loanSvc.History(r.Context(), worldID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if loans == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, loans)
}
