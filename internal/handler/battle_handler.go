package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/farzamh/warlords/internal/auth"
	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/service"
)

// BattleHandler handles attack declarations and battle history.
type BattleHandler struct {
	battleSvc *service.BattleService
}

// NewBattleHandler creates a BattleHandler.
func NewBattleHandler(battleSvc *service.BattleService) *BattleHandler {
	return &BattleHandler{battleSvc: battleSvc}
}

// Attack handles POST /api/v1/worlds/{id}/attacks. The attacker is the
// authenticated caller; an empty commitment sends the default strike
// force, which the service derives from the attacker's inventory.
func (h *BattleHandler) Attack(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	attackerID := auth.UserIDFromContext(r.Context())

	var req struct {
		DefenderID int64           `json:"defender_id"`
		Units      game.Commitment `json:"units,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DefenderID == 0 {
		writeError(w, http.StatusBadRequest, "defender_id is required")
		return
	}

	rec, err := h.battleSvc.RequestAttack(r.Context(), worldID, attackerID, req.DefenderID, req.Units)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfAttack):
			writeError(w, http.StatusBadRequest, "cannot attack yourself")
		case errors.Is(err, service.ErrCountryNotFound):
			writeError(w, http.StatusNotFound, "country not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// History handles GET /api/v1/worlds/{id}/battles?limit=N
func (h *BattleHandler) History(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.battleSvc.History(r.Context(), worldID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, records)
}
