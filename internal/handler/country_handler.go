package handler

import (
	"errors"
	"net/http"

	"github.com/farzamh/warlords/internal/auth"
	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/service"
)

// CountryHandler handles country registration, profiles, and the shop.
type CountryHandler struct {
	countrySvc *service.CountryService
}

// NewCountryHandler creates a CountryHandler.
func NewCountryHandler(countrySvc *service.CountryService) *CountryHandler {
	return &CountryHandler{countrySvc: countrySvc}
}

// Register handles POST /api/v1/worlds/{id}/countries, the caller's
// first contact with a world. Safe to repeat; an existing country is
// returned as is.
func (h *CountryHandler) Register(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.countrySvc.Register(r.Context(), worldID, userID, req.Name)
	if err != nil {
		writeWorldError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// SpawnAI handles POST /api/v1/worlds/{id}/ai
func (h *CountryHandler) SpawnAI(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Personality string `json:"personality,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.countrySvc.SpawnAI(r.Context(), worldID, req.Name, req.Personality)
	if err != nil {
		writeWorldError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListCountries handles GET /api/v1/worlds/{id}/countries
func (h *CountryHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	countries, err := h.countrySvc.ListCountries(r.Context(), worldID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if countries == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// GetProfile handles GET /api/v1/worlds/{id}/countries/{countryId}
func (h *CountryHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	countryID, ok := pathID(w, r, "countryId")
	if !ok {
		return
	}
	c, err := h.countrySvc.GetProfile(r.Context(), worldID, countryID)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound, "country not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Reset handles POST /api/v1/worlds/{id}/countries/{countryId}/reset
func (h *CountryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	countryID, ok := pathID(w, r, "countryId")
	if !ok {
		return
	}
	c, err := h.countrySvc.Reset(r.Context(), worldID, countryID)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound, "country not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Purchase handles POST /api/v1/worlds/{id}/countries/{countryId}/purchase
func (h *CountryHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	countryID, ok := pathID(w, r, "countryId")
	if !ok {
		return
	}
	var req struct {
		Category string `json:"category"`
		Unit     string `json:"unit"`
		Count    int64  `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.countrySvc.PurchaseUnits(r.Context(), worldID, countryID, req.Category, req.Unit, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCountryNotFound):
			writeError(w, http.StatusNotFound, "country not found")
		case errors.Is(err, game.ErrInvalidUnit):
			writeError(w, http.StatusBadRequest, "unknown unit or invalid count")
		case errors.Is(err, game.ErrInsufficientFunds):
			writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// writeWorldError maps the world-gating errors shared by several endpoints.
func writeWorldError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrWorldNotFound):
		writeError(w, http.StatusNotFound, "world not found")
	case errors.Is(err, service.ErrWorldDisabled):
		writeError(w, http.StatusGone, "world is disabled")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
