package handler

import (
	"errors"
	"net/http"

	"github.com/farzamh/warlords/internal/auth"
	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/service"
)

// WorldHandler handles world lifecycle endpoints.
type WorldHandler struct {
	worldSvc *service.WorldService
	aiSvc    *service.AIService
}

// NewWorldHandler creates a WorldHandler.
func NewWorldHandler(worldSvc *service.WorldService, aiSvc *service.AIService) *WorldHandler {
	return &WorldHandler{worldSvc: worldSvc, aiSvc: aiSvc}
}

// CreateWorld handles POST /api/v1/worlds
func (h *WorldHandler) CreateWorld(w http.ResponseWriter, r *http.Request) {
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

	world, err := h.worldSvc.Create(r.Context(), req.Name, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, world)
}

// ListWorlds handles GET /api/v1/worlds. With ?mine=true it returns the
// caller's worlds regardless of status; otherwise all active worlds.
func (h *WorldHandler) ListWorlds(w http.ResponseWriter, r *http.Request) {
	var worlds []model.World
	var err error
	if r.URL.Query().Get("mine") == "true" {
		worlds, err = h.worldSvc.ListByOwner(r.Context(), auth.UserIDFromContext(r.Context()))
	} else {
		worlds, err = h.worldSvc.ListActive(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if worlds == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, worlds)
}

// GetWorld handles GET /api/v1/worlds/{id}
func (h *WorldHandler) GetWorld(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	world, err := h.worldSvc.Get(r.Context(), worldID)
	if err != nil {
		if errors.Is(err, service.ErrWorldNotFound) {
			writeError(w, http.StatusNotFound, "world not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, world)
}

// DisableWorld handles DELETE /api/v1/worlds/{id}
func (h *WorldHandler) DisableWorld(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.worldSvc.Disable(r.Context(), worldID); err != nil {
		if errors.Is(err, service.ErrWorldNotFound) {
			writeError(w, http.StatusNotFound, "world not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

// TickWorld handles POST /api/v1/worlds/{id}/tick. It runs one AI round
// immediately instead of waiting for the scheduler.
func (h *WorldHandler) TickWorld(w http.ResponseWriter, r *http.Request) {
	worldID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.aiSvc.TickWorld(r.Context(), worldID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ticked"})
}
