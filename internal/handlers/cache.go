package handlers

import (
	"log"
	"net/http"
)

// HandleClearDirectionsCache handles DELETE /api/v1/cache/directions
func (h *Handler) HandleClearDirectionsCache(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		h.writeJSON(w, http.StatusOK, map[string]int{"cleared": 0})
		return
	}

	cache := h.DB.DirectionsCache()
	count, err := cache.Count(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	if err := cache.Clear(r.Context()); err != nil {
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] DELETE /api/v1/cache/directions: cleared=%d", count)
	h.writeJSON(w, http.StatusOK, map[string]int{"cleared": count})
}
