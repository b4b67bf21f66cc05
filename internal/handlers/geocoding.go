package handlers

import (
	"log"
	"net/http"
	"strconv"

	"trip-route-planner/internal/geocoding"
)

const (
	minAddressQueryLen = 4
	maxAddressResults  = 10
)

// HandleAddressSearch handles GET /api/v1/address-search?q=...&limit=...
// Short queries and lookup failures return an empty list so the stop form stays usable.
func (h *Handler) HandleAddressSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAddressResults {
			h.handleValidationError(w, "limit must be between 1 and 10")
			return
		}
		limit = n
	}

	if len(query) < minAddressQueryLen || h.Geocoder == nil {
		h.writeJSON(w, http.StatusOK, []geocoding.GeocodingResult{})
		return
	}

	results, err := h.Geocoder.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to search addresses: query=%s err=%v", query, err)
		h.writeJSON(w, http.StatusOK, []geocoding.GeocodingResult{})
		return
	}

	log.Printf("[HTTP] GET /api/v1/address-search: query=%s results_count=%d", query, len(results))
	h.writeJSON(w, http.StatusOK, results)
}
