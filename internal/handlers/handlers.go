package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/directions"
	"trip-route-planner/internal/geocoding"
	"trip-route-planner/internal/routing"
)

// Handler provides common handler utilities and dependencies
type Handler struct {
	DB        database.DataStore
	Optimizer routing.Optimizer
	Assembler *directions.Assembler
	Geocoder  geocoding.Geocoder
	// GeocodeRetries is the attempt count for each address lookup
	GeocodeRetries int
	// BatchConcurrency caps concurrent optimizations in a batch request
	BatchConcurrency int
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	h.writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// handleValidationError handles 400 errors
func (h *Handler) handleValidationError(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// handleGeocodingError handles 422 errors for geocoding failures
func (h *Handler) handleGeocodingError(w http.ResponseWriter, err error) {
	var gerr *geocoding.ErrGeocodingFailed
	if errors.As(err, &gerr) {
		h.writeError(w, http.StatusUnprocessableEntity, "GEOCODING_FAILED", err.Error(), map[string]string{
			"address": gerr.Address,
		})
		return
	}
	h.writeError(w, http.StatusUnprocessableEntity, "GEOCODING_FAILED", err.Error(), nil)
}

// handleRouteError maps optimizer and assembler errors onto responses
func (h *Handler) handleRouteError(w http.ResponseWriter, err error) {
	if errors.Is(err, directions.ErrInsufficientStops) {
		h.writeError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_STOPS", "At least two stops are required.", nil)
		return
	}
	h.handleInternalError(w, err)
}

// handleInternalError handles 500 errors
func (h *Handler) handleInternalError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] Internal error: %v", err)
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred. Please try again.", nil)
}

// HandleHealthCheck handles GET /api/v1/health
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	cacheStatus := "disabled"

	if h.DB != nil {
		cacheStatus = "connected"
		if err := h.DB.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			cacheStatus = "error"
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": "1.0.0",
		"cache":   cacheStatus,
	})
}
