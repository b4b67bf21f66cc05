package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"trip-route-planner/internal/geocoding"
	"trip-route-planner/internal/models"
	"trip-route-planner/internal/routing"
)

const (
	maxStopsPerRequest   = 100
	maxTripsPerBatch     = 50
	defaultBatchParallel = 4
)

// OptimizeRequest represents the request for stop reordering
type OptimizeRequest struct {
	Stops      []models.Stop `json:"stops"`
	FixedStart *models.Stop  `json:"fixed_start,omitempty"`
	Mode       string        `json:"mode"`
}

// BatchOptimizeRequest holds several independent optimizations, e.g. one per trip day
type BatchOptimizeRequest struct {
	Trips []OptimizeRequest `json:"trips"`
}

// BatchOptimizeResponse returns results in request order
type BatchOptimizeResponse struct {
	Results []*models.OptimizedRoute `json:"results"`
}

// NavigationRequest represents the request for turn-by-turn navigation
type NavigationRequest struct {
	Stops []models.Stop `json:"stops"`
	Mode  string        `json:"mode"`
	// Optimize reorders stops after the first before building the route
	Optimize bool `json:"optimize"`
}

// HandleOptimizeRoute handles POST /api/v1/routes/optimize
func (h *Handler) HandleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[HTTP] POST /api/v1/routes/optimize: invalid_json err=%v", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}

	optReq, msg := h.validateOptimizeRequest(&req)
	if msg != "" {
		log.Printf("[HTTP] POST /api/v1/routes/optimize: validation_failed reason=%s", msg)
		h.handleValidationError(w, msg)
		return
	}

	if err := h.resolveOptimizeRequest(r.Context(), optReq); err != nil {
		h.handleGeocodingError(w, err)
		return
	}

	log.Printf("[HTTP] POST /api/v1/routes/optimize: stops=%d fixed_start=%v mode=%s",
		len(optReq.Stops), optReq.FixedStart != nil, optReq.Mode)

	result, err := h.Optimizer.Optimize(r.Context(), optReq)
	if err != nil {
		h.handleRouteError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleBatchOptimize handles POST /api/v1/routes/optimize/batch
func (h *Handler) HandleBatchOptimize(w http.ResponseWriter, r *http.Request) {
	var req BatchOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[HTTP] POST /api/v1/routes/optimize/batch: invalid_json err=%v", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}

	if len(req.Trips) == 0 {
		h.handleValidationError(w, "At least one trip is required")
		return
	}
	if len(req.Trips) > maxTripsPerBatch {
		h.handleValidationError(w, fmt.Sprintf("At most %d trips are allowed per batch", maxTripsPerBatch))
		return
	}

	optReqs := make([]*routing.OptimizeRequest, len(req.Trips))
	for i := range req.Trips {
		optReq, msg := h.validateOptimizeRequest(&req.Trips[i])
		if msg != "" {
			h.handleValidationError(w, fmt.Sprintf("trip %d: %s", i, msg))
			return
		}
		optReqs[i] = optReq
	}

	// Geocoding is rate limited upstream, so it runs sequentially
	for _, optReq := range optReqs {
		if err := h.resolveOptimizeRequest(r.Context(), optReq); err != nil {
			h.handleGeocodingError(w, err)
			return
		}
	}

	limit := h.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchParallel
	}

	results := make([]*models.OptimizedRoute, len(optReqs))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(limit)
	for i, optReq := range optReqs {
		i, optReq := i, optReq // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			result, err := h.Optimizer.Optimize(ctx, optReq)
			if err != nil {
				return fmt.Errorf("failed to optimize trip %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.handleRouteError(w, err)
		return
	}

	log.Printf("[HTTP] POST /api/v1/routes/optimize/batch: trips=%d", len(results))
	h.writeJSON(w, http.StatusOK, BatchOptimizeResponse{Results: results})
}

// HandleNavigation handles POST /api/v1/routes/navigation
func (h *Handler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	route, _, ok := h.buildNavigation(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, route)
}

// buildNavigation decodes a NavigationRequest and assembles the route.
// On failure the error response has already been written.
func (h *Handler) buildNavigation(w http.ResponseWriter, r *http.Request) (*models.NavigationRoute, []models.Stop, bool) {
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[HTTP] POST %s: invalid_json err=%v", r.URL.Path, err)
		h.handleValidationError(w, "Invalid request body")
		return nil, nil, false
	}

	mode, ok := models.ParseTravelMode(req.Mode)
	if !ok {
		h.handleValidationError(w, fmt.Sprintf("Unsupported travel mode: %s", req.Mode))
		return nil, nil, false
	}

	stops, msg := normalizeStops(req.Stops)
	if msg != "" {
		h.handleValidationError(w, msg)
		return nil, nil, false
	}

	stops, err := geocoding.ResolveStops(r.Context(), h.Geocoder, stops, h.geocodeRetries())
	if err != nil {
		h.handleGeocodingError(w, err)
		return nil, nil, false
	}

	if req.Optimize && len(stops) > 2 {
		optimized, err := h.Optimizer.Optimize(r.Context(), &routing.OptimizeRequest{
			Stops:      stops[1:],
			FixedStart: &stops[0],
			Mode:       mode,
		})
		if err != nil {
			h.handleRouteError(w, err)
			return nil, nil, false
		}
		stops = optimized.OrderedStops
	}

	log.Printf("[HTTP] POST %s: stops=%d mode=%s optimize=%v", r.URL.Path, len(stops), mode, req.Optimize)

	route, err := h.Assembler.Assemble(r.Context(), stops, mode)
	if err != nil {
		h.handleRouteError(w, err)
		return nil, nil, false
	}

	return route, stops, true
}

func (h *Handler) validateOptimizeRequest(req *OptimizeRequest) (*routing.OptimizeRequest, string) {
	mode, ok := models.ParseTravelMode(req.Mode)
	if !ok {
		return nil, fmt.Sprintf("Unsupported travel mode: %s", req.Mode)
	}

	stops, msg := normalizeStops(req.Stops)
	if msg != "" {
		return nil, msg
	}

	optReq := &routing.OptimizeRequest{Stops: stops, Mode: mode}
	if req.FixedStart != nil {
		start := *req.FixedStart
		if start.ID == "" {
			start.ID = uuid.NewString()
		}
		if msg := validateStop(start); msg != "" {
			return nil, "fixed_start: " + msg
		}
		optReq.FixedStart = &start
	}

	return optReq, ""
}

func (h *Handler) resolveOptimizeRequest(ctx context.Context, req *routing.OptimizeRequest) error {
	stops, err := geocoding.ResolveStops(ctx, h.Geocoder, req.Stops, h.geocodeRetries())
	if err != nil {
		return err
	}
	req.Stops = stops

	if req.FixedStart != nil {
		start, err := geocoding.ResolveStops(ctx, h.Geocoder, []models.Stop{*req.FixedStart}, h.geocodeRetries())
		if err != nil {
			return err
		}
		req.FixedStart = &start[0]
	}
	return nil
}

func (h *Handler) geocodeRetries() int {
	if h.GeocodeRetries <= 0 {
		return 1
	}
	return h.GeocodeRetries
}

// normalizeStops copies the stops, assigns ids to stops submitted without one and
// checks that every stop can be placed on the map. A non-empty message means invalid input.
func normalizeStops(stops []models.Stop) ([]models.Stop, string) {
	if len(stops) > maxStopsPerRequest {
		return nil, fmt.Sprintf("At most %d stops are allowed", maxStopsPerRequest)
	}

	result := make([]models.Stop, len(stops))
	for i, s := range stops {
		if strings.TrimSpace(s.ID) == "" {
			s.ID = uuid.NewString()
		}
		if msg := validateStop(s); msg != "" {
			return nil, fmt.Sprintf("stop %d: %s", i, msg)
		}
		result[i] = s
	}

	if dups := lo.FindDuplicatesBy(result, func(s models.Stop) string { return s.ID }); len(dups) > 0 {
		return nil, fmt.Sprintf("Duplicate stop id: %s", dups[0].ID)
	}

	return result, ""
}

func validateStop(s models.Stop) string {
	if geocoding.NeedsGeocoding(s) {
		return ""
	}
	if !s.Coords.IsValid() {
		return "coordinates out of range"
	}
	return ""
}
