package geocoding

import (
	"context"
	"fmt"
	"log"
	"strings"

	"trip-route-planner/internal/models"
)

// NeedsGeocoding reports whether a stop has an address but no usable coordinates
func NeedsGeocoding(s models.Stop) bool {
	if strings.TrimSpace(s.Address) == "" {
		return false
	}
	return s.Coords == (models.Coordinates{}) || !s.Coords.IsValid()
}

// ResolveStops fills in coordinates for stops that only carry an address.
// The input slice is not modified. Stops without an address pass through unchanged.
func ResolveStops(ctx context.Context, g Geocoder, stops []models.Stop, maxRetries int) ([]models.Stop, error) {
	resolved := make([]models.Stop, len(stops))
	copy(resolved, stops)

	count := 0
	for i := range resolved {
		if !NeedsGeocoding(resolved[i]) {
			continue
		}
		if g == nil {
			return nil, &ErrGeocodingFailed{Address: resolved[i].Address, Reason: "no geocoder configured"}
		}

		result, err := g.GeocodeWithRetry(ctx, resolved[i].Address, maxRetries)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stop %s: %w", resolved[i].ID, err)
		}
		resolved[i].Coords = result.Coords
		if strings.TrimSpace(resolved[i].Name) == "" {
			resolved[i].Name = result.DisplayName
		}
		count++
	}

	if count > 0 {
		log.Printf("[GEOCODING] Resolved stops: geocoded=%d total=%d", count, len(stops))
	}
	return resolved, nil
}
