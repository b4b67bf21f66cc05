package directions

import (
	"context"
	"errors"
	"fmt"

	"trip-route-planner/internal/models"
)

// ErrProviderUnavailable wraps every failure reported by a directions provider
var ErrProviderUnavailable = errors.New("directions provider unavailable")

// FetchRequest describes one directions lookup
type FetchRequest struct {
	Origin      models.Coordinates
	Destination models.Coordinates
	Waypoints   []models.Coordinates
	Mode        models.TravelMode
	// RoadSnapping asks the provider to bias routing toward road-following paths
	// with mode-specific hints
	RoadSnapping bool
}

// Provider fetches turn-by-turn directions from an external service
type Provider interface {
	Fetch(ctx context.Context, req *FetchRequest) (*models.RawDirectionsResponse, error)
}

// ErrDirectionsFailed is returned when a provider call does not produce a usable route
type ErrDirectionsFailed struct {
	Mode   models.TravelMode
	Status string
	Reason string
}

func (e *ErrDirectionsFailed) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("directions failed: mode=%s status=%s: %s", e.Mode, e.Status, e.Reason)
	}
	return fmt.Sprintf("directions failed: mode=%s: %s", e.Mode, e.Reason)
}

func (e *ErrDirectionsFailed) Unwrap() error {
	return ErrProviderUnavailable
}
