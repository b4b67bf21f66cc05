package routing

import (
	"context"

	"trip-route-planner/internal/models"
)

// DefaultTwoOptMaxStops is the largest stop count (fixed start included) that still
// gets the 2-opt improvement phase. Larger inputs keep the nearest-neighbor order.
const DefaultTwoOptMaxStops = 10

// OptimizeRequest contains the input for stop ordering
type OptimizeRequest struct {
	Stops      []models.Stop
	FixedStart *models.Stop
	Mode       models.TravelMode
}

// Options tunes the optimizer
type Options struct {
	// TwoOptMaxStops overrides DefaultTwoOptMaxStops when positive
	TwoOptMaxStops int
}

// Optimizer orders stops to approximately minimize total travel distance
type Optimizer interface {
	Optimize(ctx context.Context, req *OptimizeRequest) (*models.OptimizedRoute, error)
}
