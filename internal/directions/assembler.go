package directions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/lo"

	"trip-route-planner/internal/models"
	"trip-route-planner/internal/polyline"
)

// ErrInsufficientStops is returned when a route is requested for fewer than two stops
var ErrInsufficientStops = errors.New("at least two stops are required")

// Assembler turns an ordered stop list into a NavigationRoute, degrading from
// road-snapped provider directions to plain provider directions to straight lines
type Assembler struct {
	provider Provider
}

// tier is one attempt at producing a route
type tier struct {
	name    string
	attempt func(ctx context.Context) (*models.NavigationRoute, error)
}

// NewAssembler creates an assembler. A nil provider always yields the straight-line route.
func NewAssembler(provider Provider) *Assembler {
	return &Assembler{provider: provider}
}

// Assemble builds the route for stops in the given order. Provider failures never
// surface; the only error is ErrInsufficientStops.
func (a *Assembler) Assemble(ctx context.Context, stops []models.Stop, mode models.TravelMode) (*models.NavigationRoute, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientStops, len(stops))
	}

	start := time.Now()
	log.Printf("[ASSEMBLER] Building route: stops=%d mode=%s", len(stops), mode)

	for _, t := range a.tiers(stops, mode) {
		route, err := t.attempt(ctx)
		if err != nil {
			log.Printf("[ASSEMBLER] Tier failed: tier=%s err=%v", t.name, err)
			continue
		}
		log.Printf("[ASSEMBLER] Route built: tier=%s steps=%d points=%d elapsed=%v",
			t.name, len(route.Steps), len(route.PathPoints), time.Since(start))
		return route, nil
	}

	log.Printf("[ASSEMBLER] Using straight-line fallback: stops=%d mode=%s", len(stops), mode)
	return straightLineRoute(stops, mode), nil
}

func (a *Assembler) tiers(stops []models.Stop, mode models.TravelMode) []tier {
	if a.provider == nil {
		return nil
	}

	coords := lo.Map(stops, func(s models.Stop, _ int) models.Coordinates { return s.Coords })
	origin := coords[0]
	destination := coords[len(coords)-1]
	waypoints := coords[1 : len(coords)-1]

	fetch := func(roadSnapping bool) func(ctx context.Context) (*models.NavigationRoute, error) {
		return func(ctx context.Context) (*models.NavigationRoute, error) {
			resp, err := a.provider.Fetch(ctx, &FetchRequest{
				Origin:       origin,
				Destination:  destination,
				Waypoints:    waypoints,
				Mode:         mode,
				RoadSnapping: roadSnapping,
			})
			if err != nil {
				return nil, err
			}
			return normalize(resp, mode, origin, destination)
		}
	}

	return []tier{
		{name: "road-snapping", attempt: fetch(true)},
		{name: "primary", attempt: fetch(false)},
	}
}

// normalize converts a raw provider response into a NavigationRoute
func normalize(resp *models.RawDirectionsResponse, mode models.TravelMode, origin, destination models.Coordinates) (*models.NavigationRoute, error) {
	if resp == nil || len(resp.Legs) == 0 {
		return nil, &ErrDirectionsFailed{Mode: mode, Reason: "response has no legs"}
	}
	if resp.OverviewPolyline == "" {
		return nil, &ErrDirectionsFailed{Mode: mode, Reason: "response has no polyline"}
	}

	points, err := polyline.Parse(resp.OverviewPolyline)
	if err != nil {
		return nil, fmt.Errorf("invalid overview polyline: %w", err)
	}

	var totalMeters, totalSecs int
	var steps []models.NavigationStep
	for _, leg := range resp.Legs {
		totalMeters += leg.DistanceMeters
		totalSecs += leg.DurationSecs
		for _, s := range leg.Steps {
			steps = append(steps, models.NavigationStep{
				Instruction:  CleanInstructions(s.HTMLInstructions),
				DistanceText: s.DistanceText,
				DurationText: s.DurationText,
				Start:        s.Start,
				End:          s.End,
				Maneuver:     NormalizeManeuver(s.Maneuver),
			})
		}
	}

	if len(steps) == 0 {
		return nil, &ErrDirectionsFailed{Mode: mode, Reason: "response has no steps"}
	}

	// Providers report snapped positions; the route must start and end at the stops.
	steps[0].Start = origin
	steps[len(steps)-1].End = destination

	return &models.NavigationRoute{
		Polyline:          resp.OverviewPolyline,
		TotalDistanceText: FormatDistance(totalMeters),
		TotalDurationText: FormatDuration(totalSecs / 60),
		Steps:             steps,
		PathPoints:        points,
		TravelMode:        mode,
	}, nil
}
