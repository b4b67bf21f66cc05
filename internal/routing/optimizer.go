package routing

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/samber/lo"

	"trip-route-planner/internal/geo"
	"trip-route-planner/internal/models"
)

// nearestNeighborOptimizer builds a tour greedily and then polishes it with 2-opt
type nearestNeighborOptimizer struct {
	twoOptMaxStops int
}

// NewNearestNeighborOptimizer creates an optimizer using nearest-neighbor construction
// followed by first-improvement 2-opt
func NewNearestNeighborOptimizer(opts Options) Optimizer {
	maxStops := opts.TwoOptMaxStops
	if maxStops <= 0 {
		maxStops = DefaultTwoOptMaxStops
	}
	return &nearestNeighborOptimizer{twoOptMaxStops: maxStops}
}

func (o *nearestNeighborOptimizer) Optimize(ctx context.Context, req *OptimizeRequest) (*models.OptimizedRoute, error) {
	totalStart := time.Now()
	combined := combinedStops(req.Stops, req.FixedStart)
	hasFixedStart := req.FixedStart != nil

	if len(req.Stops) <= 2 {
		return &models.OptimizedRoute{
			OrderedStops:   combined,
			ImprovementPct: 0,
		}, nil
	}

	log.Printf("[OPTIMIZER] Starting optimization: stops=%d fixed_start=%v mode=%s two_opt_max=%d",
		len(combined), hasFixedStart, req.Mode, o.twoOptMaxStops)

	originalKm := tourLengthKm(combined)

	phase1Start := time.Now()
	tour := nearestNeighbor(combined)
	nearestKm := tourLengthKm(tour)
	log.Printf("[TIMING] Phase 1 (nearest-neighbor): %v distance=%.3fkm", time.Since(phase1Start), nearestKm)

	if len(combined) <= o.twoOptMaxStops {
		phase2Start := time.Now()
		startIdx := 0
		if hasFixedStart {
			startIdx = 1
		}
		improved, passes, err := twoOpt(ctx, tour, startIdx)
		if err != nil {
			return nil, err
		}
		tour = improved
		log.Printf("[TIMING] Phase 2 (2-opt): %v passes=%d", time.Since(phase2Start), passes)
	} else {
		log.Printf("[OPTIMIZER] Skipping 2-opt: stops=%d exceeds %d", len(combined), o.twoOptMaxStops)
	}

	finalKm := tourLengthKm(tour)
	if finalKm > originalKm {
		// Nearest-neighbor can lose to the caller's order on large inputs.
		log.Printf("[OPTIMIZER] Keeping input order: optimized=%.3fkm input=%.3fkm", finalKm, originalKm)
		tour = combined
		finalKm = originalKm
	}

	improvement := 0.0
	if originalKm > 0 {
		improvement = (originalKm - finalKm) / originalKm * 100
	}

	log.Printf("[OPTIMIZER] Complete: distance=%.3fkm improvement=%.1f%%", finalKm, improvement)
	log.Printf("[TIMING] TOTAL: %v", time.Since(totalStart))

	return &models.OptimizedRoute{
		OrderedStops:     tour,
		TotalDistanceKm:  finalKm,
		TotalDurationMin: finalKm / models.SpeedForMode(req.Mode, models.SpeedLocal) * 60,
		ImprovementPct:   improvement,
	}, nil
}

// combinedStops returns a fresh slice with the fixed start first. A stop sharing the
// start's ID is not visited twice.
func combinedStops(stops []models.Stop, fixedStart *models.Stop) []models.Stop {
	result := make([]models.Stop, 0, len(stops)+1)
	if fixedStart == nil {
		return append(result, stops...)
	}

	result = append(result, *fixedStart)
	for _, s := range stops {
		if s.ID != "" && s.ID == fixedStart.ID {
			continue
		}
		result = append(result, s)
	}
	return result
}

// nearestNeighbor keeps stops[0] in place and repeatedly appends the closest unvisited
// stop. Ties go to the stop that appears first in the input.
func nearestNeighbor(stops []models.Stop) []models.Stop {
	if len(stops) == 0 {
		return []models.Stop{}
	}

	route := make([]models.Stop, 0, len(stops))
	route = append(route, stops[0])

	unvisited := make([]models.Stop, len(stops)-1)
	copy(unvisited, stops[1:])

	current := stops[0].Coords
	for len(unvisited) > 0 {
		bestIdx := -1
		bestDist := math.Inf(1)
		for i, s := range unvisited {
			d := geo.DistanceKm(current, s.Coords)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		next := unvisited[bestIdx]
		route = append(route, next)
		current = next.Coords
		unvisited = removeAt(unvisited, bestIdx)
	}

	return route
}

// twoOpt reverses segments [i..j] with i >= startIdx, accepting the first reversal that
// strictly shortens the tour and restarting the scan after each acceptance
func twoOpt(ctx context.Context, tour []models.Stop, startIdx int) ([]models.Stop, int, error) {
	route := make([]models.Stop, len(tour))
	copy(route, tour)

	best := tourLengthKm(route)
	passes := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, passes, err
		}
		passes++

		improved := false
	scan:
		for i := startIdx; i < len(route)-1; i++ {
			for j := i + 1; j < len(route); j++ {
				reverse(route, i, j)
				if d := tourLengthKm(route); d < best {
					best = d
					improved = true
					break scan
				}
				reverse(route, i, j)
			}
		}

		if !improved {
			return route, passes, nil
		}
	}
}

func tourLengthKm(stops []models.Stop) float64 {
	return geo.PathLengthKm(lo.Map(stops, func(s models.Stop, _ int) models.Coordinates {
		return s.Coords
	}))
}

// Helper functions
func removeAt(stops []models.Stop, pos int) []models.Stop {
	result := make([]models.Stop, len(stops)-1)
	copy(result[:pos], stops[:pos])
	copy(result[pos:], stops[pos+1:])
	return result
}

func reverse(stops []models.Stop, i, j int) {
	for i < j {
		stops[i], stops[j] = stops[j], stops[i]
		i++
		j--
	}
}
