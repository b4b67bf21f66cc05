package directions

import (
	"context"
	"fmt"
	"log"
	"strings"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/models"
)

// points returns origin, waypoints and destination in travel order
func (r *FetchRequest) points() []models.Coordinates {
	points := make([]models.Coordinates, 0, len(r.Waypoints)+2)
	points = append(points, r.Origin)
	points = append(points, r.Waypoints...)
	return append(points, r.Destination)
}

// makeCacheKey identifies a request by provider, mode, variant and 5-decimal coordinates
func makeCacheKey(provider string, req *FetchRequest) string {
	variant := "primary"
	if req.RoadSnapping {
		variant = "snap"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%s:%s:", provider, req.Mode, variant)
	for i, c := range req.points() {
		if i > 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, "%.5f,%.5f", models.RoundCoordinate(c.Lat), models.RoundCoordinate(c.Lng))
	}
	return sb.String()
}

// readCache returns nil on a miss. Read errors count as misses.
func readCache(ctx context.Context, cache database.DirectionsCacheRepository, key string) *models.RawDirectionsResponse {
	if cache == nil {
		return nil
	}
	cached, err := cache.Get(ctx, key)
	if err != nil {
		log.Printf("[DIRECTIONS] Cache read failed: key=%s err=%v", key, err)
		return nil
	}
	if cached == nil {
		return nil
	}
	resp := cached.Response
	return &resp
}

func writeCache(ctx context.Context, cache database.DirectionsCacheRepository, key string, mode models.TravelMode, raw *models.RawDirectionsResponse) {
	if cache == nil {
		return
	}
	entry := &models.DirectionsCacheEntry{Key: key, Mode: mode, Response: *raw}
	if err := cache.Set(ctx, entry); err != nil {
		log.Printf("[DIRECTIONS] Cache write failed: key=%s err=%v", key, err)
	}
}
