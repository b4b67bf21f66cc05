package handlers

import (
	"log"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/samber/lo"

	"trip-route-planner/internal/models"
)

// HandleNavigationGeoJSON handles POST /api/v1/routes/navigation/geojson
func (h *Handler) HandleNavigationGeoJSON(w http.ResponseWriter, r *http.Request) {
	route, stops, ok := h.buildNavigation(w, r)
	if !ok {
		return
	}

	data, err := routeFeatureCollection(route, stops).MarshalJSON()
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[ERROR] Failed to write GeoJSON response: err=%v", err)
	}
}

// routeFeatureCollection renders the path as a LineString followed by one Point per stop
func routeFeatureCollection(route *models.NavigationRoute, stops []models.Stop) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	path := orb.LineString(lo.Map(route.PathPoints, func(c models.Coordinates, _ int) orb.Point {
		return toPoint(c)
	}))
	line := geojson.NewFeature(path)
	line.Properties["kind"] = "route"
	line.Properties["travel_mode"] = string(route.TravelMode)
	line.Properties["total_distance"] = route.TotalDistanceText
	line.Properties["total_duration"] = route.TotalDurationText
	line.Properties["degraded"] = route.Degraded
	line.Properties["steps"] = len(route.Steps)
	fc.Append(line)

	for i, s := range stops {
		f := geojson.NewFeature(toPoint(s.Coords))
		f.ID = s.ID
		f.Properties["kind"] = "stop"
		f.Properties["order"] = i
		f.Properties["name"] = s.DisplayName()
		fc.Append(f)
	}

	return fc
}

// toPoint converts to orb's [lng, lat] ordering
func toPoint(c models.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}
