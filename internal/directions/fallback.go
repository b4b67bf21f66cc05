package directions

import (
	"math"

	"github.com/samber/lo"

	"trip-route-planner/internal/geo"
	"trip-route-planner/internal/models"
	"trip-route-planner/internal/polyline"
)

var fallbackVerbs = map[models.TravelMode]string{
	models.TravelModeDriving:   "Drive to",
	models.TravelModeWalking:   "Walk to",
	models.TravelModeBicycling: "Bike to",
	models.TravelModeTransit:   "Go to",
}

// straightLineRoute connects consecutive stops directly. Text estimates use the
// long-distance speed table and the polyline uses the delimited form.
func straightLineRoute(stops []models.Stop, mode models.TravelMode) *models.NavigationRoute {
	speed := models.SpeedForMode(mode, models.SpeedLongDistance)
	verb, ok := fallbackVerbs[mode]
	if !ok {
		verb = fallbackVerbs[models.TravelModeDriving]
	}

	steps := make([]models.NavigationStep, 0, len(stops)-1)
	totalKm := 0.0
	last := len(stops) - 2

	for i := 0; i < len(stops)-1; i++ {
		start, end := stops[i], stops[i+1]
		km := geo.DistanceKm(start.Coords, end.Coords)
		totalKm += km

		instruction := "Continue to " + end.DisplayName()
		maneuver := models.ManeuverStraight
		switch i {
		case 0:
			instruction = verb + " " + end.DisplayName()
			maneuver = models.ManeuverDepart
		case last:
			maneuver = models.ManeuverArrive
		}

		steps = append(steps, models.NavigationStep{
			Instruction:  instruction,
			DistanceText: FormatDistance(kmToMeters(km)),
			DurationText: FormatDuration(travelMinutes(km, speed)),
			Start:        start.Coords,
			End:          end.Coords,
			Maneuver:     maneuver,
		})
	}

	points := lo.Map(stops, func(s models.Stop, _ int) models.Coordinates { return s.Coords })

	return &models.NavigationRoute{
		Polyline:          polyline.EncodeDelimited(points),
		TotalDistanceText: FormatDistance(kmToMeters(totalKm)),
		TotalDurationText: FormatDuration(travelMinutes(totalKm, speed)),
		Steps:             steps,
		PathPoints:        points,
		TravelMode:        mode,
		Degraded:          true,
	}
}

func kmToMeters(km float64) int {
	return int(math.Round(km * 1000))
}

func travelMinutes(km, speedKmh float64) int {
	return int(math.Round(km / speedKmh * 60))
}
