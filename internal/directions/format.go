package directions

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"trip-route-planner/internal/models"
)

// FormatDistance renders meters as "850 m" below one kilometer and "1.5 km" above
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	// Half-up rounding to one decimal, so 1250 m reads "1.3 km"
	km := math.Round(float64(meters)/100) / 10
	return fmt.Sprintf("%.1f km", km)
}

// FormatDuration renders minutes as "45 min" below an hour and "2h 5min" above
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

var maneuverTable = map[string]models.ManeuverKind{
	"turn-left":         models.ManeuverTurnLeft,
	"turn-slight-left":  models.ManeuverTurnLeft,
	"turn-sharp-left":   models.ManeuverTurnLeft,
	"keep-left":         models.ManeuverTurnLeft,
	"fork-left":         models.ManeuverTurnLeft,
	"turn-right":        models.ManeuverTurnRight,
	"turn-slight-right": models.ManeuverTurnRight,
	"turn-sharp-right":  models.ManeuverTurnRight,
	"keep-right":        models.ManeuverTurnRight,
	"fork-right":        models.ManeuverTurnRight,
	"straight":          models.ManeuverStraight,
	"uturn-left":        models.ManeuverUTurn,
	"uturn-right":       models.ManeuverUTurn,
	"merge":             models.ManeuverMerge,
	"ferry":             models.ManeuverFerry,
	"ferry-train":       models.ManeuverFerry,
	"roundabout-left":   models.ManeuverRoundaboutLeft,
	"roundabout-right":  models.ManeuverRoundaboutRight,
}

// NormalizeManeuver maps a provider maneuver keyword onto ManeuverKind.
// Unknown and empty keywords are Straight.
func NormalizeManeuver(raw string) models.ManeuverKind {
	if kind, ok := maneuverTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return kind
	}
	return models.ManeuverStraight
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// CleanInstructions strips markup from provider instruction text
func CleanInstructions(html string) string {
	return strings.TrimSpace(entityReplacer.Replace(htmlTagPattern.ReplaceAllString(html, "")))
}
