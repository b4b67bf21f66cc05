package models

import (
	"math"
	"strings"
)

// Coordinates represents a geographic point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether the coordinate lies inside the WGS84 lat/lng ranges
func (c Coordinates) IsValid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Stop represents a place the traveler wants to visit
type Stop struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Address string      `json:"address,omitempty"`
	Coords  Coordinates `json:"coords"`
}

// DisplayName returns the name to show in instructions, falling back to the ID
func (s *Stop) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.ID
}

// TravelMode is how the traveler moves between stops
type TravelMode string

const (
	TravelModeDriving   TravelMode = "driving"
	TravelModeWalking   TravelMode = "walking"
	TravelModeBicycling TravelMode = "bicycling"
	TravelModeTransit   TravelMode = "transit"
)

// AllTravelModes lists every supported mode
var AllTravelModes = []TravelMode{
	TravelModeDriving,
	TravelModeWalking,
	TravelModeBicycling,
	TravelModeTransit,
}

// IsValid checks if the travel mode is one of the supported values
func (m TravelMode) IsValid() bool {
	switch m {
	case TravelModeDriving, TravelModeWalking, TravelModeBicycling, TravelModeTransit:
		return true
	}
	return false
}

// ParseTravelMode converts a request string into a TravelMode. Empty means driving.
func ParseTravelMode(s string) (TravelMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TravelModeDriving, true
	}
	m := TravelMode(s)
	return m, m.IsValid()
}

// SpeedContext selects which table of assumed average speeds applies
type SpeedContext int

const (
	// SpeedLocal is used for optimizer duration estimates
	SpeedLocal SpeedContext = iota
	// SpeedLongDistance is used by the straight-line fallback route
	SpeedLongDistance
)

var localSpeedsKmh = map[TravelMode]float64{
	TravelModeWalking:   5,
	TravelModeBicycling: 15,
	TravelModeDriving:   40,
	TravelModeTransit:   25,
}

var longDistanceSpeedsKmh = map[TravelMode]float64{
	TravelModeWalking:   5,
	TravelModeBicycling: 15,
	TravelModeDriving:   60,
	TravelModeTransit:   40,
}

// SpeedForMode returns the assumed average speed in km/h. Unknown modes use driving.
func SpeedForMode(mode TravelMode, sc SpeedContext) float64 {
	table := localSpeedsKmh
	if sc == SpeedLongDistance {
		table = longDistanceSpeedsKmh
	}
	if v, ok := table[mode]; ok {
		return v
	}
	return table[TravelModeDriving]
}

// ManeuverKind is the closed set of turn instructions a step can carry
type ManeuverKind string

const (
	ManeuverTurnLeft        ManeuverKind = "TURN_LEFT"
	ManeuverTurnRight       ManeuverKind = "TURN_RIGHT"
	ManeuverStraight        ManeuverKind = "STRAIGHT"
	ManeuverUTurn           ManeuverKind = "U_TURN"
	ManeuverMerge           ManeuverKind = "MERGE"
	ManeuverFerry           ManeuverKind = "FERRY"
	ManeuverRoundaboutLeft  ManeuverKind = "ROUNDABOUT_LEFT"
	ManeuverRoundaboutRight ManeuverKind = "ROUNDABOUT_RIGHT"
	ManeuverDepart          ManeuverKind = "DEPART"
	ManeuverArrive          ManeuverKind = "ARRIVE"
)

// OptimizedRoute is the result of reordering stops
type OptimizedRoute struct {
	OrderedStops     []Stop  `json:"ordered_stops"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalDurationMin float64 `json:"total_duration_min"`
	ImprovementPct   float64 `json:"improvement_pct"`
}

// NavigationStep is a single maneuver along a route
type NavigationStep struct {
	Instruction  string       `json:"instruction"`
	DistanceText string       `json:"distance_text"`
	DurationText string       `json:"duration_text"`
	Start        Coordinates  `json:"start"`
	End          Coordinates  `json:"end"`
	Maneuver     ManeuverKind `json:"maneuver"`
}

// NavigationRoute is the normalized route handed to the map renderer
type NavigationRoute struct {
	Polyline          string           `json:"polyline"`
	TotalDistanceText string           `json:"total_distance_text"`
	TotalDurationText string           `json:"total_duration_text"`
	Steps             []NavigationStep `json:"steps"`
	PathPoints        []Coordinates    `json:"path_points"`
	TravelMode        TravelMode       `json:"travel_mode"`
	Degraded          bool             `json:"degraded"`
}

// RawDirectionsStep is one step as reported by a directions provider
type RawDirectionsStep struct {
	HTMLInstructions string      `json:"html_instructions"`
	DistanceText     string      `json:"distance_text"`
	DurationText     string      `json:"duration_text"`
	Start            Coordinates `json:"start"`
	End              Coordinates `json:"end"`
	Maneuver         string      `json:"maneuver,omitempty"`
}

// RawDirectionsLeg is the part of a provider route between two consecutive stops
type RawDirectionsLeg struct {
	DistanceMeters int                 `json:"distance_meters"`
	DurationSecs   int                 `json:"duration_secs"`
	Steps          []RawDirectionsStep `json:"steps"`
}

// RawDirectionsResponse is the provider-neutral shape of a turn-by-turn answer
type RawDirectionsResponse struct {
	Legs             []RawDirectionsLeg `json:"legs"`
	OverviewPolyline string             `json:"overview_polyline"`
}

// DirectionsCacheEntry represents a cached directions lookup
type DirectionsCacheEntry struct {
	Key      string                `json:"key"`
	Mode     TravelMode            `json:"mode"`
	Response RawDirectionsResponse `json:"response"`
}

// RoundCoordinate rounds to 5 decimal places (~1m), the precision used for cache keys
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
