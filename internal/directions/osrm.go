package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/models"
)

// DefaultOSRMBaseURL is the public OSRM demo server
const DefaultOSRMBaseURL = "https://router.project-osrm.org"

// OSRMConfig configures the OSRM route-service provider
type OSRMConfig struct {
	BaseURL string
	Timeout time.Duration
}

type osrmProvider struct {
	baseURL    string
	httpClient *http.Client
	cache      database.DirectionsCacheRepository
}

type osrmManeuver struct {
	Type     string    `json:"type"`
	Modifier string    `json:"modifier"`
	Location []float64 `json:"location"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Name     string       `json:"name"`
	Mode     string       `json:"mode"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []osrmStep `json:"steps"`
}

type osrmRoute struct {
	Geometry string    `json:"geometry"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

var osrmProfiles = map[models.TravelMode]string{
	models.TravelModeDriving:   "driving",
	models.TravelModeWalking:   "foot",
	models.TravelModeBicycling: "bike",
}

// NewOSRMProvider creates an OSRM route-service provider. cache may be nil.
// OSRM has no transit profile, so transit requests always fail over to the next tier.
func NewOSRMProvider(cfg OSRMConfig, cache database.DirectionsCacheRepository) Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &osrmProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}
}

func (p *osrmProvider) Fetch(ctx context.Context, req *FetchRequest) (*models.RawDirectionsResponse, error) {
	profile, ok := osrmProfiles[req.Mode]
	if !ok {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: "mode not supported by OSRM"}
	}

	key := makeCacheKey("osrm", req)
	if cached := readCache(ctx, p.cache, key); cached != nil {
		return cached, nil
	}

	queryURL := p.routeURL(profile, req)
	log.Printf("[OSRM] Route request: mode=%s points=%d road_snapping=%v", req.Mode, len(req.Waypoints)+2, req.RoadSnapping)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[ERROR] OSRM API request failed: mode=%s err=%v", req.Mode, err)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[ERROR] OSRM API error: mode=%s status=%d body=%s", req.Mode, resp.StatusCode, string(body))
		return nil, &ErrDirectionsFailed{
			Mode:   req.Mode,
			Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var oResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		log.Printf("[ERROR] Failed to decode OSRM response: mode=%s err=%v", req.Mode, err)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}

	if oResp.Code != "Ok" {
		log.Printf("[ERROR] OSRM returned error code: mode=%s code=%s message=%s", req.Mode, oResp.Code, oResp.Message)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Status: oResp.Code, Reason: oResp.Message}
	}
	if len(oResp.Routes) == 0 {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Status: oResp.Code, Reason: "no routes found"}
	}

	raw := convertOSRMRoute(oResp.Routes[0])
	log.Printf("[OSRM] Route response: mode=%s legs=%d polyline_len=%d", req.Mode, len(raw.Legs), len(raw.OverviewPolyline))

	writeCache(ctx, p.cache, key, req.Mode, raw)
	return raw, nil
}

func (p *osrmProvider) routeURL(profile string, req *FetchRequest) string {
	coords := make([]string, 0, len(req.Waypoints)+2)
	for _, c := range req.points() {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", c.Lng, c.Lat))
	}

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "polyline")
	q.Set("steps", "true")
	q.Set("alternatives", "false")
	if req.RoadSnapping && req.Mode == models.TravelModeDriving {
		q.Set("continue_straight", "true")
	}

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", p.baseURL, profile, strings.Join(coords, ";"), q.Encode())
}

// convertOSRMRoute maps an OSRM route onto the provider-neutral shape. Arrive steps
// carry no travel and only mark where the previous step ends.
func convertOSRMRoute(route osrmRoute) *models.RawDirectionsResponse {
	raw := &models.RawDirectionsResponse{
		Legs:             make([]models.RawDirectionsLeg, 0, len(route.Legs)),
		OverviewPolyline: route.Geometry,
	}

	for _, leg := range route.Legs {
		rawLeg := models.RawDirectionsLeg{
			DistanceMeters: int(math.Round(leg.Distance)),
			DurationSecs:   int(math.Round(leg.Duration)),
			Steps:          make([]models.RawDirectionsStep, 0, len(leg.Steps)),
		}
		for i, s := range leg.Steps {
			if s.Maneuver.Type == "arrive" {
				continue
			}
			end := osrmLocation(s.Maneuver.Location)
			if i+1 < len(leg.Steps) {
				end = osrmLocation(leg.Steps[i+1].Maneuver.Location)
			}
			rawLeg.Steps = append(rawLeg.Steps, models.RawDirectionsStep{
				HTMLInstructions: osrmInstruction(s),
				DistanceText:     FormatDistance(int(math.Round(s.Distance))),
				DurationText:     FormatDuration(int(math.Round(s.Duration / 60))),
				Start:            osrmLocation(s.Maneuver.Location),
				End:              end,
				Maneuver:         osrmManeuverKeyword(s),
			})
		}
		raw.Legs = append(raw.Legs, rawLeg)
	}

	return raw
}

// osrmLocation converts OSRM's [lng, lat] pair
func osrmLocation(loc []float64) models.Coordinates {
	if len(loc) < 2 {
		return models.Coordinates{}
	}
	return models.Coordinates{Lat: loc[1], Lng: loc[0]}
}

func osrmInstruction(s osrmStep) string {
	onto := ""
	if s.Name != "" {
		onto = " onto " + s.Name
	}

	if s.Mode == "ferry" {
		return "Take the ferry" + onto
	}

	switch s.Maneuver.Type {
	case "depart":
		if s.Name != "" {
			return "Head out on " + s.Name
		}
		return "Depart"
	case "merge":
		return "Merge" + onto
	case "roundabout", "rotary", "roundabout turn", "exit roundabout", "exit rotary":
		return "Take the roundabout" + onto
	case "on ramp", "off ramp":
		return "Take the ramp" + onto
	case "continue", "new name", "notification":
		return "Continue" + onto
	}

	switch {
	case s.Maneuver.Modifier == "uturn":
		return "Make a U-turn" + onto
	case s.Maneuver.Modifier == "straight" || s.Maneuver.Modifier == "":
		return "Continue" + onto
	default:
		return "Turn " + s.Maneuver.Modifier + onto
	}
}

// osrmManeuverKeyword translates OSRM maneuvers into the keywords NormalizeManeuver understands
func osrmManeuverKeyword(s osrmStep) string {
	if s.Mode == "ferry" {
		return "ferry"
	}

	modifier := s.Maneuver.Modifier
	switch s.Maneuver.Type {
	case "depart", "arrive":
		return ""
	case "merge":
		return "merge"
	case "roundabout", "rotary", "roundabout turn", "exit roundabout", "exit rotary":
		if strings.Contains(modifier, "left") {
			return "roundabout-left"
		}
		return "roundabout-right"
	}

	switch {
	case modifier == "uturn":
		return "uturn-left"
	case strings.Contains(modifier, "left"):
		return "turn-left"
	case strings.Contains(modifier, "right"):
		return "turn-right"
	case modifier == "straight":
		return "straight"
	}
	return ""
}
