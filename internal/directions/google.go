package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/models"
)

// DefaultGoogleBaseURL is the public Google Maps API host
const DefaultGoogleBaseURL = "https://maps.googleapis.com"

// GoogleConfig configures the Google Directions provider
type GoogleConfig struct {
	BaseURL  string
	APIKey   string
	Region   string
	Language string
	Timeout  time.Duration
}

type googleProvider struct {
	baseURL    string
	apiKey     string
	region     string
	language   string
	httpClient *http.Client
	cache      database.DirectionsCacheRepository
}

type googleTextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleStep struct {
	HTMLInstructions string          `json:"html_instructions"`
	Distance         googleTextValue `json:"distance"`
	Duration         googleTextValue `json:"duration"`
	StartLocation    googleLatLng    `json:"start_location"`
	EndLocation      googleLatLng    `json:"end_location"`
	Maneuver         string          `json:"maneuver"`
}

type googleLeg struct {
	Distance googleTextValue `json:"distance"`
	Duration googleTextValue `json:"duration"`
	Steps    []googleStep    `json:"steps"`
}

type googleRoute struct {
	Legs             []googleLeg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type googleDirectionsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Routes       []googleRoute `json:"routes"`
}

// NewGoogleProvider creates a Google Directions provider. cache may be nil.
func NewGoogleProvider(cfg GoogleConfig, cache database.DirectionsCacheRepository) Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &googleProvider{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		region:   cfg.Region,
		language: language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}
}

func (p *googleProvider) Fetch(ctx context.Context, req *FetchRequest) (*models.RawDirectionsResponse, error) {
	key := makeCacheKey("google", req)

	if cached := readCache(ctx, p.cache, key); cached != nil {
		return cached, nil
	}

	queryURL := fmt.Sprintf("%s/maps/api/directions/json?%s", p.baseURL, p.buildQuery(req).Encode())
	log.Printf("[DIRECTIONS] Request: mode=%s waypoints=%d road_snapping=%v", req.Mode, len(req.Waypoints), req.RoadSnapping)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[ERROR] Directions API request failed: mode=%s err=%v", req.Mode, err)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[ERROR] Directions API error: mode=%s status=%d body=%s", req.Mode, resp.StatusCode, string(body))
		return nil, &ErrDirectionsFailed{
			Mode:   req.Mode,
			Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var gResp googleDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		log.Printf("[ERROR] Failed to decode directions response: mode=%s err=%v", req.Mode, err)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Reason: err.Error()}
	}

	if gResp.Status != "OK" {
		log.Printf("[ERROR] Directions API returned status: mode=%s status=%s message=%s", req.Mode, gResp.Status, gResp.ErrorMessage)
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Status: gResp.Status, Reason: gResp.ErrorMessage}
	}
	if len(gResp.Routes) == 0 {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Status: gResp.Status, Reason: "no routes found"}
	}

	raw := convertGoogleRoute(gResp.Routes[0])
	log.Printf("[DIRECTIONS] Response: mode=%s legs=%d polyline_len=%d", req.Mode, len(raw.Legs), len(raw.OverviewPolyline))

	writeCache(ctx, p.cache, key, req.Mode, raw)

	return raw, nil
}

func (p *googleProvider) buildQuery(req *FetchRequest) url.Values {
	q := url.Values{}
	q.Set("origin", formatLatLng(req.Origin))
	q.Set("destination", formatLatLng(req.Destination))
	if len(req.Waypoints) > 0 {
		parts := make([]string, len(req.Waypoints))
		for i, w := range req.Waypoints {
			parts[i] = formatLatLng(w)
		}
		q.Set("waypoints", strings.Join(parts, "|"))
	}
	q.Set("mode", string(req.Mode))
	q.Set("units", "metric")
	q.Set("alternatives", "false")

	if req.RoadSnapping {
		switch req.Mode {
		case models.TravelModeDriving:
			q.Set("avoid", "tolls")
		case models.TravelModeTransit:
			q.Set("transit_mode", "bus|subway|train")
			q.Set("transit_routing_preference", "less_walking")
		}
	}

	if p.region != "" {
		q.Set("region", p.region)
	}
	q.Set("language", p.language)
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}
	return q
}

func convertGoogleRoute(route googleRoute) *models.RawDirectionsResponse {
	raw := &models.RawDirectionsResponse{
		Legs:             make([]models.RawDirectionsLeg, 0, len(route.Legs)),
		OverviewPolyline: route.OverviewPolyline.Points,
	}

	for _, leg := range route.Legs {
		rawLeg := models.RawDirectionsLeg{
			DistanceMeters: leg.Distance.Value,
			DurationSecs:   leg.Duration.Value,
			Steps:          make([]models.RawDirectionsStep, 0, len(leg.Steps)),
		}
		for _, s := range leg.Steps {
			rawLeg.Steps = append(rawLeg.Steps, models.RawDirectionsStep{
				HTMLInstructions: s.HTMLInstructions,
				DistanceText:     s.Distance.Text,
				DurationText:     s.Duration.Text,
				Start:            models.Coordinates{Lat: s.StartLocation.Lat, Lng: s.StartLocation.Lng},
				End:              models.Coordinates{Lat: s.EndLocation.Lat, Lng: s.EndLocation.Lng},
				Maneuver:         s.Maneuver,
			})
		}
		raw.Legs = append(raw.Legs, rawLeg)
	}

	return raw
}

func formatLatLng(c models.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
