package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trip-route-planner/internal/models"
)

// DefaultNominatimBaseURL is the public OpenStreetMap Nominatim host
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// GeocodingResult contains the result of a geocoding operation
type GeocodingResult struct {
	Coords      models.Coordinates `json:"coords"`
	DisplayName string             `json:"display_name"`
}

// Geocoder provides address-to-coordinates conversion
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
	GeocodeWithRetry(ctx context.Context, address string, maxRetries int) (*GeocodingResult, error)
	Search(ctx context.Context, query string, limit int) ([]GeocodingResult, error)
}

// ErrGeocodingFailed is returned when an address cannot be geocoded
type ErrGeocodingFailed struct {
	Address string
	Reason  string
}

func (e *ErrGeocodingFailed) Error() string {
	return fmt.Sprintf("geocoding failed for address: %s - %s", e.Address, e.Reason)
}

// NominatimConfig configures the Nominatim geocoder
type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	// Interval is the minimum gap between requests. Nominatim's usage policy asks for one second.
	Interval time.Duration
}

type nominatimGeocoder struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *time.Ticker
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates a new Nominatim geocoder with rate limiting
func NewNominatimGeocoder(cfg NominatimConfig) Geocoder {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "TripRoutePlanner/1.0"
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &nominatimGeocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: time.NewTicker(interval),
	}
}

func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	results, err := g.query(ctx, address, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Printf("[ERROR] No geocoding results found: address=%s", address)
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}

	result := results[0]
	log.Printf("[GEOCODING] Response: address=%s lat=%.6f lng=%.6f display_name=%s",
		address, result.Coords.Lat, result.Coords.Lng, result.DisplayName)
	return &result, nil
}

func (g *nominatimGeocoder) GeocodeWithRetry(ctx context.Context, address string, maxRetries int) (*GeocodingResult, error) {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		result, err := g.Geocode(ctx, address)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if i < maxRetries-1 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[GEOCODING] Retry %d/%d: address=%s backoff=%v err=%v", i+1, maxRetries, address, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	log.Printf("[ERROR] Geocoding failed after %d retries: address=%s err=%v", maxRetries, address, lastErr)
	return nil, lastErr
}

func (g *nominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]GeocodingResult, error) {
	results, err := g.query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	log.Printf("[GEOCODING] Search response: query=%s results_count=%d", query, len(results))
	return results, nil
}

// query runs one rate-limited /search call. Entries with unparseable coordinates are skipped.
func (g *nominatimGeocoder) query(ctx context.Context, q string, limit int) ([]GeocodingResult, error) {
	select {
	case <-g.rateLimiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	queryURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())
	log.Printf("[GEOCODING] Request: q=%s limit=%d", q, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: q, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] Geocoding API request failed: q=%s err=%v", q, err)
		return nil, &ErrGeocodingFailed{Address: q, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[ERROR] Geocoding API error: q=%s status=%d body=%s", q, resp.StatusCode, string(body))
		return nil, &ErrGeocodingFailed{
			Address: q,
			Reason:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var raw []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		log.Printf("[ERROR] Failed to decode geocoding response: q=%s err=%v", q, err)
		return nil, &ErrGeocodingFailed{Address: q, Reason: err.Error()}
	}

	results := make([]GeocodingResult, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			log.Printf("[ERROR] Invalid latitude in geocoding response: q=%s lat=%s", q, r.Lat)
			continue
		}
		lng, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			log.Printf("[ERROR] Invalid longitude in geocoding response: q=%s lng=%s", q, r.Lon)
			continue
		}
		results = append(results, GeocodingResult{
			Coords:      models.Coordinates{Lat: lat, Lng: lng},
			DisplayName: r.DisplayName,
		})
	}

	return results, nil
}
