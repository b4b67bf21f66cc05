package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trip-route-planner/internal/models"
)

const osrmOKBody = `{
  "code": "Ok",
  "routes": [{
    "geometry": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@",
    "legs": [{
      "distance": 1534.6,
      "duration": 183.2,
      "steps": [
        {"distance": 400.2, "duration": 50, "name": "Quai du Louvre", "mode": "driving",
         "maneuver": {"type": "depart", "location": [2.3376, 48.8606]}},
        {"distance": 1134.4, "duration": 133.2, "name": "Rue de Rivoli", "mode": "driving",
         "maneuver": {"type": "turn", "modifier": "slight left", "location": [2.3410, 48.8590]}},
        {"distance": 0, "duration": 0, "name": "", "mode": "driving",
         "maneuver": {"type": "arrive", "location": [2.3499, 48.8530]}}
      ]
    }]
  }]
}`

func TestOSRMProvider_Fetch(t *testing.T) {
	var path, rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawQuery = r.URL.RawQuery
		w.Write([]byte(osrmOKBody))
	}))
	defer server.Close()

	p := &osrmProvider{baseURL: server.URL, httpClient: server.Client()}
	req := &FetchRequest{
		Origin:      models.Coordinates{Lat: 48.8606, Lng: 2.3376},
		Destination: models.Coordinates{Lat: 48.8530, Lng: 2.3499},
		Mode:        models.TravelModeDriving,
	}

	resp, err := p.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/route/v1/driving/2.337600,48.860600;2.349900,48.853000" {
		t.Errorf("unexpected path: %s", path)
	}
	if !strings.Contains(rawQuery, "steps=true") || !strings.Contains(rawQuery, "geometries=polyline") {
		t.Errorf("missing route options: %s", rawQuery)
	}
	if strings.Contains(rawQuery, "continue_straight") {
		t.Errorf("primary request should carry no road-snapping hint: %s", rawQuery)
	}

	if len(resp.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(resp.Legs))
	}
	leg := resp.Legs[0]
	if leg.DistanceMeters != 1535 || leg.DurationSecs != 183 {
		t.Errorf("unexpected leg totals: %d m %d s", leg.DistanceMeters, leg.DurationSecs)
	}
	if len(leg.Steps) != 2 {
		t.Fatalf("arrive step should be dropped, got %d steps", len(leg.Steps))
	}

	first, second := leg.Steps[0], leg.Steps[1]
	if first.HTMLInstructions != "Head out on Quai du Louvre" {
		t.Errorf("unexpected instruction: %q", first.HTMLInstructions)
	}
	if first.End != (models.Coordinates{Lat: 48.8590, Lng: 2.3410}) {
		t.Errorf("step should end where the next begins: %+v", first.End)
	}
	if second.HTMLInstructions != "Turn slight left onto Rue de Rivoli" {
		t.Errorf("unexpected instruction: %q", second.HTMLInstructions)
	}
	if second.Maneuver != "turn-left" {
		t.Errorf("unexpected maneuver: %q", second.Maneuver)
	}
	if second.End != (models.Coordinates{Lat: 48.8530, Lng: 2.3499}) {
		t.Errorf("last step should end at the arrive location: %+v", second.End)
	}
	if second.DistanceText != "1.1 km" {
		t.Errorf("unexpected distance text: %q", second.DistanceText)
	}
}

func TestOSRMProvider_Profiles(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(osrmOKBody))
	}))
	defer server.Close()

	p := &osrmProvider{baseURL: server.URL, httpClient: server.Client()}
	for _, mode := range []models.TravelMode{models.TravelModeWalking, models.TravelModeBicycling} {
		if _, err := p.Fetch(context.Background(), &FetchRequest{Mode: mode}); err != nil {
			t.Fatalf("mode %s: unexpected error: %v", mode, err)
		}
	}

	if !strings.HasPrefix(paths[0], "/route/v1/foot/") || !strings.HasPrefix(paths[1], "/route/v1/bike/") {
		t.Errorf("unexpected profiles: %v", paths)
	}
}

func TestOSRMProvider_TransitUnsupported(t *testing.T) {
	p := &osrmProvider{baseURL: "http://127.0.0.1:1", httpClient: http.DefaultClient}

	_, err := p.Fetch(context.Background(), &FetchRequest{Mode: models.TravelModeTransit})

	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOSRMProvider_ErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points"}`))
	}))
	defer server.Close()

	p := &osrmProvider{baseURL: server.URL, httpClient: server.Client()}
	_, err := p.Fetch(context.Background(), &FetchRequest{Mode: models.TravelModeDriving})

	var failed *ErrDirectionsFailed
	if !errors.As(err, &failed) {
		t.Fatalf("expected ErrDirectionsFailed, got %v", err)
	}
	if failed.Status != "NoRoute" {
		t.Errorf("unexpected status: %s", failed.Status)
	}
}

func TestOSRMProvider_RoadSnappingAndCache(t *testing.T) {
	calls := 0
	var lastQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		lastQuery = r.URL.RawQuery
		w.Write([]byte(osrmOKBody))
	}))
	defer server.Close()

	cache := newMemoryCache()
	p := &osrmProvider{baseURL: server.URL, httpClient: server.Client(), cache: cache}
	req := &FetchRequest{Mode: models.TravelModeDriving, RoadSnapping: true}

	if _, err := p.Fetch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(lastQuery, "continue_straight=true") {
		t.Errorf("expected road-snapping hint, got %s", lastQuery)
	}
	if _, err := p.Fetch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected second fetch to hit the cache, server called %d times", calls)
	}
}

func TestOSRMManeuverKeyword(t *testing.T) {
	tests := []struct {
		step osrmStep
		want models.ManeuverKind
	}{
		{osrmStep{Maneuver: osrmManeuver{Type: "turn", Modifier: "sharp right"}}, models.ManeuverTurnRight},
		{osrmStep{Maneuver: osrmManeuver{Type: "fork", Modifier: "left"}}, models.ManeuverTurnLeft},
		{osrmStep{Maneuver: osrmManeuver{Type: "continue", Modifier: "uturn"}}, models.ManeuverUTurn},
		{osrmStep{Maneuver: osrmManeuver{Type: "merge", Modifier: "slight left"}}, models.ManeuverMerge},
		{osrmStep{Maneuver: osrmManeuver{Type: "roundabout", Modifier: "left"}}, models.ManeuverRoundaboutLeft},
		{osrmStep{Maneuver: osrmManeuver{Type: "rotary", Modifier: "right"}}, models.ManeuverRoundaboutRight},
		{osrmStep{Mode: "ferry", Maneuver: osrmManeuver{Type: "turn", Modifier: "left"}}, models.ManeuverFerry},
		{osrmStep{Maneuver: osrmManeuver{Type: "depart"}}, models.ManeuverStraight},
		{osrmStep{Maneuver: osrmManeuver{Type: "new name", Modifier: "straight"}}, models.ManeuverStraight},
	}

	for _, tt := range tests {
		if got := NormalizeManeuver(osrmManeuverKeyword(tt.step)); got != tt.want {
			t.Errorf("%+v: got %s, want %s", tt.step.Maneuver, got, tt.want)
		}
	}
}

func TestAssemble_WithOSRMProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(osrmOKBody))
	}))
	defer server.Close()

	stops := []models.Stop{
		{ID: "1", Name: "Louvre", Coords: models.Coordinates{Lat: 48.8606, Lng: 2.3376}},
		{ID: "2", Name: "Notre-Dame", Coords: models.Coordinates{Lat: 48.8530, Lng: 2.3499}},
	}
	a := NewAssembler(NewOSRMProvider(OSRMConfig{BaseURL: server.URL}, nil))

	route, err := a.Assemble(context.Background(), stops, models.TravelModeDriving)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Degraded {
		t.Error("expected provider route")
	}
	if route.TotalDistanceText != "1.5 km" || route.TotalDurationText != "3 min" {
		t.Errorf("unexpected totals: %s %s", route.TotalDistanceText, route.TotalDurationText)
	}
	if len(route.Steps) != 2 || route.Steps[1].Maneuver != models.ManeuverTurnLeft {
		t.Errorf("unexpected steps: %+v", route.Steps)
	}
}
