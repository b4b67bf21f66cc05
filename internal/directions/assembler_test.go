package directions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-route-planner/internal/models"
	"trip-route-planner/internal/polyline"
)

// stubProvider fails or succeeds per variant and records every request
type stubProvider struct {
	failSnapping bool
	failPrimary  bool
	response     *models.RawDirectionsResponse
	calls        []FetchRequest
}

func (p *stubProvider) Fetch(ctx context.Context, req *FetchRequest) (*models.RawDirectionsResponse, error) {
	p.calls = append(p.calls, *req)
	if (req.RoadSnapping && p.failSnapping) || (!req.RoadSnapping && p.failPrimary) {
		return nil, &ErrDirectionsFailed{Mode: req.Mode, Status: "ZERO_RESULTS", Reason: "stub"}
	}
	resp := *p.response
	return &resp, nil
}

func parisStops() []models.Stop {
	return []models.Stop{
		{ID: "1", Name: "Louvre", Coords: models.Coordinates{Lat: 48.8606, Lng: 2.3376}},
		{ID: "2", Name: "Notre-Dame", Coords: models.Coordinates{Lat: 48.8530, Lng: 2.3499}},
		{ID: "3", Name: "Panthéon", Coords: models.Coordinates{Lat: 48.8462, Lng: 2.3464}},
	}
}

func providerResponse() *models.RawDirectionsResponse {
	return &models.RawDirectionsResponse{
		Legs: []models.RawDirectionsLeg{
			{
				DistanceMeters: 1200,
				DurationSecs:   900,
				Steps: []models.RawDirectionsStep{
					{
						HTMLInstructions: "Head <b>east</b> on Quai du Louvre",
						DistanceText:     "1.2 km",
						DurationText:     "15 mins",
						Start:            models.Coordinates{Lat: 48.8607, Lng: 2.3377},
						End:              models.Coordinates{Lat: 48.8531, Lng: 2.3498},
					},
				},
			},
			{
				DistanceMeters: 900,
				DurationSecs:   720,
				Steps: []models.RawDirectionsStep{
					{
						HTMLInstructions: "Turn <b>right</b> onto Rue Saint-Jacques",
						DistanceText:     "0.5 km",
						DurationText:     "6 mins",
						Start:            models.Coordinates{Lat: 48.8531, Lng: 2.3498},
						End:              models.Coordinates{Lat: 48.8500, Lng: 2.3470},
						Maneuver:         "turn-right",
					},
					{
						HTMLInstructions: "Keep <b>left</b>",
						DistanceText:     "0.4 km",
						DurationText:     "6 mins",
						Start:            models.Coordinates{Lat: 48.8500, Lng: 2.3470},
						End:              models.Coordinates{Lat: 48.8463, Lng: 2.3465},
						Maneuver:         "keep-left",
					},
				},
			},
		},
		OverviewPolyline: polyline.Encode([]models.Coordinates{
			{Lat: 48.8606, Lng: 2.3376},
			{Lat: 48.8530, Lng: 2.3499},
			{Lat: 48.8462, Lng: 2.3464},
		}),
	}
}

func TestAssemble_InsufficientStops(t *testing.T) {
	a := NewAssembler(nil)

	_, err := a.Assemble(context.Background(), nil, models.TravelModeDriving)
	assert.True(t, errors.Is(err, ErrInsufficientStops))

	_, err = a.Assemble(context.Background(), parisStops()[:1], models.TravelModeDriving)
	assert.True(t, errors.Is(err, ErrInsufficientStops))
}

func TestAssemble_NilProviderUsesStraightLines(t *testing.T) {
	a := NewAssembler(nil)
	stops := parisStops()

	route, err := a.Assemble(context.Background(), stops, models.TravelModeWalking)

	require.NoError(t, err)
	assert.True(t, route.Degraded)
	assert.Equal(t, models.TravelModeWalking, route.TravelMode)
	require.Len(t, route.Steps, len(stops)-1)
	assert.Equal(t, "Walk to Notre-Dame", route.Steps[0].Instruction)
	assert.Equal(t, "Continue to Panthéon", route.Steps[1].Instruction)
	assert.Equal(t, models.ManeuverDepart, route.Steps[0].Maneuver)
	assert.Equal(t, models.ManeuverArrive, route.Steps[1].Maneuver)
}

func TestAssemble_AllTiersFailFallsBackToStraightLines(t *testing.T) {
	provider := &stubProvider{failSnapping: true, failPrimary: true}
	a := NewAssembler(provider)
	stops := parisStops()

	route, err := a.Assemble(context.Background(), stops, models.TravelModeDriving)

	require.NoError(t, err)
	require.Len(t, provider.calls, 2, "each tier is tried exactly once")
	assert.True(t, provider.calls[0].RoadSnapping)
	assert.False(t, provider.calls[1].RoadSnapping)

	assert.True(t, route.Degraded)
	require.Len(t, route.Steps, len(stops)-1)
	assert.Equal(t, models.ManeuverDepart, route.Steps[0].Maneuver)
	assert.Equal(t, models.ManeuverArrive, route.Steps[len(route.Steps)-1].Maneuver)
	assert.Equal(t, "Drive to Notre-Dame", route.Steps[0].Instruction)

	assert.True(t, polyline.IsDelimited(route.Polyline))
	points, err := polyline.Parse(route.Polyline)
	require.NoError(t, err)
	require.Len(t, points, len(stops))
	for i, s := range stops {
		assert.InDelta(t, s.Coords.Lat, points[i].Lat, 1e-9)
		assert.InDelta(t, s.Coords.Lng, points[i].Lng, 1e-9)
	}
	assert.Equal(t, points, route.PathPoints)
}

func TestAssemble_FallbackStepsChainStops(t *testing.T) {
	stops := parisStops()
	route, err := NewAssembler(nil).Assemble(context.Background(), stops, models.TravelModeTransit)
	require.NoError(t, err)

	for i, step := range route.Steps {
		assert.Equal(t, stops[i].Coords, step.Start)
		assert.Equal(t, stops[i+1].Coords, step.End)
		assert.NotEmpty(t, step.DistanceText)
		assert.NotEmpty(t, step.DurationText)
	}
	assert.Equal(t, "Go to Notre-Dame", route.Steps[0].Instruction)
}

func TestAssemble_SingleSegmentFallbackIsDepart(t *testing.T) {
	stops := parisStops()[:2]

	route, err := NewAssembler(nil).Assemble(context.Background(), stops, models.TravelModeBicycling)

	require.NoError(t, err)
	require.Len(t, route.Steps, 1)
	assert.Equal(t, models.ManeuverDepart, route.Steps[0].Maneuver)
	assert.Equal(t, "Bike to Notre-Dame", route.Steps[0].Instruction)
}

func TestAssemble_RoadSnappingSuccess(t *testing.T) {
	provider := &stubProvider{response: providerResponse()}
	a := NewAssembler(provider)
	stops := parisStops()

	route, err := a.Assemble(context.Background(), stops, models.TravelModeDriving)

	require.NoError(t, err)
	require.Len(t, provider.calls, 1)
	assert.True(t, provider.calls[0].RoadSnapping)
	assert.Equal(t, stops[0].Coords, provider.calls[0].Origin)
	assert.Equal(t, stops[2].Coords, provider.calls[0].Destination)
	assert.Equal(t, []models.Coordinates{stops[1].Coords}, provider.calls[0].Waypoints)

	assert.False(t, route.Degraded)
	assert.Equal(t, "2.1 km", route.TotalDistanceText)
	assert.Equal(t, "27 min", route.TotalDurationText)
	require.Len(t, route.Steps, 3)
	assert.Equal(t, "Head east on Quai du Louvre", route.Steps[0].Instruction)
	assert.Equal(t, models.ManeuverStraight, route.Steps[0].Maneuver)
	assert.Equal(t, models.ManeuverTurnRight, route.Steps[1].Maneuver)
	assert.Equal(t, models.ManeuverTurnLeft, route.Steps[2].Maneuver)
	assert.Len(t, route.PathPoints, 3)
}

func TestAssemble_RouteStartsAndEndsAtStops(t *testing.T) {
	provider := &stubProvider{response: providerResponse()}
	stops := parisStops()

	route, err := NewAssembler(provider).Assemble(context.Background(), stops, models.TravelModeDriving)

	require.NoError(t, err)
	assert.Equal(t, stops[0].Coords, route.Steps[0].Start)
	assert.Equal(t, stops[len(stops)-1].Coords, route.Steps[len(route.Steps)-1].End)
}

func TestAssemble_SnappingFailsPrimarySucceeds(t *testing.T) {
	provider := &stubProvider{failSnapping: true, response: providerResponse()}

	route, err := NewAssembler(provider).Assemble(context.Background(), parisStops(), models.TravelModeTransit)

	require.NoError(t, err)
	require.Len(t, provider.calls, 2)
	assert.True(t, provider.calls[0].RoadSnapping)
	assert.False(t, provider.calls[1].RoadSnapping)
	assert.False(t, route.Degraded)
	assert.Equal(t, models.TravelModeTransit, route.TravelMode)
}

func TestAssemble_InvalidPolylineFallsThrough(t *testing.T) {
	resp := providerResponse()
	resp.OverviewPolyline = "_p~iF\x01"
	provider := &stubProvider{response: resp}

	route, err := NewAssembler(provider).Assemble(context.Background(), parisStops(), models.TravelModeDriving)

	require.NoError(t, err)
	assert.Len(t, provider.calls, 2)
	assert.True(t, route.Degraded)
}

func TestAssemble_EmptyResponseFallsThrough(t *testing.T) {
	provider := &stubProvider{response: &models.RawDirectionsResponse{}}

	route, err := NewAssembler(provider).Assemble(context.Background(), parisStops(), models.TravelModeDriving)

	require.NoError(t, err)
	assert.Len(t, provider.calls, 2)
	assert.True(t, route.Degraded)
}

func TestErrDirectionsFailed_UnwrapsToProviderUnavailable(t *testing.T) {
	err := error(&ErrDirectionsFailed{Mode: models.TravelModeDriving, Status: "OVER_QUERY_LIMIT", Reason: "quota"})

	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
}
