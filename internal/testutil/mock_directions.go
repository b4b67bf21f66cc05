package testutil

import (
	"context"
	"sync"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/directions"
	"trip-route-planner/internal/models"
)

// MockDirectionsProvider is a directions.Provider for tests.
// Each variant (road-snapping or primary) can be told to fail independently.
type MockDirectionsProvider struct {
	FailRoadSnapping bool
	FailPrimary      bool
	// Response is returned for successful calls. When nil a one-step route
	// between origin and destination is synthesized.
	Response *models.RawDirectionsResponse

	mu    sync.Mutex
	Calls []directions.FetchRequest
}

func NewMockDirectionsProvider() *MockDirectionsProvider {
	return &MockDirectionsProvider{}
}

// NewFailingDirectionsProvider returns a provider whose every call fails
func NewFailingDirectionsProvider() *MockDirectionsProvider {
	return &MockDirectionsProvider{FailRoadSnapping: true, FailPrimary: true}
}

func (m *MockDirectionsProvider) Fetch(ctx context.Context, req *directions.FetchRequest) (*models.RawDirectionsResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, *req)
	m.mu.Unlock()

	if (req.RoadSnapping && m.FailRoadSnapping) || (!req.RoadSnapping && m.FailPrimary) {
		return nil, &directions.ErrDirectionsFailed{Mode: req.Mode, Status: "UNAVAILABLE", Reason: "mock failure"}
	}

	if m.Response != nil {
		resp := *m.Response
		return &resp, nil
	}

	return &models.RawDirectionsResponse{
		Legs: []models.RawDirectionsLeg{{
			DistanceMeters: 1500,
			DurationSecs:   300,
			Steps: []models.RawDirectionsStep{{
				HTMLInstructions: "Head <b>north</b>",
				DistanceText:     "1.5 km",
				DurationText:     "5 mins",
				Start:            req.Origin,
				End:              req.Destination,
				Maneuver:         "straight",
			}},
		}},
		OverviewPolyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
	}, nil
}

// CallCount returns how many Fetch calls have been recorded
func (m *MockDirectionsProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ResetCalls clears the recorded calls
func (m *MockDirectionsProvider) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// MockDirectionsCache is an in-memory database.DirectionsCacheRepository
type MockDirectionsCache struct {
	mu      sync.Mutex
	entries map[string]*models.DirectionsCacheEntry
}

func NewMockDirectionsCache() *MockDirectionsCache {
	return &MockDirectionsCache{
		entries: make(map[string]*models.DirectionsCacheEntry),
	}
}

func (c *MockDirectionsCache) Get(ctx context.Context, key string) (*models.DirectionsCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		return entry, nil
	}
	return nil, nil
}

func (c *MockDirectionsCache) Set(ctx context.Context, entry *models.DirectionsCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	return nil
}

func (c *MockDirectionsCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return database.ErrNotFound
	}
	delete(c.entries, key)
	return nil
}

func (c *MockDirectionsCache) Count(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}

func (c *MockDirectionsCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*models.DirectionsCacheEntry)
	return nil
}

// MockDataStore is a database.DataStore backed by a MockDirectionsCache
type MockDataStore struct {
	Cache     *MockDirectionsCache
	HealthErr error
}

func NewMockDataStore() *MockDataStore {
	return &MockDataStore{Cache: NewMockDirectionsCache()}
}

func (s *MockDataStore) Close() error                                        { return nil }
func (s *MockDataStore) HealthCheck(ctx context.Context) error               { return s.HealthErr }
func (s *MockDataStore) DirectionsCache() database.DirectionsCacheRepository { return s.Cache }
