package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-route-planner/internal/models"
)

func sampleEntry(key string, meters int) *models.DirectionsCacheEntry {
	return &models.DirectionsCacheEntry{
		Key:  key,
		Mode: models.TravelModeDriving,
		Response: models.RawDirectionsResponse{
			Legs: []models.RawDirectionsLeg{{
				DistanceMeters: meters,
				DurationSecs:   120,
				Steps: []models.RawDirectionsStep{{
					HTMLInstructions: "Head <b>north</b>",
					DistanceText:     "1.2 km",
					DurationText:     "2 mins",
					Start:            models.Coordinates{Lat: 1, Lng: 2},
					End:              models.Coordinates{Lat: 3, Lng: 4},
					Maneuver:         "turn-left",
				}},
			}},
			OverviewPolyline: "_p~iF~ps|U",
		},
	}
}

func TestFileDirectionsCache_SetGet(t *testing.T) {
	cache, err := NewFileDirectionsCache(filepath.Join(t.TempDir(), "directions.json"))
	require.NoError(t, err)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "driving:primary:1,2;3,4")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, sampleEntry("k1", 1200)))

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *sampleEntry("k1", 1200), *got)
}

func TestFileDirectionsCache_OverwriteKeepsSingleEntry(t *testing.T) {
	cache, err := NewFileDirectionsCache(filepath.Join(t.TempDir(), "directions.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleEntry("k1", 1200)))
	require.NoError(t, cache.Set(ctx, sampleEntry("k1", 3400)))

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 3400, got.Response.Legs[0].DistanceMeters)
}

func TestFileDirectionsCache_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directions.json")
	ctx := context.Background()

	first, err := NewFileDirectionsCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, sampleEntry("k1", 1200)))
	require.NoError(t, first.Set(ctx, sampleEntry("k2", 800)))

	second, err := NewFileDirectionsCache(path)
	require.NoError(t, err)

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := second.Get(ctx, "k2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 800, got.Response.Legs[0].DistanceMeters)
}

func TestFileDirectionsCache_DeleteAndClear(t *testing.T) {
	cache, err := NewFileDirectionsCache(filepath.Join(t.TempDir(), "directions.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleEntry("k1", 1)))
	require.NoError(t, cache.Set(ctx, sampleEntry("k2", 2)))
	require.NoError(t, cache.Set(ctx, sampleEntry("k3", 3)))

	require.NoError(t, cache.Delete(ctx, "k1"))
	assert.ErrorIs(t, cache.Delete(ctx, "k1"), ErrNotFound)

	// Index must still resolve entries that shifted position.
	got, err := cache.Get(ctx, "k3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Response.Legs[0].DistanceMeters)

	require.NoError(t, cache.Clear(ctx))
	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "cache", "directions.json"))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.HealthCheck(context.Background()))
	assert.NotNil(t, store.DirectionsCache())
}
