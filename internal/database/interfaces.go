package database

import (
	"context"

	"trip-route-planner/internal/models"
)

// DataStore is the interface for local persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	DirectionsCache() DirectionsCacheRepository
}

// DirectionsCacheRepository handles directions response caching.
// Get returns nil, nil on a miss.
type DirectionsCacheRepository interface {
	Get(ctx context.Context, key string) (*models.DirectionsCacheEntry, error)
	Set(ctx context.Context, entry *models.DirectionsCacheEntry) error
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
