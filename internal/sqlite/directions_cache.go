package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/models"
)

type directionsCacheRepository struct {
	store *Store
}

func (r *directionsCacheRepository) Get(ctx context.Context, key string) (*models.DirectionsCacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var mode, payload string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT mode, response_json FROM directions_cache WHERE cache_key = ?`, key,
	).Scan(&mode, &payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get directions cache entry: %w", err)
	}

	entry := &models.DirectionsCacheEntry{Key: key, Mode: models.TravelMode(mode)}
	if err := json.Unmarshal([]byte(payload), &entry.Response); err != nil {
		return nil, fmt.Errorf("failed to decode cached directions: %w", err)
	}

	return entry, nil
}

func (r *directionsCacheRepository) Set(ctx context.Context, entry *models.DirectionsCacheEntry) error {
	payload, err := json.Marshal(entry.Response)
	if err != nil {
		return fmt.Errorf("failed to encode directions: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query := `INSERT OR REPLACE INTO directions_cache (cache_key, mode, response_json)
	          VALUES (?, ?, ?)`

	if _, err := r.store.db.ExecContext(ctx, query, entry.Key, string(entry.Mode), string(payload)); err != nil {
		return fmt.Errorf("failed to set directions cache entry: %w", err)
	}

	return nil
}

func (r *directionsCacheRepository) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result, err := r.store.db.ExecContext(ctx, `DELETE FROM directions_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete directions cache entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return database.ErrNotFound
	}

	return nil
}

func (r *directionsCacheRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM directions_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count directions cache entries: %w", err)
	}
	return count, nil
}

func (r *directionsCacheRepository) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := r.store.db.ExecContext(ctx, "DELETE FROM directions_cache"); err != nil {
		return fmt.Errorf("failed to clear directions cache: %w", err)
	}

	return nil
}
