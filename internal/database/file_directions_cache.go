package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"trip-route-planner/internal/models"
)

// FileDirectionsCacheData represents the structure of the cache file
type FileDirectionsCacheData struct {
	Entries []models.DirectionsCacheEntry `json:"entries"`
}

// FileDirectionsCache is a file-based implementation of DirectionsCacheRepository
type FileDirectionsCache struct {
	filePath string
	data     *FileDirectionsCacheData
	index    map[string]int // key -> position in Entries
	mu       sync.RWMutex
}

// NewFileDirectionsCache opens or creates the JSON cache file at filePath
func NewFileDirectionsCache(filePath string) (*FileDirectionsCache, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	log.Printf("Using directions cache file: %s", filePath)

	cache := &FileDirectionsCache{
		filePath: filePath,
		data:     &FileDirectionsCacheData{Entries: []models.DirectionsCacheEntry{}},
		index:    make(map[string]int),
	}

	if err := cache.load(); err != nil {
		return nil, err
	}

	return cache, nil
}

func (c *FileDirectionsCache) load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveUnlocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, c.data); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}
	if c.data.Entries == nil {
		c.data.Entries = []models.DirectionsCacheEntry{}
	}

	c.rebuildIndex()

	log.Printf("Loaded directions cache: %d entries", len(c.data.Entries))
	return nil
}

func (c *FileDirectionsCache) saveUnlocked() error {
	data, err := json.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	tmpFile := c.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}

	if err := os.Rename(tmpFile, c.filePath); err != nil {
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}

	return nil
}

func (c *FileDirectionsCache) Get(ctx context.Context, key string) (*models.DirectionsCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.index[key]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot modify cache data without the lock
	entryCopy := c.data.Entries[idx]
	return &entryCopy, nil
}

func (c *FileDirectionsCache) Set(ctx context.Context, entry *models.DirectionsCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.index[entry.Key]; ok {
		c.data.Entries[idx] = *entry
		return c.saveUnlocked()
	}

	c.data.Entries = append(c.data.Entries, *entry)
	c.index[entry.Key] = len(c.data.Entries) - 1
	return c.saveUnlocked()
}

func (c *FileDirectionsCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.index[key]
	if !ok {
		return ErrNotFound
	}

	c.data.Entries = append(c.data.Entries[:idx], c.data.Entries[idx+1:]...)
	c.rebuildIndex()
	return c.saveUnlocked()
}

func (c *FileDirectionsCache) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data.Entries), nil
}

func (c *FileDirectionsCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data.Entries = []models.DirectionsCacheEntry{}
	c.index = make(map[string]int)
	return c.saveUnlocked()
}

// rebuildIndex must be called with the mutex held
func (c *FileDirectionsCache) rebuildIndex() {
	c.index = make(map[string]int, len(c.data.Entries))
	for i := range c.data.Entries {
		c.index[c.data.Entries[i].Key] = i
	}
}

// FileStore is a DataStore backed by the JSON directions cache
type FileStore struct {
	cache *FileDirectionsCache
}

// NewFileStore creates a file-backed store
func NewFileStore(filePath string) (*FileStore, error) {
	cache, err := NewFileDirectionsCache(filePath)
	if err != nil {
		return nil, err
	}
	return &FileStore{cache: cache}, nil
}

func (s *FileStore) Close() error { return nil }

// HealthCheck verifies the cache directory is still reachable
func (s *FileStore) HealthCheck(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.cache.filePath))
	return err
}

func (s *FileStore) DirectionsCache() DirectionsCacheRepository { return s.cache }
