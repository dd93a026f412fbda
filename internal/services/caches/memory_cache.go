package caches

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/services/cache"
)

// MemoryCache keeps the encoded collection in process memory. Values are
// stored encoded so callers never share slices with the cache.
type MemoryCache struct {
	mu      sync.RWMutex
	data    []byte
	objects int

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (mc *MemoryCache) Name() string {
	return "MEMORY"
}

func (mc *MemoryCache) Load(_ context.Context) ([]models.Project, error) {
	mc.mu.RLock()
	data := mc.data
	mc.mu.RUnlock()

	if data == nil {
		mc.misses.Add(1)
		return []models.Project{}, nil
	}
	mc.hits.Add(1)
	return decodeProjects(data)
}

func (mc *MemoryCache) Save(_ context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	mc.data = data
	mc.objects = len(projects)
	mc.mu.Unlock()
	mc.writes.Add(1)
	return nil
}

func (mc *MemoryCache) GetStats() cache.LayerStats {
	mc.mu.RLock()
	size, objects := int64(len(mc.data)), mc.objects
	mc.mu.RUnlock()

	hits, misses := mc.hits.Load(), mc.misses.Load()
	return cache.LayerStats{
		Name:      "Memory",
		Objects:   objects,
		SizeBytes: size,
		Hits:      hits,
		Misses:    misses,
		HitRate:   cache.HitRate(hits, misses),
		Writes:    mc.writes.Load(),
	}
}

func encodeProjects(projects []models.Project) ([]byte, error) {
	if projects == nil {
		projects = []models.Project{}
	}
	data, err := json.Marshal(projects)
	return data, errors.Wrap(err, "encode projects")
}

func decodeProjects(data []byte) ([]models.Project, error) {
	projects := []models.Project{}
	if len(data) == 0 {
		return projects, nil
	}
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, errors.Wrap(err, "decode projects")
	}
	return projects, nil
}
