package caches

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/services/cache"
	"planner-service/internal/storage"
)

// RedisCache keeps the collection under a single Redis key so that several
// service instances can share one local tier.
type RedisCache struct {
	client *storage.RedisClient
	key    string

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

func NewRedisCache(client *storage.RedisClient, prefix string) *RedisCache {
	key := cache.ProjectsKey
	if prefix = strings.TrimSuffix(prefix, ":"); prefix != "" {
		key = prefix + ":" + key
	}
	return &RedisCache{client: client, key: key}
}

func (rc *RedisCache) Name() string {
	return "REDIS"
}

func (rc *RedisCache) Load(ctx context.Context) ([]models.Project, error) {
	data, err := rc.client.GetBytes(ctx, rc.key)
	if err != nil {
		rc.misses.Add(1)
		return nil, errors.Wrap(err, "redis get")
	}
	if data == nil {
		rc.misses.Add(1)
		return []models.Project{}, nil
	}
	rc.hits.Add(1)
	return decodeProjects(data)
}

// Save stores the collection without expiry.
func (rc *RedisCache) Save(ctx context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	if err := rc.client.SetBytes(ctx, rc.key, data, 0); err != nil {
		return errors.Wrap(err, "redis set")
	}
	rc.writes.Add(1)
	return nil
}

func (rc *RedisCache) GetStats() cache.LayerStats {
	size, _ := rc.client.StrLen(context.Background(), rc.key)
	hits, misses := rc.hits.Load(), rc.misses.Load()
	return cache.LayerStats{
		Name:      "Redis",
		SizeBytes: size,
		Hits:      hits,
		Misses:    misses,
		HitRate:   cache.HitRate(hits, misses),
		Writes:    rc.writes.Load(),
	}
}
