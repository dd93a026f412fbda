package caches

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/services/cache"
)

// FileSystemCache keeps the collection as a JSON document on disk.
// Writes go to a temporary file that is renamed over the old one.
type FileSystemCache struct {
	path string
	mu   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

func NewFileSystemCache(path string) (*FileSystemCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory for %s", path)
	}
	return &FileSystemCache{path: path}, nil
}

func (fsc *FileSystemCache) Name() string {
	return "FILESYSTEM"
}

func (fsc *FileSystemCache) Load(_ context.Context) ([]models.Project, error) {
	fsc.mu.RLock()
	data, err := os.ReadFile(fsc.path)
	fsc.mu.RUnlock()

	if os.IsNotExist(err) {
		fsc.misses.Add(1)
		return []models.Project{}, nil
	}
	if err != nil {
		fsc.misses.Add(1)
		return nil, errors.Wrap(err, "read cache file")
	}
	fsc.hits.Add(1)
	return decodeProjects(data)
}

func (fsc *FileSystemCache) Save(_ context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}

	fsc.mu.Lock()
	defer fsc.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(fsc.path), ".projects-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp cache file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp cache file")
	}
	if err := os.Rename(tmp.Name(), fsc.path); err != nil {
		return errors.Wrap(err, "replace cache file")
	}
	fsc.writes.Add(1)
	return nil
}

func (fsc *FileSystemCache) GetStats() cache.LayerStats {
	var size int64
	objects := 0
	fsc.mu.RLock()
	if data, err := os.ReadFile(fsc.path); err == nil {
		size = int64(len(data))
		if projects, err := decodeProjects(data); err == nil {
			objects = len(projects)
		}
	}
	fsc.mu.RUnlock()

	hits, misses := fsc.hits.Load(), fsc.misses.Load()
	return cache.LayerStats{
		Name:      "FileSystem",
		Objects:   objects,
		SizeBytes: size,
		Hits:      hits,
		Misses:    misses,
		HitRate:   cache.HitRate(hits, misses),
		Writes:    fsc.writes.Load(),
	}
}
