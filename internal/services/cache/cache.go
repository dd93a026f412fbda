package cache

import (
	"context"

	"planner-service/internal/models"
)

// ProjectsKey is the fixed key under which the whole project collection is kept.
const ProjectsKey = "projects"

// ProjectCache is the local tier of project storage. It holds the whole
// collection as one value: Load returns everything, Save replaces everything.
// A missing collection loads as an empty slice.
type ProjectCache interface {
	Name() string
	Load(ctx context.Context) ([]models.Project, error)
	Save(ctx context.Context, projects []models.Project) error
	GetStats() LayerStats
}

type LayerStats struct {
	Name      string  `json:"name"`
	Objects   int     `json:"objects"`
	SizeBytes int64   `json:"sizeBytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	Writes    int64   `json:"writes"`
}

// HitRate computes the hit percentage.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
