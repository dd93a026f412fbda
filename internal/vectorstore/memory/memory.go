package memory

import (
	"context"
	"sync"

	"planner-service/internal/models"
	"planner-service/internal/vectorstore"
)

type key struct {
	projectID int64
	facet     string
}

// Storage is an in-process vector store using brute-force cosine similarity.
type Storage struct {
	mu      sync.RWMutex
	records map[key]models.ProjectEmbedding
}

func NewStorage() *Storage {
	return &Storage{records: make(map[key]models.ProjectEmbedding)}
}

func (s *Storage) Name() string { return "memory" }

func (s *Storage) Upsert(_ context.Context, records []models.ProjectEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[key{r.ProjectID, r.Facet}] = r
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, threshold float64, limit int) ([]vectorstore.Match, error) {
	s.mu.RLock()
	matches := make([]vectorstore.Match, 0, len(s.records))
	for _, r := range s.records {
		matches = append(matches, vectorstore.Match{
			ProjectID: r.ProjectID,
			Facet:     r.Facet,
			Content:   r.Content,
			Score:     vectorstore.Cosine(r.Vector, vector),
		})
	}
	s.mu.RUnlock()
	return vectorstore.Rank(matches, threshold, limit), nil
}

func (s *Storage) DeleteProject(_ context.Context, projectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.records {
		if k.projectID == projectID {
			delete(s.records, k)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
