package vectorstore

import (
	"context"
	"math"
	"sort"

	"planner-service/internal/models"
)

// Match is one stored record that is similar to a query vector.
type Match struct {
	ProjectID int64   `json:"project_id"`
	Facet     string  `json:"facet"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
}

// Store persists project embeddings and supports similarity search.
// Records are keyed by (project id, facet); writing the same key again
// replaces the previous record.
type Store interface {
	Name() string
	Upsert(ctx context.Context, records []models.ProjectEmbedding) error
	Search(ctx context.Context, vector []float64, threshold float64, limit int) ([]Match, error)
	DeleteProject(ctx context.Context, projectID int64) error
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length are compared over their common prefix.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank drops matches below threshold, orders the rest by descending score
// and keeps at most limit of them. limit <= 0 keeps everything.
func Rank(matches []Match, threshold float64, limit int) []Match {
	out := matches[:0]
	for _, m := range matches {
		if m.Score >= threshold {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
