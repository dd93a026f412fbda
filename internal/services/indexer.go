package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"planner-service/internal/embedding"
	"planner-service/internal/models"
	"planner-service/internal/vectorstore"
)

const (
	DefaultSimilarityThreshold = 0.5
	DefaultSimilarLimit        = 5
)

// SimilarProject is a project id with its best similarity score.
type SimilarProject struct {
	ProjectID int64   `json:"project_id"`
	Facet     string  `json:"facet"`
	Score     float64 `json:"score"`
}

// IndexDocument is one text fragment of a project that gets embedded.
type IndexDocument struct {
	Facet   string
	Content string
}

// VectorIndexer keeps project embeddings in a vector store and answers
// similarity queries.
type VectorIndexer struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	threshold float64
	logger    *slog.Logger
	now       func() time.Time
}

func NewVectorIndexer(embedder embedding.Embedder, store vectorstore.Store, threshold float64, logger *slog.Logger) *VectorIndexer {
	return &VectorIndexer{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// IndexDocuments lists the fragments of p worth embedding.
func IndexDocuments(p *models.Project) []IndexDocument {
	docs := []IndexDocument{{
		Facet:   models.EmbeddingFacetDescription,
		Content: p.Title + " - " + p.Description,
	}}
	if strings.TrimSpace(p.BusinessIdea) != "" {
		docs = append(docs, IndexDocument{Facet: models.EmbeddingFacetBusinessIdea, Content: p.BusinessIdea})
	}
	if p.AIAnalysis != nil && strings.TrimSpace(p.AIAnalysis.Summary) != "" {
		docs = append(docs, IndexDocument{Facet: models.EmbeddingFacetAIAnalysis, Content: p.AIAnalysis.Summary})
	}
	return docs
}

// IndexProject embeds and stores every fragment of p, replacing earlier
// records of the same facet. It stops at the first failure; records
// written before it are kept.
func (i *VectorIndexer) IndexProject(ctx context.Context, p *models.Project) error {
	for _, doc := range IndexDocuments(p) {
		vec, err := i.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return errors.Wrapf(err, "embed %s of project %d", doc.Facet, p.ID)
		}
		record := models.ProjectEmbedding{
			ID:        models.EmbeddingID(p.ID, doc.Facet),
			ProjectID: p.ID,
			Facet:     doc.Facet,
			Content:   doc.Content,
			Vector:    vec,
			CreatedAt: i.now().UTC(),
		}
		if err := i.store.Upsert(ctx, []models.ProjectEmbedding{record}); err != nil {
			return errors.Wrapf(err, "store %s embedding of project %d", doc.Facet, p.ID)
		}
	}
	i.logger.Debug("project indexed", "project_id", p.ID, "store", i.store.Name())
	return nil
}

// SearchSimilar returns at most limit projects whose fragments are close
// to query, best first.
func (i *VectorIndexer) SearchSimilar(ctx context.Context, query string, limit int) ([]SimilarProject, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}
	// a project has up to three fragments
	matches, err := i.store.Search(ctx, vec, i.threshold, limit*3)
	if err != nil {
		return nil, errors.Wrap(err, "search embeddings")
	}

	seen := make(map[int64]bool, len(matches))
	out := make([]SimilarProject, 0, limit)
	for _, m := range matches {
		if seen[m.ProjectID] {
			continue
		}
		seen[m.ProjectID] = true
		out = append(out, SimilarProject{ProjectID: m.ProjectID, Facet: m.Facet, Score: m.Score})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (i *VectorIndexer) RemoveProject(ctx context.Context, projectID int64) error {
	return i.store.DeleteProject(ctx, projectID)
}
