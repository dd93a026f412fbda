package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"planner-service/internal/models"
	"planner-service/internal/vectorstore"
)

// EmbeddingRepositoryImpl keeps project embeddings in the project_embeddings
// table. Vectors are stored as JSON and compared in process.
type EmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepositoryImpl {
	return &EmbeddingRepositoryImpl{db: db}
}

func (r *EmbeddingRepositoryImpl) Name() string { return "postgres" }

// Upsert writes the records, replacing any existing record with the same
// (project_id, facet).
func (r *EmbeddingRepositoryImpl) Upsert(ctx context.Context, records []models.ProjectEmbedding) error {
	if r.db == nil {
		return ErrUnavailable
	}
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.ProjectEmbedding, len(records))
	for i, rec := range records {
		rec.ID = models.EmbeddingID(rec.ProjectID, rec.Facet)
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rows[i] = rec
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "facet"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "vector", "created_at"}),
	}).Create(&rows).Error
	return errors.Wrap(err, "upsert embeddings")
}

// Search scores every stored vector against the query.
func (r *EmbeddingRepositoryImpl) Search(ctx context.Context, vector []float64, threshold float64, limit int) ([]vectorstore.Match, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}
	var rows []models.ProjectEmbedding
	if err := r.db.WithContext(ctx).Select("project_id", "facet", "content", "vector").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load embeddings")
	}
	matches := make([]vectorstore.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, vectorstore.Match{
			ProjectID: row.ProjectID,
			Facet:     row.Facet,
			Content:   row.Content,
			Score:     vectorstore.Cosine(row.Vector, vector),
		})
	}
	return vectorstore.Rank(matches, threshold, limit), nil
}

func (r *EmbeddingRepositoryImpl) DeleteProject(ctx context.Context, projectID int64) error {
	if r.db == nil {
		return ErrUnavailable
	}
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectEmbedding{}).Error
	return errors.Wrapf(err, "delete embeddings of project %d", projectID)
}
