package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Facet names used as the content type of an embedding record.
const (
	EmbeddingFacetDescription  = "description"
	EmbeddingFacetBusinessIdea = "business_idea"
	EmbeddingFacetAIAnalysis   = "ai_analysis"
)

var embeddingNamespace = uuid.MustParse("6f1c3a2e-8d4b-4f7a-9e21-3c5d7b9a0f14")

// ProjectEmbedding is one vectorised text fragment of a project. There is
// at most one record per (project, facet) pair.
type ProjectEmbedding struct {
	ID        uuid.UUID                    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID int64                        `json:"project_id" gorm:"not null;uniqueIndex:idx_embedding_project_facet"`
	Facet     string                       `json:"facet" gorm:"type:varchar(32);not null;uniqueIndex:idx_embedding_project_facet"`
	Content   string                       `json:"content" gorm:"type:text"`
	Vector    datatypes.JSONSlice[float64] `json:"vector" gorm:"type:jsonb"`
	CreatedAt time.Time                    `json:"created_at"`
}

// EmbeddingID derives the stable record id for a (project, facet) pair.
func EmbeddingID(projectID int64, facet string) uuid.UUID {
	return uuid.NewSHA1(embeddingNamespace, []byte(fmt.Sprintf("%d:%s", projectID, facet)))
}
