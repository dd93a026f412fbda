package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"planner-service/internal/models"
)

// Migrate creates or updates the projects and project_embeddings tables.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&models.Project{}, &models.ProjectEmbedding{}), "auto-migrate")
}
