package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"planner-service/internal/models"
)

// ProjectRepository is the durable store for projects.
type ProjectRepository interface {
	Ping(ctx context.Context) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	GetProjectsByIDs(ctx context.Context, ids []int64) ([]models.Project, error)
	ProjectExists(ctx context.Context, id int64) (bool, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id int64) error
	SearchProjects(ctx context.Context, query string) ([]models.Project, error)
}

// ProjectRepositoryImpl stores projects in Postgres through GORM. A nil
// database makes every call fail with ErrUnavailable.
type ProjectRepositoryImpl struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository with the provided GORM database connection.
func NewProjectRepository(db *gorm.DB) *ProjectRepositoryImpl {
	return &ProjectRepositoryImpl{db: db}
}

// Ping checks that the database server answers. It does not require the
// schema to exist yet.
func (r *ProjectRepositoryImpl) Ping(ctx context.Context) error {
	if r.db == nil {
		return ErrUnavailable
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get database handle")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

// ListProjects retrieves all projects, newest first.
func (r *ProjectRepositoryImpl) ListProjects(ctx context.Context) ([]models.Project, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}
	var projects []models.Project
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	return projects, nil
}

// GetProject retrieves a project by its id.
func (r *ProjectRepositoryImpl) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get project %d", id)
	}
	return &project, nil
}

// GetProjectsByIDs retrieves every project whose id is in ids.
func (r *ProjectRepositoryImpl) GetProjectsByIDs(ctx context.Context, ids []int64) ([]models.Project, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []models.Project
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "get projects by ids")
	}
	return projects, nil
}

func (r *ProjectRepositoryImpl) ProjectExists(ctx context.Context, id int64) (bool, error) {
	if r.db == nil {
		return false, ErrUnavailable
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "check project %d", id)
	}
	return count > 0, nil
}

// CreateProject inserts a new project.
func (r *ProjectRepositoryImpl) CreateProject(ctx context.Context, project *models.Project) error {
	if r.db == nil {
		return ErrUnavailable
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(project).Error, "create project")
}

// UpdateProject overwrites every column of an existing project. It does
// not insert: a missing row yields ErrNotFound.
func (r *ProjectRepositoryImpl) UpdateProject(ctx context.Context, project *models.Project) error {
	if r.db == nil {
		return ErrUnavailable
	}
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).Select("*").Updates(project)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update project %d", project.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject deletes a project by its id. Deleting a missing row is not an error.
func (r *ProjectRepositoryImpl) DeleteProject(ctx context.Context, id int64) error {
	if r.db == nil {
		return ErrUnavailable
	}
	return errors.Wrapf(r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error, "delete project %d", id)
}

// SearchProjects matches query case-insensitively against title,
// description and business idea, newest first.
func (r *ProjectRepositoryImpl) SearchProjects(ctx context.Context, query string) ([]models.Project, error) {
	if r.db == nil {
		return nil, ErrUnavailable
	}
	pattern := "%" + escapeLike(query) + "%"
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ? OR business_idea ILIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, errors.Wrap(err, "search projects")
	}
	return projects, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
