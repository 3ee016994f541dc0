package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// ProjectFilter narrows FindAll. Zero values match everything.
type ProjectFilter struct {
	Technology string
	Level      string
	FounderID  uuid.UUID
	Limit      int
	Offset     int
}

const defaultProjectLimit = 50

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns projects matching filter, newest first
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query := r.db.WithContext(ctx).Preload("Technologies")

	if filter.Technology != "" {
		query = query.Where("id IN (?)",
			r.db.Model(&models.ProjectTag{}).Select("project_id").Where("value = ?", filter.Technology))
	}
	if filter.Level != "" {
		levels, err := json.Marshal([]string{filter.Level})
		if err != nil {
			return nil, errs.NewInvalidFieldError("level", err.Error())
		}
		query = query.Where("levels @> ?::jsonb", string(levels))
	}
	if filter.FounderID != uuid.Nil {
		query = query.Where("founder_id = ?", filter.FounderID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProjectLimit
	}

	var projects []*models.Project
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return projects, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Technologies").First(&project, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return &project, nil
}

// FindBySlug returns a project by its slug
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Technologies").First(&project, "slug = ?", slug).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return &project, nil
}

// FindByFounder returns every project founded by founderID
func (r *ProjectRepo) FindByFounder(ctx context.Context, founderID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Preload("Technologies").
		Where("founder_id = ?", founderID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return projects, nil
}

// FindByIDs returns the projects whose IDs are listed; missing IDs are skipped
func (r *ProjectRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	if len(ids) == 0 {
		return projects, nil
	}
	err := r.db.WithContext(ctx).Preload("Technologies").Where("id IN ?", ids).Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return projects, nil
}

// Add inserts a new project together with its technology tags
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	if project.Version == 0 {
		project.Version = 1
	}
	for i := range project.Technologies {
		project.Technologies[i].ProjectID = project.ID
		if project.Technologies[i].ID == uuid.Nil {
			project.Technologies[i].ID = uuid.New()
		}
	}
	err := r.db.WithContext(ctx).Create(project).Error
	if err == nil {
		return nil
	}
	if constraint, ok := errs.UniqueViolation(err); ok && constraint == "idx_projects_slug" {
		return errs.NewAlreadyExists("project", "slug")
	}
	return errs.NewDatabaseError("create", "project", err)
}

// Update writes project's fields and replaces its tags if the stored version still
// equals expectedVersion, then advances project.Version.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project, expectedVersion int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("id = ? AND version = ?", project.ID, expectedVersion).
			Updates(map[string]any{
				"title":       project.Title,
				"description": project.Description,
				"levels":      project.Levels,
				"version":     expectedVersion + 1,
			})
		if res.Error != nil {
			return errs.NewDatabaseError("update", "project", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Count(&count).Error; err != nil {
				return errs.NewDatabaseError("find", "project", err)
			}
			if count == 0 {
				return errs.NewNotFound("project")
			}
			return errs.NewStaleWrite("project", expectedVersion)
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectTag{}).Error; err != nil {
			return errs.NewDatabaseError("delete", "project tags", err)
		}
		for i := range project.Technologies {
			project.Technologies[i].ProjectID = project.ID
			if project.Technologies[i].ID == uuid.Nil {
				project.Technologies[i].ID = uuid.New()
			}
		}
		if len(project.Technologies) > 0 {
			if err := tx.Create(&project.Technologies).Error; err != nil {
				return errs.NewDatabaseError("create", "project tags", err)
			}
		}
		return nil
	})
	if err != nil {
		return transactionError("update project", err)
	}
	project.Version = expectedVersion + 1
	return nil
}

// Delete removes a project, its tags and every match that references it
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Match{}).Error; err != nil {
			return errs.NewDatabaseError("delete", "matches", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
			return errs.NewDatabaseError("delete", "project tags", err)
		}
		res := tx.Delete(&models.Project{}, "id = ?", id)
		if res.Error != nil {
			return errs.NewDatabaseError("delete", "project", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NewNotFound("project")
		}
		return nil
	})
	return transactionError("delete project", err)
}

// transactionError passes through errors raised inside a transaction and reports
// begin or commit failures as a failed transaction.
func transactionError(operation string, err error) error {
	var apiErr *errs.ApiErr
	if err == nil || errors.As(err, &apiErr) {
		return err
	}
	return errs.NewTransactionFailedError(operation, err)
}
