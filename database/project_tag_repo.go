package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// FindTechnologies returns every distinct technology used by at least one project
func (r *ProjectTagRepo) FindTechnologies(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.ProjectTag{}).
		Distinct("value").
		Order("value").
		Pluck("value", &values).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project tags", err)
	}
	return values, nil
}
