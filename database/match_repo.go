package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

type MatchRepo struct {
	db *gorm.DB
}

func NewMatchRepo(db *gorm.DB) *MatchRepo {
	return &MatchRepo{db}
}

// Find returns the match between a candidate and a project
func (r *MatchRepo) Find(ctx context.Context, userID, projectID uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).First(&match, "user_id = ? AND project_id = ?", userID, projectID).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "match", err)
	}
	return &match, nil
}

// FindByProjects returns every match referencing one of projectIDs, oldest first
func (r *MatchRepo) FindByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.Match, error) {
	var matches []*models.Match
	if len(projectIDs) == 0 {
		return matches, nil
	}
	err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("created_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "matches", err)
	}
	return matches, nil
}

// FindByUser returns every match the candidate holds, optionally only approved ones
func (r *MatchRepo) FindByUser(ctx context.Context, userID uuid.UUID, approvedOnly bool) ([]*models.Match, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if approvedOnly {
		query = query.Where("approved = ?", true)
	}

	var matches []*models.Match
	if err := query.Order("created_at ASC").Find(&matches).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "matches", err)
	}
	return matches, nil
}

// Add inserts a new match. A second match for the same pair is reported as AlreadyExists.
func (r *MatchRepo) Add(ctx context.Context, match *models.Match) error {
	err := r.db.WithContext(ctx).Create(match).Error
	if err == nil {
		return nil
	}
	if _, ok := errs.UniqueViolation(err); ok {
		return errs.NewAlreadyExists("match", "project_id")
	}
	return errs.NewDatabaseError("create", "match", err)
}

// Approve flips the approval flag of a match
func (r *MatchRepo) Approve(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Match{}).Where("id = ?", id).Update("approved", true)
	if res.Error != nil {
		return errs.NewDatabaseError("update", "match", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("match")
	}
	return nil
}

// Delete removes a match by id
func (r *MatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Match{}, "id = ?", id)
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "match", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("match")
	}
	return nil
}

// DeleteOrphans removes matches whose candidate or project no longer exists
func (r *MatchRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("project_id NOT IN (?)", r.db.Model(&models.Project{}).Select("id")).
		Or("user_id NOT IN (?)", r.db.Model(&models.User{}).Select("id")).
		Delete(&models.Match{})
	if res.Error != nil {
		return 0, errs.NewDatabaseError("delete", "orphaned matches", res.Error)
	}
	return res.RowsAffected, nil
}
