package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/teammatch-backend/database"
	"github.com/rpupo63/teammatch-backend/models"
)

// The store interfaces below are the Entity Store as the core sees it. The gorm
// repositories in package database satisfy them; lookups of a missing row return an
// error matching errs.ErrNotFound and other failures match errs.ErrPersistence.

type UserStore interface {
	Add(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	Update(ctx context.Context, user *models.User, expectedVersion int) error
}

type ProjectStore interface {
	FindAll(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	FindByFounder(ctx context.Context, founderID uuid.UUID) ([]*models.Project, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MatchStore interface {
	Find(ctx context.Context, userID, projectID uuid.UUID) (*models.Match, error)
	FindByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.Match, error)
	FindByUser(ctx context.Context, userID uuid.UUID, approvedOnly bool) ([]*models.Match, error)
	Add(ctx context.Context, match *models.Match) error
	Approve(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

type TechnologyStore interface {
	FindTechnologies(ctx context.Context) ([]string, error)
}
