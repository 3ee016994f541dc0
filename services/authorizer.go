package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// CanMutate reports whether actorID may edit or delete project, which is true only
// for the project's founder. The zero UUID stands for an unauthenticated caller.
func CanMutate(actorID uuid.UUID, project *models.Project) bool {
	if project == nil || actorID == uuid.Nil {
		return false
	}
	return project.FounderID == actorID
}

// Authorizer guards founder-only operations on projects.
type Authorizer struct {
	projects ProjectStore
}

func NewAuthorizer(projects ProjectStore) Authorizer {
	return Authorizer{projects: projects}
}

// AuthorizeProject loads the project and checks that actorID founded it. A missing
// project is reported as NotFound before ownership is evaluated.
func (a Authorizer) AuthorizeProject(ctx context.Context, actorID, projectID uuid.UUID, action string) (*models.Project, error) {
	project, err := a.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(actorID, project) {
		return nil, errs.NewForbidden(action)
	}
	return project, nil
}
