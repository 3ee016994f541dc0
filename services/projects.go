package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/database"
	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

const maxTitleLength = 120

// ProjectInput carries the founder-editable fields of a project. On edit, an empty
// title, a nil description and nil tag lists keep the stored values; an empty list
// clears them. Version, when set, must equal the stored version for an edit to apply.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	Levels       []string `json:"levels"`
	Version      *int     `json:"version,omitempty"`
}

type ProjectService struct {
	projects     ProjectStore
	technologies TechnologyStore
	authorizer   Authorizer
	logger       zerolog.Logger
}

func NewProjectService(projects ProjectStore, technologies TechnologyStore) ProjectService {
	return ProjectService{
		projects:     projects,
		technologies: technologies,
		authorizer:   NewAuthorizer(projects),
		logger:       log.With().Str("service", "projects").Logger(),
	}
}

// NormalizeProjectInput trims, lowercases and deduplicates tags and validates the rest.
func NormalizeProjectInput(in ProjectInput) (ProjectInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		in.Description = &description
	}

	if in.Title == "" {
		return ProjectInput{}, errs.NewMissingRequiredFieldError("title")
	}
	if len([]rune(in.Title)) > maxTitleLength {
		return ProjectInput{}, errs.NewInvalidFieldError("title", "must be at most 120 characters")
	}

	in.Technologies = uniqueLower(in.Technologies)
	in.Levels = uniqueLower(in.Levels)
	for _, level := range in.Levels {
		if !models.ValidLevel(level) {
			return ProjectInput{}, errs.NewInvalidFieldError("levels", "unknown level "+level)
		}
	}
	return in, nil
}

func uniqueLower(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// withStored fills the fields an edit left out with the project's current values.
func (in ProjectInput) withStored(project *models.Project) ProjectInput {
	if strings.TrimSpace(in.Title) == "" {
		in.Title = project.Title
	}
	if in.Description == nil {
		in.Description = &project.Description
	}
	if in.Technologies == nil {
		in.Technologies = project.TechnologyValues()
	}
	if in.Levels == nil {
		in.Levels = append([]string{}, project.Levels...)
	}
	return in
}

func technologyTags(values []string) []models.ProjectTag {
	tags := make([]models.ProjectTag, 0, len(values))
	for _, v := range values {
		tags = append(tags, models.ProjectTag{ID: uuid.New(), Value: v})
	}
	return tags
}

// projectSlug derives a URL slug from the title, suffixed with part of the id so
// equal titles do not collide.
func projectSlug(title string, id uuid.UUID) string {
	base := slug.Make(title)
	suffix := strings.SplitN(id.String(), "-", 2)[0]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// Create stores a new project founded by founderID.
func (s ProjectService) Create(ctx context.Context, founderID uuid.UUID, in ProjectInput) (*models.Project, error) {
	if founderID == uuid.Nil {
		return nil, errs.Unauthorized
	}
	in, err := NormalizeProjectInput(in)
	if err != nil {
		return nil, err
	}

	var description string
	if in.Description != nil {
		description = *in.Description
	}
	levels := in.Levels
	if levels == nil {
		levels = []string{}
	}

	id := uuid.New()
	project := &models.Project{
		ID:           id,
		Slug:         projectSlug(in.Title, id),
		Title:        in.Title,
		Description:  description,
		FounderID:    founderID,
		Levels:       levels,
		Technologies: technologyTags(in.Technologies),
		Version:      1,
	}
	if err := s.projects.Add(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Str("projectID", project.ID.String()).Str("founderID", founderID.String()).Msg("project created")
	return project, nil
}

// Get returns a project by id. Reading is open to every authenticated member.
func (s ProjectService) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return s.projects.FindByID(ctx, projectID)
}

func (s ProjectService) GetBySlug(ctx context.Context, value string) (*models.Project, error) {
	return s.projects.FindBySlug(ctx, value)
}

func (s ProjectService) List(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, error) {
	filter.Technology = strings.ToLower(strings.TrimSpace(filter.Technology))
	filter.Level = strings.ToLower(strings.TrimSpace(filter.Level))
	if filter.Level != "" && !models.ValidLevel(filter.Level) {
		return nil, errs.NewInvalidFieldError("level", "must be junior, middle or senior")
	}
	return s.projects.FindAll(ctx, filter)
}

// Technologies lists every technology some project asks for.
func (s ProjectService) Technologies(ctx context.Context) ([]string, error) {
	return s.technologies.FindTechnologies(ctx)
}

// Edit replaces the editable fields the input carries and keeps the rest. Only the
// founder may edit, and the write is rejected as stale when the project changed
// since it was read.
func (s ProjectService) Edit(ctx context.Context, actorID, projectID uuid.UUID, in ProjectInput) (*models.Project, error) {
	project, err := s.authorizer.AuthorizeProject(ctx, actorID, projectID, "edit project")
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != project.Version {
		return nil, errs.NewStaleWrite("project", *in.Version)
	}
	in, err = NormalizeProjectInput(in.withStored(project))
	if err != nil {
		return nil, err
	}

	project.Title = in.Title
	project.Description = *in.Description
	project.Levels = in.Levels
	project.Technologies = technologyTags(in.Technologies)
	if err := s.projects.Update(ctx, project, project.Version); err != nil {
		return nil, err
	}

	s.logger.Info().Str("projectID", project.ID.String()).Int("version", project.Version).Msg("project edited")
	return project, nil
}

// Delete removes a project and the matches that reference it. Only the founder may delete.
func (s ProjectService) Delete(ctx context.Context, actorID, projectID uuid.UUID) error {
	if _, err := s.authorizer.AuthorizeProject(ctx, actorID, projectID, "delete project"); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	s.logger.Info().Str("projectID", projectID.String()).Msg("project deleted")
	return nil
}
