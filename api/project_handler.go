package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/database"
	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
	"github.com/rpupo63/teammatch-backend/services"
)

const maxPageSize = 100

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  services.ProjectService
}

func newProjectHandler(projects services.ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

func (h projectHandler) writeProject(w http.ResponseWriter, status int, project *models.Project) {
	w.Header().Set("ETag", etag(project.Version))
	h.responder.WriteJSONStatus(w, status, project)
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errs.NewInvalidFieldError(name, "must be a non-negative integer")
	}
	return n, nil
}

func projectFilterFromQuery(r *http.Request) (database.ProjectFilter, error) {
	query := r.URL.Query()
	filter := database.ProjectFilter{
		Technology: query.Get("technology"),
		Level:      query.Get("level"),
	}

	if founder := query.Get("founder"); founder != "" {
		founderID, err := uuid.Parse(founder)
		if err != nil {
			return filter, errs.NewInvalidFieldError("founder", "must be a UUID")
		}
		filter.FounderID = founderID
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}

// listProjects browses projects, newest first
// @Summary List projects
// @Description Lists projects, optionally filtered by technology, level or founder
// @Tags Projects
// @Produce json
// @Param technology query string false "Technology tag"
// @Param level query string false "junior, middle or senior"
// @Param founder query string false "Founder ID" format(uuid)
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ProjectCollection
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid filter"
// @Router /projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := projectFilterFromQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.projects.List(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if projects == nil {
			projects = []*models.Project{}
		}

		h.responder.WriteJSON(w, ProjectCollection{Projects: projects, Total: len(projects)})
	}
}

// getProject retrieves a specific project by ID with its technologies
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Get(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeProject(w, http.StatusOK, project)
	}
}

func (h projectHandler) getProjectBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projects.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeProject(w, http.StatusOK, project)
	}
}

// createProject creates a project founded by the caller
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body services.ProjectInput true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Router /project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		founderID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ProjectInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), founderID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeProject(w, http.StatusCreated, project)
	}
}

// updateProject changes the editable fields the body carries and keeps the rest
// @Summary Update project
// @Description Only the founder may edit. The version observed by the client may be sent as If-Match or in the body.
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body services.ProjectInput true "Updated project data"
// @Success 200 {object} models.Project
// @Failure 403 {object} ErrorResponse "Forbidden - Not the founder"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 409 {object} ErrorResponse "Conflict - Project changed since it was read"
// @Router /project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		version, err := ifMatchVersion(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ProjectInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if in.Version == nil {
			in.Version = version
		}

		project, err := h.projects.Edit(r.Context(), userID, projectID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeProject(w, http.StatusOK, project)
	}
}

// deleteProject deletes a project and every match on it
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Not the founder"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), userID, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

func (h projectHandler) listTechnologies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologies, err := h.projects.Technologies(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if technologies == nil {
			technologies = []string{}
		}

		h.responder.WriteJSON(w, TechnologyCollection{Technologies: technologies})
	}
}
