package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes sets up the routes reachable without a token
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/healthz", handlers.healthHandler.health())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Post("/register", handlers.accountHandler.register())
		r.Post("/login", handlers.accountHandler.login())
	})
}

// setupMemberRoutes sets up all routes that require an authenticated member
func setupMemberRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		// Account endpoints
		r.Get("/me", handlers.accountHandler.getProfile())
		r.Put("/me", handlers.accountHandler.updateProfile())

		// Project endpoints
		r.Get("/projects", handlers.projectHandler.listProjects())
		r.Get("/projects/slug/{slug}", handlers.projectHandler.getProjectBySlug())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())
		r.Get("/technologies", handlers.projectHandler.listTechnologies())

		// Match endpoints
		r.Post("/project/{projectID}/like", handlers.matchHandler.like())
		r.Delete("/project/{projectID}/like", handlers.matchHandler.withdraw())
		r.Post("/project/{projectID}/matches/{candidateID}/approve", handlers.matchHandler.approve())
		r.Delete("/project/{projectID}/matches/{candidateID}", handlers.matchHandler.reject())
		r.Get("/inbox", handlers.matchHandler.inbox())
		r.Get("/matches", handlers.matchHandler.candidateMatches())
		r.Get("/matches/confirmed", handlers.matchHandler.confirmedMatches())
		r.Get("/overview", handlers.matchHandler.overview())
	})
}
