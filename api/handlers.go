package api

import (
	"context"

	"github.com/rpupo63/teammatch-backend/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the HTTP layer drives.
type Dependencies struct {
	Accounts services.AccountService
	Projects services.ProjectService
	Matches  services.MatchService
	Tokens   TokenIssuer
	Store    Pinger
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, r router) *routeHandlers {
	return &routeHandlers{
		healthHandler:  newHealthHandler(deps.Store, r.startupTime),
		accountHandler: newAccountHandler(deps.Accounts, deps.Tokens),
		projectHandler: newProjectHandler(deps.Projects),
		matchHandler:   newMatchHandler(deps.Matches),
	}
}
