package api

import (
	"time"

	"github.com/rpupo63/teammatch-backend/models"
	"github.com/rpupo63/teammatch-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler  healthHandler
	accountHandler accountHandler
	projectHandler projectHandler
	matchHandler   matchHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// LoginRequest identifies a member by nickname or e-mail.
type LoginRequest struct {
	Identifier string `json:"identifier" example:"alice"`
	Password   string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// ProjectCollection is a page of projects.
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total"`
}

type TechnologyCollection struct {
	Technologies []string `json:"technologies"`
}

// MatchResponse reports a match and the state it is in after the request.
type MatchResponse struct {
	Match *models.Match     `json:"match"`
	State models.MatchState `json:"state"`
}

type InboxResponse struct {
	Entries []services.InboxEntry `json:"entries"`
}

type CandidateMatchesResponse struct {
	Matches []services.CandidateMatch `json:"matches"`
}

type ConfirmedMatchesResponse struct {
	Matches []services.ConfirmedMatch `json:"matches"`
}

type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}
