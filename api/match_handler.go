package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/services"
)

type matchHandler struct {
	responder Responder
	logger    zerolog.Logger
	matches   services.MatchService
}

func newMatchHandler(matches services.MatchService) matchHandler {
	logger := log.With().Str("handlerName", "matchHandler").Logger()

	return matchHandler{
		responder: NewResponder(logger),
		logger:    logger,
		matches:   matches,
	}
}

// like records the caller's interest in a project
// @Summary Like project
// @Description Creates a pending match. Liking again returns the existing match.
// @Tags Matches
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} MatchResponse
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID}/like [post]
func (h matchHandler) like() http.HandlerFunc {
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

		match, err := h.matches.Like(r.Context(), userID, projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, MatchResponse{Match: match, State: match.State()})
	}
}

// withdraw removes the caller's own match on a project
// @Summary Withdraw like
// @Tags Matches
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse "Not Found - No match"
// @Router /project/{projectID}/like [delete]
func (h matchHandler) withdraw() http.HandlerFunc {
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

		if err := h.matches.Remove(r.Context(), userID, userID, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "match withdrawn"})
	}
}

// approve accepts a candidate on a project the caller founded
// @Summary Approve candidate
// @Tags Matches
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param candidateID path string true "Candidate ID" format(uuid)
// @Success 200 {object} MatchResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Not the founder"
// @Failure 404 {object} ErrorResponse "Not Found - Project or match not found"
// @Router /project/{projectID}/matches/{candidateID}/approve [post]
func (h matchHandler) approve() http.HandlerFunc {
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
		candidateID, err := uuidParam(r, "candidateID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		match, err := h.matches.Approve(r.Context(), userID, candidateID, projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, MatchResponse{Match: match, State: match.State()})
	}
}

// reject removes a candidate's match. The candidate themself may also use it.
// @Summary Reject candidate
// @Tags Matches
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param candidateID path string true "Candidate ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Neither founder nor candidate"
// @Failure 404 {object} ErrorResponse "Not Found - No match"
// @Router /project/{projectID}/matches/{candidateID} [delete]
func (h matchHandler) reject() http.HandlerFunc {
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
		candidateID, err := uuidParam(r, "candidateID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.matches.Remove(r.Context(), userID, candidateID, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "match removed"})
	}
}

func (h matchHandler) inbox() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		entries, err := h.matches.FounderInbox(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, InboxResponse{Entries: entries})
	}
}

func (h matchHandler) candidateMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		matches, err := h.matches.CandidateMatches(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, CandidateMatchesResponse{Matches: matches})
	}
}

func (h matchHandler) confirmedMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		matches, err := h.matches.ConfirmedMatches(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ConfirmedMatchesResponse{Matches: matches})
	}
}

// overview returns the caller's dashboard in one response
// @Summary Member overview
// @Tags Matches
// @Produce json
// @Success 200 {object} services.Overview
// @Router /overview [get]
func (h matchHandler) overview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		overview, err := h.matches.Overview(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, overview)
	}
}
