package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/models"
	"github.com/rpupo63/teammatch-backend/services"
)

type accountHandler struct {
	responder Responder
	logger    zerolog.Logger
	accounts  services.AccountService
	tokens    TokenIssuer
}

func newAccountHandler(accounts services.AccountService, tokens TokenIssuer) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()

	return accountHandler{
		responder: NewResponder(logger),
		logger:    logger,
		accounts:  accounts,
		tokens:    tokens,
	}
}

func (h accountHandler) writeSession(w http.ResponseWriter, status int, user *models.User) {
	token, expiresAt, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSONStatus(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	})
}

// register creates an account and signs the new member in
// @Summary Register
// @Tags Accounts
// @Accept json
// @Produce json
// @Param account body services.RegisterInput true "Account data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid account data"
// @Failure 409 {object} ErrorResponse "Conflict - Nickname or e-mail taken"
// @Router /register [post]
func (h accountHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Register(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeSession(w, http.StatusCreated, user)
	}
}

// login exchanges a nickname or e-mail and password for an access token
// @Summary Login
// @Tags Accounts
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /login [post]
func (h accountHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Authenticate(r.Context(), req.Identifier, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeSession(w, http.StatusOK, user)
	}
}

func (h accountHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Profile(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user.Public())
	}
}

// updateProfile changes the caller's own profile fields
// @Summary Update profile
// @Tags Accounts
// @Accept json
// @Produce json
// @Param profile body services.ProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 409 {object} ErrorResponse "Conflict - Profile changed since it was read"
// @Router /me [put]
func (h accountHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.ProfileInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.UpdateProfile(r.Context(), userID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user.Public())
	}
}
