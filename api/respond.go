package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/teammatch-backend/errs"
)

const maxRequestBody = 1 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	// store and outbound causes stay in the logs
	if apiErr.Cause != nil && apiErr.StatusCode < http.StatusInternalServerError {
		response.Cause = apiErr.Cause.Error()
	}
	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// decodeJSON reads a size-limited JSON body into dst. Well-formed JSON of the wrong
// shape or an oversized body is a malformed payload; anything else is invalid JSON.
func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	body := http.MaxBytesReader(w, req.Body, maxRequestBody)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	if errors.As(err, &typeErr) || errors.As(err, &sizeErr) {
		return errs.NewMalformedPayloadError("request", err)
	}
	return errs.NewInvalidJSONError(err)
}

func uuidParam(req *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(req, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a UUID")
	}
	return id, nil
}

// actorID returns the authenticated caller. Routes behind authenticate always have one.
func actorID(req *http.Request) (uuid.UUID, error) {
	userID, err := ctxGetUserID(req.Context())
	if err != nil {
		return uuid.Nil, errs.Unauthorized
	}
	return userID, nil
}

// etag formats a row version as a strong entity tag.
func etag(version int) string {
	return strconv.Quote(strconv.Itoa(version))
}

// ifMatchVersion parses an If-Match header produced from etag. A missing header
// yields nil.
func ifMatchVersion(req *http.Request) (*int, error) {
	raw := strings.TrimSpace(req.Header.Get("If-Match"))
	if raw == "" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	version, err := strconv.Atoi(strings.Trim(raw, `"`))
	if err != nil {
		return nil, errs.NewInvalidFieldError("If-Match", "must be a project version")
	}
	return &version, nil
}
