package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/response"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
)

// maxBodyBytes bounds request bodies; a large batch of agents fits comfortably.
const maxBodyBytes = 16 << 20

// parseJSON decodes the request body into T and runs its validate tags.
// Unknown fields are rejected so typos in field names surface as 400s.
func parseJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

// respondParseError reports a body that failed to decode or validate.
func respondParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		response.RespondValidationError(w, err)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
}

// respondServiceError maps a service error to its HTTP status.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.RespondValidationError(w, err)
	case errors.Is(err, apperrors.ErrInvalidUUID), errors.Is(err, apperrors.ErrEmptyID), errors.Is(err, apperrors.ErrInvalidPeriod):
		response.RespondError(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, apperrors.ErrAgentNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrAgentNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
