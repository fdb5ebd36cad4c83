// Package handlers contains the HTTP handlers for the API server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mentormatch/backend/internal/api/response"
	"github.com/mentormatch/backend/internal/merrors"
)

// respondServiceError maps service-layer errors to HTTP statuses.
//
// Provider outages are 503 so clients know to retry; protocol and
// dimensionality violations are server-side defects and stay 500 with the
// detail kept out of the response body.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, merrors.ErrNotFound):
		response.RespondNotFound(w, err.Error())
	case errors.Is(err, merrors.ErrInvalidArgument):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, merrors.ErrInvalidRecord):
		response.RespondUnprocessableEntity(w, err.Error())
	case errors.Is(err, merrors.ErrEmbeddingUnavailable):
		response.RespondServiceUnavailable(w, "embedding provider unavailable")
	default:
		slog.Error("request failed", "error", err)
		response.RespondInternalServerError(w, "internal error")
	}
}
