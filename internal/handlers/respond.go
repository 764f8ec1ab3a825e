// Package handlers contains HTTP request handlers for the civic API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/auth"
	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/services"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// errorResponder maps service errors onto HTTP statuses. Internal error
// detail is only sent to the client when exposeInternal is set.
type errorResponder struct {
	logger         *zap.SugaredLogger
	exposeInternal bool
}

func (e errorResponder) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		e.logger.Errorw(message, "error", err)
		if e.exposeInternal {
			message = message + ": " + err.Error()
		}
		respondError(w, http.StatusInternalServerError, message)
	}
}

// principal returns the authenticated caller, answering 401 when absent.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
	}
	return p, ok
}
