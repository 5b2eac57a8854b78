package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// writeServiceError maps lifecycle errors to HTTP status codes. Unknown
// errors are reported as 500 without leaking internals to the client.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	var statusCode int
	switch {
	case errors.Is(err, service.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrAlreadyClaimed):
		statusCode = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		statusCode = http.StatusForbidden
	case errors.Is(err, service.ErrValidation):
		statusCode = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPartialCreate):
		statusCode = http.StatusBadGateway
	default:
		log.Errorf("Unhandled service error: %v", err)
		writeJSON(w, log, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, log, statusCode, errorResponse{Error: err.Error()})
}
