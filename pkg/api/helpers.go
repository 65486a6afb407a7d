package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/core/services"
)

// Error codes returned in the body of failed requests
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnavailable       = "STORE_UNAVAILABLE"
	ErrCodeInternal          = "INTERNAL"
)

// ErrorDetail describes why a request failed
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode JSON response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	respondJSON(w, logger, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// respondServiceError maps a service error onto a status code. Validation failures caught
// by the handler itself are answered with 400 before reaching here; a request the service
// rejects is a 422.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if services.IsClientError(err) {
		logger.Debug("Request rejected", zap.Error(err))
	}
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		respondError(w, logger, http.StatusUnprocessableEntity, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(w, logger, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		logger.Error("Store unavailable", zap.Error(err))
		respondError(w, logger, http.StatusServiceUnavailable, ErrCodeUnavailable, "store unavailable")
	default:
		logger.Error("Unexpected error", zap.Error(err))
		respondError(w, logger, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// decodeAndValidate reads a JSON body into req and runs its validate tags.
// It writes a 400 and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		respondError(w, s.logger, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, s.logger, http.StatusBadRequest, ErrCodeBadRequest, "validation error: "+err.Error())
		return false
	}
	return true
}
