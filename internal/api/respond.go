// ABOUTME: JSON response helpers and sentinel-to-status error mapping.
// ABOUTME: Engine errors classify via errors.Is; unrecognized errors become 500s.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/harperreed/habits/internal/apperror"
)

func (s *Server) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("unable to write response stream", zap.Error(err))
	}
}

// respondError maps engine sentinels onto HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.respond(w, status, map[string]string{"error": err.Error()})
}

// decodeAndValidate decodes a JSON body and runs validator tags on it.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.log.Warn("validation failed", zap.Error(err))
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}
