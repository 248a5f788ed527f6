package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/updatelog/internal/engine"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: true, Code: status, Message: message})
}

// respondEngineError maps engine error codes to statuses. Storage failures
// are logged and reported without their cause.
func (s *Server) respondEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case engine.IsNotFound(err):
		s.respondError(w, http.StatusNotFound, "Meeting not found")
	case engine.IsValidation(err):
		s.respondError(w, http.StatusBadRequest, validationMessage(err))
	default:
		s.logger.Error("operation failed",
			"op", op,
			"request_id", requestID(r),
			"error", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", op))
	}
}

func validationMessage(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// decodeJSON decodes and validates a request body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validateStruct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "Invalid meeting id")
		return 0, false
	}
	return id, true
}
