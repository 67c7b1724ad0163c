package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oxgrid/tictactoe/internal/model"
)

// ErrorResponse is the body of every failed API response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	// Message carries internal error detail outside production
	Message string `json:"message,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNameRequired   = "NAME_REQUIRED"
	CodeNameTooLong    = "NAME_TOO_LONG"
	CodeNameTaken      = "NAME_TAKEN"
	CodeInvalidResult  = "INVALID_RESULT"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeRouteNotFound  = "ROUTE_NOT_FOUND"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with a client-facing message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// Writer renders errors as JSON responses. Unexpected errors are logged and
// hidden behind a generic message unless exposeInternal is set.
type Writer struct {
	logger         *slog.Logger
	exposeInternal bool
}

// NewWriter creates an error Writer
func NewWriter(logger *slog.Logger, exposeInternal bool) *Writer {
	return &Writer{logger: logger, exposeInternal: exposeInternal}
}

// WriteError writes an error response to the response writer
func (ew *Writer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	he, known := toHTTPError(err)
	body := ErrorResponse{Success: false, Error: he.message, Code: he.code}

	if !known {
		ew.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		if ew.exposeInternal {
			body.Message = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(body)
}

// WritePanic writes the 500 response for a recovered panic
func (ew *Writer) WritePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	ew.WriteError(w, r, fmt.Errorf("panic: %v", recovered))
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	he, _ := toHTTPError(err)
	return he.status
}

// toHTTPError converts an error to an httpError, reporting whether it was expected
func toHTTPError(err error) (*httpError, bool) {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he, true
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrNameRequired):
		return &httpError{http.StatusBadRequest, CodeNameRequired, "Name is required"}, true
	case errors.Is(err, model.ErrNameTooLong):
		return &httpError{http.StatusBadRequest, CodeNameTooLong,
			fmt.Sprintf("Name must be at most %d characters", model.MaxNameLength)}, true
	// Duplicate names stay 400 for compatibility with existing clients
	case errors.Is(err, model.ErrPlayerNameTaken):
		return &httpError{http.StatusBadRequest, CodeNameTaken, "Player name already exists"}, true
	case errors.Is(err, model.ErrInvalidResult):
		return &httpError{http.StatusBadRequest, CodeInvalidResult, "Result must be 'win', 'loss', or 'tie'"}, true
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, CodePlayerNotFound, "Player not found"}, true

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}, false
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewRouteNotFoundError creates the error for unmatched routes
func NewRouteNotFoundError() error {
	return &httpError{http.StatusNotFound, CodeRouteNotFound, "Route not found"}
}

// NewUnavailableError reports a dependency that is down
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, CodeUnavailable, message}
}
