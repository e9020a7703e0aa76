package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/mintworks-go/internal/model"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Error codes. Apart from not-found, every service failure shares status 500,
// so clients tell them apart by code.
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeNotFound               = "NOT_FOUND"
	CodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	CodeGameNotFound           = "GAME_NOT_FOUND"
	CodeInvalidTurn            = "INVALID_TURN"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodePersistenceError       = "PERSISTENCE_ERROR"
	CodeEngineInitError        = "ENGINE_INIT_ERROR"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error code and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: he.message, Code: he.code})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, CodeGameNotFound, "Game not found"}
	case errors.Is(err, model.ErrInvalidTurn):
		return &httpError{http.StatusInternalServerError, CodeInvalidTurn, err.Error()}
	case errors.Is(err, model.ErrConcurrentModification):
		return &httpError{http.StatusInternalServerError, CodeConcurrentModification, err.Error()}
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusInternalServerError, CodePersistenceError, "Storage failure, the request may be retried"}
	case errors.Is(err, model.ErrEngineInit):
		return &httpError{http.StatusInternalServerError, CodeEngineInitError, err.Error()}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewNotFoundError creates an error for an unknown route
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, CodeNotFound, "Not found"}
}

// NewMethodNotAllowedError creates an error for a known route hit with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed"}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}
