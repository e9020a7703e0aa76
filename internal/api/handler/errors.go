package handler

import (
	"net/http"

	"github.com/mcoot/mintworks-go/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NotFound handles requests for unknown paths
func NotFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

// MethodNotAllowed handles known paths requested with an unsupported method
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
