package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mintworks-go/internal/api/apierr"
	"github.com/mcoot/mintworks-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// A panic becomes a JSON 500 with code INTERNAL_ERROR.
func Recovery(logger *slog.Logger) mux.MiddlewareFunc {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Standard returns the API middleware chain, outermost first: request ID,
// panic recovery, then request logging
func Standard(logger *slog.Logger) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.RequestID,
		Recovery(logger),
		middleware.Logging(logger),
	}
}
