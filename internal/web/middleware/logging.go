package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/mintworks-go/internal/middleware"
)

// Logging creates logging middleware for the web interface, tagging each
// request with an ID first
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return middleware.RequestID(logging(next))
	}
}
