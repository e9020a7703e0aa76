package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/mintworks-go/internal/middleware"
	"github.com/mcoot/mintworks-go/internal/web/views"
)

// Recovery creates panic recovery middleware for the web interface.
// A panic renders the HTML error page.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		views.RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	})
}
