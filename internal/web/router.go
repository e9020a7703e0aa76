package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mintworks-go/internal/services/session"
	"github.com/mcoot/mintworks-go/internal/web/handler"
	"github.com/mcoot/mintworks-go/internal/web/middleware"
	"github.com/mcoot/mintworks-go/internal/web/views"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions *session.Service
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Create handlers
	gamesHandler := handler.NewGamesHandler(cfg.Sessions)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		views.RenderError(w, req, http.StatusNotFound, "Page not found.")
	})

	r.Handle("/", http.RedirectHandler("/games", http.StatusFound)).Methods(http.MethodGet)
	r.HandleFunc("/games", gamesHandler.Awaiting).Methods(http.MethodGet)

	return r
}
