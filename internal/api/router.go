package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mintworks-go/internal/api/handler"
	"github.com/mcoot/mintworks-go/internal/api/middleware"
	"github.com/mcoot/mintworks-go/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions *session.Service
}

// NewRouter creates a new API router with all routes configured.
// Unknown paths get a JSON 404 and known paths with the wrong method a JSON 405.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.Sessions)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Standard(cfg.Logger)...)

	api.HandleFunc("/game", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.ListAwaiting).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// These paths would otherwise fall through to /{gameId}
	for _, path := range []string{"/game", "/games", "/health"} {
		api.HandleFunc(path, handler.MethodNotAllowed)
	}

	api.HandleFunc("/{gameId}/turn", gameHandler.ListTurns).Methods(http.MethodGet)
	api.HandleFunc("/{gameId}/turn", gameHandler.ApplyTurn).Methods(http.MethodPut)
	api.HandleFunc("/{gameId}", gameHandler.Get).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
