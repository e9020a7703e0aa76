package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/services/session"
	"github.com/mcoot/mintworks-go/internal/web/views"
)

// GamesHandler renders the games waiting on a player
type GamesHandler struct {
	sessions *session.Service
}

// NewGamesHandler creates a new GamesHandler
func NewGamesHandler(sessions *session.Service) *GamesHandler {
	return &GamesHandler{sessions: sessions}
}

// Awaiting handles GET /games?player=NAME
func (h *GamesHandler) Awaiting(w http.ResponseWriter, r *http.Request) {
	data := views.AwaitingData{Player: strings.TrimSpace(r.URL.Query().Get("player"))}

	if data.Player != "" {
		ids, err := h.sessions.ListAwaiting(r.Context(), data.Player)
		if err != nil {
			views.RenderError(w, r, http.StatusInternalServerError, "Could not load your games.")
			return
		}
		for _, id := range ids {
			rec, err := h.sessions.GetGame(r.Context(), id)
			if errors.Is(err, model.ErrGameNotFound) {
				continue
			}
			if err != nil {
				views.RenderError(w, r, http.StatusInternalServerError, "Could not load your games.")
				return
			}
			// the index may lag a turn that landed since it was read
			if rec.PlayerToAct != data.Player {
				continue
			}
			data.Games = append(data.Games, views.AwaitingGame{ID: string(rec.ID), Version: rec.Version})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Awaiting(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
