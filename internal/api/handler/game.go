package handler

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/mintworks-go/internal/api/request"
	"github.com/mcoot/mintworks-go/internal/api/response"
	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/services/session"
)

// maxBodyBytes caps request bodies; turns and player lists are small
const maxBodyBytes = 1 << 20

// GameHandler handles game and turn endpoints
type GameHandler struct {
	sessions *session.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessions *session.Service) *GameHandler {
	return &GameHandler{sessions: sessions}
}

// Create handles POST /api/game
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	players := make([]model.Player, len(req.Players))
	for i, p := range req.Players {
		players[i] = model.Player{Name: p.Name, Age: p.Age, Tokens: p.Tokens}
	}

	id, err := h.sessions.CreateGame(r.Context(), players)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CreateGameResponse{GameID: string(id)})
}

// Get handles GET /api/{gameId}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sessions.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(rec))
}

// ListTurns handles GET /api/{gameId}/turn. The body is tagged with a digest
// of itself, so a client polling with If-None-Match gets 304 until a turn lands.
func (h *GameHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.sessions.GetTurns(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if turns == nil {
		turns = []model.Turn{}
	}

	body, err := json.Marshal(turns)
	if err != nil {
		WriteError(w, err)
		return
	}

	etag := entityTag(body)
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		response.NotModified(w, etag)
		return
	}

	w.Header().Set("ETag", etag)
	response.RawJSON(w, http.StatusOK, body)
}

// ApplyTurn handles PUT /api/{gameId}/turn
func (h *GameHandler) ApplyTurn(w http.ResponseWriter, r *http.Request) {
	var req request.ApplyTurnRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if len(req.Turn) == 0 || string(req.Turn) == "null" {
		WriteError(w, NewInvalidRequestError("turn is required"))
		return
	}

	if err := h.sessions.ApplyTurn(r.Context(), gameID(r), req.Turn); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// ListAwaiting handles GET /api/games?player=NAME
func (h *GameHandler) ListAwaiting(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.URL.Query().Get("player"))
	if player == "" {
		WriteError(w, NewInvalidRequestError("player query parameter is required"))
		return
	}

	ids, err := h.sessions.ListAwaiting(r.Context(), player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AwaitingFromModel(player, ids))
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["gameId"])
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}

// entityTag returns a strong ETag for body
func entityTag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
