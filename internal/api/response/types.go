package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/mintworks-go/internal/model"
)

// CreateGameResponse is the response for game creation
type CreateGameResponse struct {
	GameID string `json:"gameId"`
}

// SuccessResponse acknowledges an accepted turn
type SuccessResponse struct {
	Success bool `json:"success"`
}

// GameResponse is the stored record of a game
type GameResponse struct {
	GameID      string          `json:"gameId"`
	PlayerToAct string          `json:"playerToAct"`
	Version     int64           `json:"version"`
	Finished    bool            `json:"finished"`
	State       json.RawMessage `json:"state"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// GameFromModel converts a model.GameRecord to a GameResponse
func GameFromModel(rec *model.GameRecord) GameResponse {
	return GameResponse{
		GameID:      string(rec.ID),
		PlayerToAct: rec.PlayerToAct,
		Version:     rec.Version,
		Finished:    rec.IsTerminal(),
		State:       rec.State,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// AwaitingResponse lists the games waiting on a player
type AwaitingResponse struct {
	Player  string   `json:"player"`
	GameIDs []string `json:"gameIds"`
}

// AwaitingFromModel converts game IDs to an AwaitingResponse
func AwaitingFromModel(player string, ids []model.GameID) AwaitingResponse {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return AwaitingResponse{Player: player, GameIDs: out}
}
