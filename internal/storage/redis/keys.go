package redis

import (
	"fmt"

	"github.com/mcoot/mintworks-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "mwgame"

// Hash fields of a game record
const (
	fieldState       = "state"
	fieldPlayerToAct = "player_to_act"
	fieldVersion     = "version"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// gameKey returns the Redis key for the hash holding a game record
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// awaitingIndexKey returns the Redis key for the SET of games waiting on a player
func awaitingIndexKey(player string) string {
	return fmt.Sprintf("%s:idx:awaiting:%s", keyPrefix, player)
}
