package model

// Player seeds the engine's initial state at game creation.
// It is not retained by the service once the game exists.
type Player struct {
	Name   string
	Age    int
	Tokens int
}
