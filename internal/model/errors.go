package model

import "errors"

// Errors surfaced by the session service
var (
	ErrGameNotFound           = errors.New("game not found")
	ErrInvalidTurn            = errors.New("invalid turn")
	ErrConcurrentModification = errors.New("game was modified concurrently, re-fetch turns and resubmit")
	ErrPersistence            = errors.New("persistence failure")
	ErrEngineInit             = errors.New("engine could not be initialised")
)

// Store-level errors, never surfaced to clients directly
var (
	// ErrVersionConflict is returned by a conditional write whose expected version is stale
	ErrVersionConflict = errors.New("version conflict")

	// ErrGameExists is returned when inserting a record whose ID is already taken
	ErrGameExists = errors.New("game already exists")
)
