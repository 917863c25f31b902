package engine

import "errors"

var (
	ErrGameOver      = errors.New("game is over")
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownEntity = errors.New("unknown unit")
	ErrOutOfRange    = errors.New("target out of range")
	ErrUnknownSpell  = errors.New("unknown spell")
	ErrNoTarget      = errors.New("no monsters in range")
	ErrInvalidConfig = errors.New("invalid config")
)
