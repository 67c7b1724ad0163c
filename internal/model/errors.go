package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerNameTaken = errors.New("player name already exists")
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name is too long")
	ErrInvalidResult   = errors.New("invalid result")

	// Move errors
	ErrInvalidPosition = errors.New("position out of range")
	ErrCellOccupied    = errors.New("cell occupied")
	ErrGameOver        = errors.New("game is over")
	ErrInvalidBoard    = errors.New("invalid board encoding")
)
