package ids

import (
	"github.com/google/uuid"

	"github.com/oxgrid/tictactoe/internal/model"
)

// Generator creates identifiers and can be mocked for testing
type Generator interface {
	PlayerID() model.PlayerID
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// PlayerID returns a new random player id
func (g *UUIDGenerator) PlayerID() model.PlayerID {
	return model.PlayerID(uuid.NewString())
}
