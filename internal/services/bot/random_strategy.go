package bot

import (
	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/model"
)

// RandomStrategy picks a random empty cell
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChoosePosition picks a random empty cell on the board
func (s *RandomStrategy) ChoosePosition(state model.GameState) int {
	empty := emptyCells(state.Board)
	if len(empty) == 0 {
		return -1
	}
	return empty[s.random.Intn(len(empty))]
}
