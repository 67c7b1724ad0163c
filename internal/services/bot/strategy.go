// Package bot provides computer opponents that choose moves for a side.
package bot

import (
	"fmt"
	"sort"

	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/model"
)

// Strategy defines how a bot chooses where to move
type Strategy interface {
	// ChoosePosition selects an empty cell for state.CurrentPlayer.
	// It returns -1 when the board has no empty cell.
	ChoosePosition(state model.GameState) int
}

// Strategy names accepted by New
const (
	StrategyRandom = "random"
	StrategySmart  = "smart"
)

// Names returns the available strategy names in sorted order
func Names() []string {
	names := []string{StrategyRandom, StrategySmart}
	sort.Strings(names)
	return names
}

// New returns the named strategy
func New(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case StrategyRandom:
		return NewRandomStrategy(rnd), nil
	case StrategySmart:
		return NewSmartStrategy(rnd), nil
	}
	return nil, fmt.Errorf("unknown bot strategy: %s", name)
}

// emptyCells lists the empty positions in ascending order
func emptyCells(board model.Board) []int {
	var empty []int
	for i, m := range board {
		if m == model.Empty {
			empty = append(empty, i)
		}
	}
	return empty
}
