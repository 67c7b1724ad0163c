package bot

import (
	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/engine"
)

var (
	center  = 4
	corners = []int{0, 2, 6, 8}
)

// SmartStrategy plays by priority: complete its own line, block the
// opponent's line, take the center, take a corner, then anything left.
// Ties within a priority are broken randomly.
type SmartStrategy struct {
	random random.Random
}

// NewSmartStrategy creates a new SmartStrategy
func NewSmartStrategy(rnd random.Random) *SmartStrategy {
	return &SmartStrategy{random: rnd}
}

// ChoosePosition picks the highest priority empty cell
func (s *SmartStrategy) ChoosePosition(state model.GameState) int {
	board := state.Board
	me := state.CurrentPlayer
	if me != model.O {
		me = model.X
	}

	if pos := completingMove(board, me); pos >= 0 {
		return pos
	}
	if pos := completingMove(board, engine.SwitchPlayer(me)); pos >= 0 {
		return pos
	}
	if board[center] == model.Empty {
		return center
	}

	var freeCorners []int
	for _, c := range corners {
		if board[c] == model.Empty {
			freeCorners = append(freeCorners, c)
		}
	}
	if len(freeCorners) > 0 {
		return freeCorners[s.random.Intn(len(freeCorners))]
	}

	empty := emptyCells(board)
	if len(empty) == 0 {
		return -1
	}
	return empty[s.random.Intn(len(empty))]
}

// completingMove returns the first cell that would give mark a full line, or -1
func completingMove(board model.Board, mark model.Mark) int {
	for _, pos := range emptyCells(board) {
		next := engine.ApplyMove(board, pos, mark)
		if engine.CheckForWin(next).Winner == model.Winner(mark) {
			return pos
		}
	}
	return -1
}
