// Package engine implements tic-tac-toe move validation and win detection.
// All functions are pure: boards are values and are never mutated in place.
package engine

import "github.com/oxgrid/tictactoe/internal/model"

// WinningLines lists every line in evaluation order: rows, then columns, then diagonals
var WinningLines = [8]model.Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Validation is the verdict for a proposed move
type Validation struct {
	Valid  bool
	Reason string // human-readable, empty when valid
	Err    error  // model.ErrInvalidPosition or model.ErrCellOccupied
}

// WinResult is the outcome of evaluating a board
type WinResult struct {
	Winner       model.Winner
	WinningCombo *model.Line
}

// CreateInitialGameState returns an empty board with X to move
func CreateInitialGameState() model.GameState {
	return model.GameState{
		CurrentPlayer: model.X,
		Winner:        model.NoWinner,
	}
}

// IsValidMove checks that pos is on the board and the cell is empty.
// Whose turn it is is not checked.
func IsValidMove(board model.Board, pos int) Validation {
	if !model.IsValidPosition(pos) {
		return Validation{Reason: "position out of range", Err: model.ErrInvalidPosition}
	}
	if board[pos] != model.Empty {
		return Validation{Reason: "cell occupied", Err: model.ErrCellOccupied}
	}
	return Validation{Valid: true}
}

// ApplyMove returns a copy of board with pos set to player's mark.
// Callers validate with IsValidMove first; an out of range pos returns the board unchanged.
func ApplyMove(board model.Board, pos int, player model.Mark) model.Board {
	if !model.IsValidPosition(pos) {
		return board
	}
	board[pos] = player
	return board
}

// CheckForWin evaluates all winning lines in fixed order. The first completed
// line wins; a full board with no completed line is a draw.
func CheckForWin(board model.Board) WinResult {
	for _, ln := range WinningLines {
		m := board[ln[0]]
		if m != model.Empty && board[ln[1]] == m && board[ln[2]] == m {
			combo := ln
			return WinResult{Winner: model.Winner(m), WinningCombo: &combo}
		}
	}
	if board.IsFull() {
		return WinResult{Winner: model.Draw}
	}
	return WinResult{Winner: model.NoWinner}
}

// SwitchPlayer toggles between X and O. Any other value yields X.
func SwitchPlayer(player model.Mark) model.Mark {
	if player == model.X {
		return model.O
	}
	return model.X
}

// Play validates and applies a move for the current player and returns the next state.
// The current player only changes when the game continues.
func Play(state model.GameState, pos int) (model.GameState, error) {
	if state.GameOver {
		return state, model.ErrGameOver
	}
	if v := IsValidMove(state.Board, pos); !v.Valid {
		return state, v.Err
	}

	board := ApplyMove(state.Board, pos, state.CurrentPlayer)
	result := CheckForWin(board)

	next := model.GameState{
		Board:         board,
		CurrentPlayer: state.CurrentPlayer,
		GameOver:      result.Winner != model.NoWinner,
		Winner:        result.Winner,
		WinningCombo:  result.WinningCombo,
	}
	if !next.GameOver {
		next.CurrentPlayer = SwitchPlayer(state.CurrentPlayer)
	}
	return next, nil
}

// Restore rebuilds a GameState from a board and the player to move,
// re-deriving the terminal fields. Used when state travels through a form or file.
func Restore(board model.Board, current model.Mark) model.GameState {
	if current != model.O {
		current = model.X
	}
	result := CheckForWin(board)
	return model.GameState{
		Board:         board,
		CurrentPlayer: current,
		GameOver:      result.Winner != model.NoWinner,
		Winner:        result.Winner,
		WinningCombo:  result.WinningCombo,
	}
}
