package model

import "strings"

// BoardSize is the number of cells on a 3x3 board
const BoardSize = 9

// Mark is the content of a single cell
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Winner is the outcome of a board evaluation
type Winner string

const (
	NoWinner Winner = "" // game continues
	WinnerX  Winner = "X"
	WinnerO  Winner = "O"
	Draw     Winner = "DRAW"
)

// Line is a triple of board positions
type Line [3]int

// Board holds 9 cells in row-major order, positions 0-8.
// It is a value type: copies never share state.
type Board [BoardSize]Mark

// IsValidPosition returns true if pos is within 0-8
func IsValidPosition(pos int) bool {
	return pos >= 0 && pos < BoardSize
}

// IsFull returns true if no cell is empty
func (b Board) IsFull() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// EmptyCount returns the number of empty cells
func (b Board) EmptyCount() int {
	count := 0
	for _, m := range b {
		if m == Empty {
			count++
		}
	}
	return count
}

// String encodes the board as 9 characters, '.' for empty cells
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)
	for _, m := range b {
		if m == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(string(m))
	}
	return sb.String()
}

// ParseBoard decodes the String form of a board
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != BoardSize {
		return b, ErrInvalidBoard
	}
	for i := 0; i < BoardSize; i++ {
		switch s[i] {
		case '.':
			b[i] = Empty
		case 'X':
			b[i] = X
		case 'O':
			b[i] = O
		default:
			return Board{}, ErrInvalidBoard
		}
	}
	return b, nil
}

// ParseMark decodes "X" or "O"
func ParseMark(s string) (Mark, bool) {
	switch Mark(s) {
	case X:
		return X, true
	case O:
		return O, true
	}
	return Empty, false
}

// GameState is the full client-side state of one game
type GameState struct {
	Board         Board
	CurrentPlayer Mark
	GameOver      bool
	Winner        Winner
	WinningCombo  *Line // nil unless a line was completed
}

// InWinningCombo reports whether pos belongs to the completed line
func (g GameState) InWinningCombo(pos int) bool {
	if g.WinningCombo == nil {
		return false
	}
	for _, p := range g.WinningCombo {
		if p == pos {
			return true
		}
	}
	return false
}
