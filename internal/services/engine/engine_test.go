package engine

import (
	"testing"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/stretchr/testify/suite"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

// Helper to build a board from its 9-character form
func (s *EngineSuite) board(str string) model.Board {
	b, err := model.ParseBoard(str)
	s.Require().NoError(err)
	return b
}

func (s *EngineSuite) TestInitialState() {
	state := CreateInitialGameState()

	s.Equal(model.Board{}, state.Board)
	s.Equal(model.X, state.CurrentPlayer)
	s.False(state.GameOver)
	s.Equal(model.NoWinner, state.Winner)
	s.Nil(state.WinningCombo)
}

// Move validation

func (s *EngineSuite) TestIsValidMoveEmptyCell() {
	v := IsValidMove(model.Board{}, 4)
	s.True(v.Valid)
	s.Empty(v.Reason)
	s.NoError(v.Err)
}

func (s *EngineSuite) TestIsValidMoveOutOfRange() {
	for _, pos := range []int{-1, 9, 100} {
		v := IsValidMove(model.Board{}, pos)
		s.False(v.Valid)
		s.Equal("position out of range", v.Reason)
		s.ErrorIs(v.Err, model.ErrInvalidPosition)
	}
}

func (s *EngineSuite) TestIsValidMoveOccupied() {
	b := s.board("X........")
	v := IsValidMove(b, 0)
	s.False(v.Valid)
	s.Equal("cell occupied", v.Reason)
	s.ErrorIs(v.Err, model.ErrCellOccupied)
}

func (s *EngineSuite) TestIsValidMoveIsIdempotent() {
	b := s.board("XO.......")
	for pos := -1; pos <= 9; pos++ {
		s.Equal(IsValidMove(b, pos), IsValidMove(b, pos))
	}
}

// Applying moves

func (s *EngineSuite) TestApplyMoveDoesNotMutateInput() {
	b := s.board("X...O....")
	before := b

	next := ApplyMove(b, 8, model.X)

	s.Equal(before, b)
	for i := 0; i < model.BoardSize; i++ {
		if i == 8 {
			s.Equal(model.X, next[i])
			continue
		}
		s.Equal(b[i], next[i])
	}
}

func (s *EngineSuite) TestApplyMoveOutOfRangeReturnsSameBoard() {
	b := s.board("X........")
	s.Equal(b, ApplyMove(b, 12, model.O))
}

// Win detection

func (s *EngineSuite) TestCheckForWinEveryLine() {
	for _, ln := range WinningLines {
		for _, mark := range []model.Mark{model.X, model.O} {
			var b model.Board
			for _, pos := range ln {
				b[pos] = mark
			}
			result := CheckForWin(b)
			s.Equal(model.Winner(mark), result.Winner)
			s.Require().NotNil(result.WinningCombo)
			s.Equal(ln, *result.WinningCombo)
		}
	}
}

func (s *EngineSuite) TestCheckForWinInProgress() {
	result := CheckForWin(s.board("XO.X.O..."))
	s.Equal(model.NoWinner, result.Winner)
	s.Nil(result.WinningCombo)
}

func (s *EngineSuite) TestCheckForWinDraw() {
	result := CheckForWin(s.board("XOXXOOOXX"))
	s.Equal(model.Draw, result.Winner)
	s.Nil(result.WinningCombo)
}

func (s *EngineSuite) TestCheckForWinFullBoardWithLineIsNotDraw() {
	result := CheckForWin(s.board("XXXOOXOXO"))
	s.Equal(model.WinnerX, result.Winner)
	s.Equal(model.Line{0, 1, 2}, *result.WinningCombo)
}

func (s *EngineSuite) TestCheckForWinOrderIsDeterministic() {
	// Malformed board with a row and a column complete: rows are checked first
	result := CheckForWin(s.board("OOOO..O.."))
	s.Equal(model.WinnerO, result.Winner)
	s.Equal(model.Line{0, 1, 2}, *result.WinningCombo)

	// Both X and O have rows: the earlier row wins
	result = CheckForWin(s.board("...OOOXXX"))
	s.Equal(model.WinnerO, result.Winner)
	s.Equal(model.Line{3, 4, 5}, *result.WinningCombo)

	// Column before diagonal
	result = CheckForWin(s.board("X..XX.X.X"))
	s.Equal(model.WinnerX, result.Winner)
	s.Equal(model.Line{0, 3, 6}, *result.WinningCombo)
}

// Exhaustive check over every board reachable by encoding each cell in base 3
func (s *EngineSuite) TestCheckForWinAllBoards() {
	marks := [3]model.Mark{model.Empty, model.X, model.O}
	total := 1
	for i := 0; i < model.BoardSize; i++ {
		total *= 3
	}
	for n := 0; n < total; n++ {
		var b model.Board
		v := n
		for i := 0; i < model.BoardSize; i++ {
			b[i] = marks[v%3]
			v /= 3
		}

		hasLine := false
		for _, ln := range WinningLines {
			if b[ln[0]] != model.Empty && b[ln[0]] == b[ln[1]] && b[ln[1]] == b[ln[2]] {
				hasLine = true
				break
			}
		}

		result := CheckForWin(b)
		switch {
		case hasLine:
			s.Require().Contains([]model.Winner{model.WinnerX, model.WinnerO}, result.Winner, b.String())
			s.Require().NotNil(result.WinningCombo, b.String())
		case b.IsFull():
			s.Require().Equal(model.Draw, result.Winner, b.String())
		default:
			s.Require().Equal(model.NoWinner, result.Winner, b.String())
		}
	}
}

func (s *EngineSuite) TestSwitchPlayer() {
	s.Equal(model.O, SwitchPlayer(model.X))
	s.Equal(model.X, SwitchPlayer(model.O))
	s.Equal(model.X, SwitchPlayer(model.Empty))
}

// Play

func (s *EngineSuite) TestPlayAlternatesPlayers() {
	state := CreateInitialGameState()

	state, err := Play(state, 0)
	s.Require().NoError(err)
	s.Equal(model.X, state.Board[0])
	s.Equal(model.O, state.CurrentPlayer)

	state, err = Play(state, 4)
	s.Require().NoError(err)
	s.Equal(model.O, state.Board[4])
	s.Equal(model.X, state.CurrentPlayer)
	s.False(state.GameOver)
}

func (s *EngineSuite) TestPlayOccupiedCellLeavesStateUnchanged() {
	state, err := Play(CreateInitialGameState(), 0)
	s.Require().NoError(err)

	next, err := Play(state, 0)
	s.ErrorIs(err, model.ErrCellOccupied)
	s.Equal(state, next)
}

func (s *EngineSuite) TestPlayWinEndsGame() {
	state := CreateInitialGameState()
	var err error
	// X: 0, 1, 2  O: 3, 4
	for _, pos := range []int{0, 3, 1, 4, 2} {
		state, err = Play(state, pos)
		s.Require().NoError(err)
	}

	s.True(state.GameOver)
	s.Equal(model.WinnerX, state.Winner)
	s.Equal(model.X, state.CurrentPlayer, "winner stays current")
	s.True(state.InWinningCombo(1))
	s.False(state.InWinningCombo(3))

	_, err = Play(state, 8)
	s.ErrorIs(err, model.ErrGameOver)
}

func (s *EngineSuite) TestPlayDraw() {
	state := CreateInitialGameState()
	var err error
	// Ends as XOX / XOO / OXX
	for _, pos := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		state, err = Play(state, pos)
		s.Require().NoError(err)
	}

	s.True(state.GameOver)
	s.Equal(model.Draw, state.Winner)
	s.Nil(state.WinningCombo)
	s.Equal(model.X, state.CurrentPlayer)
}

func (s *EngineSuite) TestRestore() {
	state := Restore(s.board("XXXOO...."), model.O)
	s.True(state.GameOver)
	s.Equal(model.WinnerX, state.Winner)
	s.Equal(model.O, state.CurrentPlayer)

	state = Restore(s.board("X........"), model.Empty)
	s.False(state.GameOver)
	s.Equal(model.X, state.CurrentPlayer)
}
