package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oxgrid/tictactoe/internal/dependencies/mocks"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/bot"
	"github.com/oxgrid/tictactoe/internal/services/engine"
)

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	random     *bot.RandomStrategy
	smart      *bot.SmartStrategy
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.random = bot.NewRandomStrategy(s.mockRandom)
	s.smart = bot.NewSmartStrategy(s.mockRandom)
}

func (s *StrategySuite) state(board string, turn model.Mark) model.GameState {
	b, err := model.ParseBoard(board)
	s.Require().NoError(err)
	return engine.Restore(b, turn)
}

// RandomStrategy

func (s *StrategySuite) TestRandom_EmptyBoard() {
	// 9 empty cells, random picks index 4
	s.mockRandom.QueueIntn(4)
	s.Equal(4, s.random.ChoosePosition(engine.CreateInitialGameState()))
}

func (s *StrategySuite) TestRandom_PartiallyFilledBoard() {
	// Empty cells are 2, 5, 8; pick the second
	s.mockRandom.QueueIntn(1)
	s.Equal(5, s.random.ChoosePosition(s.state("XO.OX.XO.", model.O)))
}

func (s *StrategySuite) TestRandom_FullBoard() {
	s.Equal(-1, s.random.ChoosePosition(s.state("XOXXOOOXX", model.O)))
}

// SmartStrategy

func (s *StrategySuite) TestSmart_TakesWin() {
	// O can win at 5 and must block at 2; winning comes first
	s.Equal(5, s.smart.ChoosePosition(s.state("XX.OO....", model.O)))
}

func (s *StrategySuite) TestSmart_Blocks() {
	s.Equal(2, s.smart.ChoosePosition(s.state("XX..O....", model.O)))
}

func (s *StrategySuite) TestSmart_TakesCenter() {
	s.Equal(4, s.smart.ChoosePosition(s.state("X........", model.O)))
}

func (s *StrategySuite) TestSmart_TakesCorner() {
	// Corners 2, 6, 8 are free; random picks the last
	s.mockRandom.QueueIntn(2)
	s.Equal(8, s.smart.ChoosePosition(s.state("X...O....", model.X)))
}

func (s *StrategySuite) TestSmart_FallsBackToEdge() {
	// O X O / . X . / X O X: nothing to complete or block, corners and center taken
	s.mockRandom.QueueIntn(0)
	s.Equal(3, s.smart.ChoosePosition(s.state("OXO.X.XOX", model.O)))
}

func (s *StrategySuite) TestSmart_ChoosesLegalMoves() {
	state := engine.CreateInitialGameState()
	for !state.GameOver {
		pos := s.smart.ChoosePosition(state)
		s.Require().True(engine.IsValidMove(state.Board, pos).Valid, "pos %d on %s", pos, state.Board)

		var err error
		state, err = engine.Play(state, pos)
		s.Require().NoError(err)
	}
	s.Equal(model.Draw, state.Winner, "smart against itself draws")
	s.Equal(-1, s.smart.ChoosePosition(state))
}

// Registry

func (s *StrategySuite) TestNew() {
	for _, name := range bot.Names() {
		strategy, err := bot.New(name, s.mockRandom)
		s.Require().NoError(err)
		s.NotNil(strategy)
	}

	_, err := bot.New("minimax", s.mockRandom)
	s.Error(err)
}
