package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oxgrid/tictactoe/internal/dependencies/mocks"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/bot"
	"github.com/oxgrid/tictactoe/internal/services/engine"
)

// fakeReporter records calls and fails while failNext > 0
type fakeReporter struct {
	mu       sync.Mutex
	calls    []model.GameResult
	failNext int
	block    chan struct{}
}

func (r *fakeReporter) ReportResult(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, result)
	if r.failNext > 0 {
		r.failNext--
		return nil, errors.New("network down")
	}
	p := &model.Player{ID: id, Name: "Alice"}
	p.Apply(result)
	return p, nil
}

func (r *fakeReporter) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type SessionSuite struct {
	suite.Suite
	reporter *fakeReporter
	player   *model.Player
	ctx      context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.reporter = &fakeReporter{}
	s.player = &model.Player{ID: "p-1", Name: "Alice"}
	s.ctx = context.Background()
}

func (s *SessionSuite) play(sess *Session, moves ...int) {
	for _, pos := range moves {
		s.Require().NoError(sess.Move(pos))
	}
}

// X wins on the top row
var xWins = []int{0, 3, 1, 4, 2}

// O wins on the middle row
var oWins = []int{0, 3, 1, 4, 8, 5}

// Ends as XOX / XOO / OXX
var draw = []int{0, 1, 2, 4, 3, 5, 7, 6, 8}

func (s *SessionSuite) TestResultFor() {
	s.Equal(model.ResultWin, ResultFor(model.WinnerX))
	s.Equal(model.ResultLoss, ResultFor(model.WinnerO))
	s.Equal(model.ResultTie, ResultFor(model.Draw))
}

func (s *SessionSuite) TestNewSessionIsPlaying() {
	sess := New(s.reporter)
	s.Equal(StatePlaying, sess.State())
	s.Equal(engine.CreateInitialGameState(), sess.Game())
	_, over := sess.Result()
	s.False(over)
}

func (s *SessionSuite) TestGameEndMovesToEnded() {
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, xWins...)

	s.Equal(StateEnded, sess.State())
	result, over := sess.Result()
	s.True(over)
	s.Equal(model.ResultWin, result)
	s.Zero(s.reporter.callCount(), "ending a game never reports by itself")
}

func (s *SessionSuite) TestMoveAfterEndRejected() {
	sess := New(s.reporter)
	s.play(sess, xWins...)
	s.ErrorIs(sess.Move(8), ErrNotPlaying)
}

func (s *SessionSuite) TestInvalidMoveKeepsState() {
	sess := New(s.reporter)
	s.play(sess, 0)
	before := sess.Game()

	s.ErrorIs(sess.Move(0), model.ErrCellOccupied)
	s.ErrorIs(sess.Move(9), model.ErrInvalidPosition)
	s.Equal(before, sess.Game())
}

func (s *SessionSuite) TestSyncReportsOnce() {
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, xWins...)

	st, err := sess.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(StateSynced, st)
	s.Equal(1, sess.Player().Wins)

	st, err = sess.Sync(s.ctx)
	s.NoError(err)
	s.Equal(StateSynced, st)
	s.Equal(1, s.reporter.callCount())
}

func (s *SessionSuite) TestSyncResultMapping() {
	cases := []struct {
		moves []int
		want  model.GameResult
	}{
		{xWins, model.ResultWin},
		{oWins, model.ResultLoss},
		{draw, model.ResultTie},
	}
	for _, tc := range cases {
		reporter := &fakeReporter{}
		sess := New(reporter, WithPlayer(s.player))
		s.play(sess, tc.moves...)
		_, err := sess.Sync(s.ctx)
		s.Require().NoError(err)
		s.Equal([]model.GameResult{tc.want}, reporter.calls)
	}
}

func (s *SessionSuite) TestSyncWhilePlayingIsNoop() {
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, 0)

	st, err := sess.Sync(s.ctx)
	s.NoError(err)
	s.Equal(StatePlaying, st)
	s.Zero(s.reporter.callCount())
}

func (s *SessionSuite) TestSyncWithoutPlayerStaysEnded() {
	sess := New(s.reporter)
	s.play(sess, xWins...)

	st, err := sess.Sync(s.ctx)
	s.NoError(err)
	s.Equal(StateEnded, st)
	s.Zero(s.reporter.callCount())

	// Registering afterwards allows the report
	sess.SetPlayer(s.player)
	st, err = sess.Sync(s.ctx)
	s.NoError(err)
	s.Equal(StateSynced, st)
}

func (s *SessionSuite) TestSyncFailureThenRetry() {
	s.reporter.failNext = 1
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, draw...)

	st, err := sess.Sync(s.ctx)
	s.Error(err)
	s.Equal(StateSyncFailed, st)
	s.Error(sess.LastError())

	st, err = sess.Retry(s.ctx)
	s.Require().NoError(err)
	s.Equal(StateSynced, st)
	s.NoError(sess.LastError())
	s.Equal(1, sess.Player().Ties)
	s.Equal(2, s.reporter.callCount())
}

func (s *SessionSuite) TestRetryOutsideFailureIsNoop() {
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, xWins...)

	st, err := sess.Retry(s.ctx)
	s.NoError(err)
	s.Equal(StateEnded, st)
	s.Zero(s.reporter.callCount())
}

func (s *SessionSuite) TestConcurrentSyncReportsOnce() {
	s.reporter.block = make(chan struct{})
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, xWins...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sess.Sync(s.ctx)
	}()

	// Wait until the first report is in flight
	s.Eventually(func() bool { return sess.State() == StateSyncing }, timeout, tick)

	st, err := sess.Sync(s.ctx)
	s.NoError(err)
	s.Equal(StateSyncing, st)
	s.ErrorIs(sess.Reset(), ErrSyncInProgress)

	close(s.reporter.block)
	<-done
	s.Equal(StateSynced, sess.State())
	s.Equal(1, s.reporter.callCount())
}

func (s *SessionSuite) TestResetStartsNewGame() {
	sess := New(s.reporter, WithPlayer(s.player))
	s.play(sess, xWins...)
	_, err := sess.Sync(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(sess.Reset())
	s.Equal(StatePlaying, sess.State())
	s.Equal(engine.CreateInitialGameState(), sess.Game())

	// The next game reports again
	s.play(sess, draw...)
	_, err = sess.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, s.reporter.callCount())
}

func (s *SessionSuite) TestResetMidGame() {
	sess := New(s.reporter)
	s.play(sess, 0, 4)
	s.Require().NoError(sess.Reset())
	s.Equal(model.Board{}, sess.Game().Board)
}

func (s *SessionSuite) TestResume() {
	ended := engine.Restore(model.Board{model.X, model.X, model.X, model.O, model.O}, model.X)
	live := engine.CreateInitialGameState()

	s.Equal(StatePlaying, Resume(s.reporter, live, StateSynced).State())
	s.Equal(StateEnded, Resume(s.reporter, ended, StatePlaying).State())
	s.Equal(StateEnded, Resume(s.reporter, ended, "").State())
	s.Equal(StateSynced, Resume(s.reporter, ended, StateSynced).State())
	s.Equal(StateSyncFailed, Resume(s.reporter, ended, StateSyncFailed).State())
	s.Equal(StateSyncFailed, Resume(s.reporter, ended, StateSyncing).State())
}

func (s *SessionSuite) TestOpponentAnswersMoves() {
	rnd := mocks.NewMockRandom()
	sess := New(s.reporter, WithOpponent(bot.NewRandomStrategy(rnd)))

	// Random always takes the first empty cell
	s.Require().NoError(sess.Move(4))
	game := sess.Game()
	s.Equal(model.X, game.Board[4])
	s.Equal(model.O, game.Board[0])
	s.Equal(model.X, game.CurrentPlayer)
}

func (s *SessionSuite) TestOpponentCanWin() {
	rnd := mocks.NewMockRandom()
	sess := New(s.reporter, WithPlayer(s.player), WithOpponent(bot.NewRandomStrategy(rnd)))

	// X: 8, 7, 5 ; O takes 0, 1, 2 and wins the top row
	s.play(sess, 8, 7, 5)
	s.Equal(StateEnded, sess.State())
	s.Equal(model.WinnerO, sess.Game().Winner)

	_, err := sess.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.GameResult{model.ResultLoss}, s.reporter.calls)
}

func (s *SessionSuite) TestReporterFunc() {
	var got model.GameResult
	r := ReporterFunc(func(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
		got = result
		return &model.Player{ID: id}, nil
	})
	sess := New(r, WithPlayer(s.player))
	s.play(sess, oWins...)
	_, err := sess.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.ResultLoss, got)
}

func (s *SessionSuite) TestParseState() {
	for _, st := range []State{StatePlaying, StateEnded, StateSyncing, StateSynced, StateSyncFailed} {
		got, ok := ParseState(string(st))
		s.True(ok)
		s.Equal(st, got)
	}
	_, ok := ParseState("done")
	s.False(ok)
}
