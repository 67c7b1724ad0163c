// Package session drives a single local game and reports its result once.
//
// A session moves through these states:
//
//	playing -> ended -> syncing -> synced
//	                           \-> sync_failed -> syncing (Retry)
//
// Reporting only happens on an explicit Sync or Retry, so a finished game is
// reported at most once no matter how often the caller re-renders.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/bot"
	"github.com/oxgrid/tictactoe/internal/services/engine"
)

// State is the reporting phase of a session
type State string

const (
	StatePlaying    State = "playing"     // Game in progress
	StateEnded      State = "ended"       // Terminal board, result not yet reported
	StateSyncing    State = "syncing"     // Report in flight
	StateSynced     State = "synced"      // Result stored
	StateSyncFailed State = "sync_failed" // Report failed, Retry allowed
)

// ParseState decodes a State, reporting whether it is known
func ParseState(s string) (State, bool) {
	switch st := State(s); st {
	case StatePlaying, StateEnded, StateSyncing, StateSynced, StateSyncFailed:
		return st, true
	}
	return "", false
}

// LocalMark is the side played by the local player
const LocalMark = model.X

var (
	ErrSyncInProgress = errors.New("result report in progress")
	ErrNotPlaying     = errors.New("game is not in progress")
)

// Reporter stores a finished game's result for a player
type Reporter interface {
	ReportResult(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error)
}

// ReporterFunc adapts a function to a Reporter
type ReporterFunc func(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error)

// ReportResult calls f
func (f ReporterFunc) ReportResult(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	return f(ctx, id, result)
}

// ResultFor maps a winner to the local player's result: X wins, DRAW ties,
// anything else is a loss.
func ResultFor(winner model.Winner) model.GameResult {
	switch winner {
	case model.Draw:
		return model.ResultTie
	case model.WinnerX:
		return model.ResultWin
	}
	return model.ResultLoss
}

// Session is safe for concurrent use
type Session struct {
	mu       sync.Mutex
	reporter Reporter
	opponent bot.Strategy // nil for a two-player game on one device

	game    model.GameState
	state   State
	player  *model.Player
	lastErr error
}

// Option customises a Session
type Option func(*Session)

// WithOpponent lets a bot answer every move as O
func WithOpponent(strategy bot.Strategy) Option {
	return func(s *Session) { s.opponent = strategy }
}

// WithPlayer attaches the registered player results are reported for
func WithPlayer(p *model.Player) Option {
	return func(s *Session) { s.player = clonePlayer(p) }
}

// New starts a session on a fresh board
func New(reporter Reporter, opts ...Option) *Session {
	s := &Session{
		reporter: reporter,
		game:     engine.CreateInitialGameState(),
		state:    StatePlaying,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resume rebuilds a session from a board that travelled outside the process.
// The state is re-derived from the board: a live board is always playing, and a
// terminal board keeps the given reporting state (ended if unknown or playing).
// A syncing state cannot survive a round trip and resumes as sync_failed.
func Resume(reporter Reporter, game model.GameState, state State, opts ...Option) *Session {
	s := New(reporter, opts...)
	s.game = game
	switch {
	case !game.GameOver:
		s.state = StatePlaying
	case state == StateSyncing:
		s.state = StateSyncFailed
	case state == StateSynced || state == StateSyncFailed:
		s.state = state
	default:
		s.state = StateEnded
	}
	return s
}

// Move plays pos for the side to move. With an opponent configured the bot
// answers immediately while the game continues.
func (s *Session) Move(pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return ErrNotPlaying
	}

	next, err := engine.Play(s.game, pos)
	if err != nil {
		return err
	}
	s.game = next

	if s.opponent != nil && !s.game.GameOver && s.game.CurrentPlayer != LocalMark {
		reply := s.opponent.ChoosePosition(s.game)
		next, err := engine.Play(s.game, reply)
		if err != nil {
			return err
		}
		s.game = next
	}

	if s.game.GameOver {
		s.state = StateEnded
	}
	return nil
}

// Sync reports the result of an ended game. Outside ended and sync_failed, or
// without a player, it does nothing and returns the current state.
func (s *Session) Sync(ctx context.Context) (State, error) {
	s.mu.Lock()
	if (s.state != StateEnded && s.state != StateSyncFailed) || s.player == nil {
		st := s.state
		s.mu.Unlock()
		return st, nil
	}
	s.state = StateSyncing
	id := s.player.ID
	result := ResultFor(s.game.Winner)
	s.mu.Unlock()

	updated, err := s.reporter.ReportResult(ctx, id, result)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateSyncFailed
		s.lastErr = err
		return s.state, err
	}
	s.state = StateSynced
	s.lastErr = nil
	s.player = clonePlayer(updated)
	return s.state, nil
}

// Retry re-attempts a failed report; in any other state it does nothing
func (s *Session) Retry(ctx context.Context) (State, error) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st != StateSyncFailed {
		return st, nil
	}
	return s.Sync(ctx)
}

// Reset starts a new game, unless a report is in flight
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSyncing {
		return ErrSyncInProgress
	}
	s.game = engine.CreateInitialGameState()
	s.state = StatePlaying
	s.lastErr = nil
	return nil
}

// SetPlayer attaches or replaces the registered player
func (s *Session) SetPlayer(p *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = clonePlayer(p)
}

// Game returns a snapshot of the board state
func (s *Session) Game() model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// State returns the current reporting phase
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Player returns a copy of the attached player, or nil
func (s *Session) Player() *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlayer(s.player)
}

// LastError returns the error from the most recent failed report
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Result returns the local player's result once the game is over
func (s *Session) Result() (model.GameResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.game.GameOver {
		return "", false
	}
	return ResultFor(s.game.Winner), true
}

func clonePlayer(p *model.Player) *model.Player {
	if p == nil {
		return nil
	}
	return p.Clone()
}
