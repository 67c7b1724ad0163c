// Package storagetest provides a conformance suite run against every PlayerStore backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage"
)

// Suite exercises the PlayerStore contract. Backends embed it and set NewStore.
type Suite struct {
	suite.Suite
	// NewStore returns an empty store; it is called before every test
	NewStore func() storage.PlayerStore

	Store storage.PlayerStore
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStore, "NewStore must be set")
	s.Store = s.NewStore()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// Seed creates a player with the given counters and creation time
func (s *Suite) Seed(id, name string, wins, losses, ties int, createdAt int64) *model.Player {
	p := &model.Player{
		ID:         model.PlayerID(id),
		Name:       name,
		Wins:       wins,
		Losses:     losses,
		Ties:       ties,
		TotalGames: wins + losses + ties,
		CreatedAt:  createdAt,
	}
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) ids(players []*model.Player) []model.PlayerID {
	out := make([]model.PlayerID, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

// Create / get

func (s *Suite) TestCreateAndGetPlayer() {
	seeded := s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	got, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(seeded, got)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreateDuplicateName() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	err := s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p-2", Name: "Alice", CreatedAt: 2000})
	s.ErrorIs(err, model.ErrPlayerNameTaken)

	_, err = s.Store.GetPlayer(s.Ctx, "p-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestNamesAreCaseSensitive() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)
	s.Seed("p-2", "alice", 0, 0, 0, 2000)

	got, err := s.Store.GetPlayerByName(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p-2"), got.ID)

	_, err = s.Store.GetPlayerByName(s.Ctx, "ALICE")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerByName() {
	s.Seed("p-1", "Alice", 1, 2, 3, 1000)

	got, err := s.Store.GetPlayerByName(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p-1"), got.ID)
	s.Equal(6, got.TotalGames)

	_, err = s.Store.GetPlayerByName(s.Ctx, "Bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayersAreCopies() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	got, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	got.Wins = 99

	again, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(0, again.Wins)
}

// Listing

func (s *Suite) TestListPlayersEmpty() {
	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestListPlayersNewestFirst() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)
	s.Seed("p-2", "Bob", 0, 0, 0, 3000)
	s.Seed("p-3", "Carol", 0, 0, 0, 2000)

	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-2", "p-3", "p-1"}, s.ids(players))
}

// Stats

func (s *Suite) TestIncrementStatsWin() {
	s.Seed("p-1", "Alice", 2, 1, 0, 1000)

	got, err := s.Store.IncrementStats(s.Ctx, "p-1", model.ResultWin)
	s.Require().NoError(err)
	s.Equal(3, got.Wins)
	s.Equal(1, got.Losses)
	s.Equal(0, got.Ties)
	s.Equal(4, got.TotalGames)
	s.Equal(int64(1000), got.CreatedAt)

	stored, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(got, stored)
}

func (s *Suite) TestIncrementStatsEachResult() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	_, err := s.Store.IncrementStats(s.Ctx, "p-1", model.ResultLoss)
	s.Require().NoError(err)
	got, err := s.Store.IncrementStats(s.Ctx, "p-1", model.ResultTie)
	s.Require().NoError(err)

	s.Equal(0, got.Wins)
	s.Equal(1, got.Losses)
	s.Equal(1, got.Ties)
	s.Equal(2, got.TotalGames)
}

func (s *Suite) TestIncrementStatsUnknownPlayer() {
	_, err := s.Store.IncrementStats(s.Ctx, "missing", model.ResultWin)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestIncrementStatsInvalidResult() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	_, err := s.Store.IncrementStats(s.Ctx, "p-1", model.GameResult("draw"))
	s.ErrorIs(err, model.ErrInvalidResult)

	got, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(0, got.TotalGames)
}

func (s *Suite) TestTotalsStayConsistent() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)
	sequence := []model.GameResult{
		model.ResultWin, model.ResultWin, model.ResultLoss, model.ResultTie,
		model.ResultLoss, model.ResultWin, model.ResultTie, model.ResultTie,
	}
	for _, r := range sequence {
		got, err := s.Store.IncrementStats(s.Ctx, "p-1", r)
		s.Require().NoError(err)
		s.True(got.StatsConsistent(), "after %s: %+v", r, got)
	}

	got, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(3, got.Wins)
	s.Equal(2, got.Losses)
	s.Equal(3, got.Ties)
	s.Equal(8, got.TotalGames)
}

func (s *Suite) TestConcurrentIncrements() {
	s.Seed("p-1", "Alice", 0, 0, 0, 1000)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Store.IncrementStats(s.Ctx, "p-1", model.ResultWin); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.Store.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(workers, got.Wins)
	s.Equal(workers, got.TotalGames)
}

// Leaderboard

func (s *Suite) TestTopPlayersTieBreakOnFewerGames() {
	s.Seed("a", "A", 5, 5, 0, 1000)
	s.Seed("b", "B", 5, 2, 0, 2000)

	players, err := s.Store.TopPlayers(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"b"}, s.ids(players))
}

func (s *Suite) TestTopPlayersOrdering() {
	s.Seed("p-1", "One", 1, 0, 0, 1000)
	s.Seed("p-2", "Two", 3, 4, 0, 2000)
	s.Seed("p-3", "Three", 3, 1, 0, 3000)
	s.Seed("p-4", "Four", 0, 0, 0, 4000)
	// same wins and games as p-3 but created later
	s.Seed("p-5", "Five", 3, 0, 1, 5000)

	players, err := s.Store.TopPlayers(s.Ctx, 10)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-3", "p-5", "p-2", "p-1", "p-4"}, s.ids(players))
}

func (s *Suite) TestTopPlayersLimit() {
	for i := 0; i < 5; i++ {
		s.Seed(fmt.Sprintf("p-%d", i), fmt.Sprintf("Player %d", i), i, 0, 0, int64(1000+i))
	}

	players, err := s.Store.TopPlayers(s.Ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-4", "p-3", "p-2"}, s.ids(players))

	players, err = s.Store.TopPlayers(s.Ctx, 0)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestTopPlayersTieAcrossLimitBoundary() {
	// Equal scores beyond the cut must still be ordered by creation time
	s.Seed("late", "Late", 2, 0, 0, 3000)
	s.Seed("early", "Early", 2, 0, 0, 1000)
	s.Seed("mid", "Mid", 2, 0, 0, 2000)

	players, err := s.Store.TopPlayers(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"early"}, s.ids(players))
}

func (s *Suite) TestTopPlayersReflectsIncrements() {
	s.Seed("a", "A", 1, 0, 0, 1000)
	s.Seed("b", "B", 0, 0, 0, 2000)

	_, err := s.Store.IncrementStats(s.Ctx, "b", model.ResultWin)
	s.Require().NoError(err)
	_, err = s.Store.IncrementStats(s.Ctx, "b", model.ResultWin)
	s.Require().NoError(err)

	players, err := s.Store.TopPlayers(s.Ctx, 10)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"b", "a"}, s.ids(players))
}

func (s *Suite) TestPing() {
	s.NoError(s.Store.Ping(s.Ctx))
}
