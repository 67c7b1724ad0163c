package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/oxgrid/tictactoe/internal/config"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/session"
	"github.com/oxgrid/tictactoe/internal/storage/memory"
	"github.com/oxgrid/tictactoe/internal/testutil"
)

type FactorySuite struct {
	suite.Suite
	ctx context.Context
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *FactorySuite) serve(h http.Handler, method, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *FactorySuite) TestOpenStorage_Memory() {
	store, err := OpenStorage(s.ctx, TestConfig())
	s.Require().NoError(err)
	s.IsType(&memory.Storage{}, store)
	s.NoError(store.Ping(s.ctx))
}

func (s *FactorySuite) TestOpenStorage_SQLite() {
	cfg := TestConfig()
	cfg.StorageType = config.StorageSQLite
	cfg.SQLitePath = filepath.Join(s.T().TempDir(), "data", "players.db")

	store, err := OpenStorage(s.ctx, cfg)
	s.Require().NoError(err)
	defer store.Close()
	s.NoError(store.Ping(s.ctx))
	s.FileExists(cfg.SQLitePath)
}

func (s *FactorySuite) TestOpenStorage_Redis() {
	mr := miniredis.RunT(s.T())
	cfg := TestConfig()
	cfg.StorageType = config.StorageRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	store, err := OpenStorage(s.ctx, cfg)
	s.Require().NoError(err)
	defer store.Close()
	s.NoError(store.Ping(s.ctx))
}

func (s *FactorySuite) TestOpenStorage_Unknown() {
	cfg := TestConfig()
	cfg.StorageType = "cassandra"
	_, err := OpenStorage(s.ctx, cfg)
	s.ErrorContains(err, "unknown storage type")
}

func (s *FactorySuite) TestNew_WiresSQLiteApp() {
	cfg := TestConfig()
	cfg.StorageType = config.StorageSQLite
	cfg.SQLitePath = filepath.Join(s.T().TempDir(), "players.db")
	cfg.AuditSchedule = "@hourly"

	app, err := New(s.ctx, cfg, testutil.NopLogger())
	s.Require().NoError(err)
	defer func() { s.NoError(app.Close()) }()

	s.True(app.Scheduler.Enabled())
	s.NotNil(app.Metrics)

	rec := s.serve(app.Handler(), http.MethodGet, "/api/health", "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *FactorySuite) TestNew_InvalidAuditSchedule() {
	cfg := TestConfig()
	cfg.AuditSchedule = "every now and then"
	_, err := New(s.ctx, cfg, testutil.NopLogger())
	s.Error(err)
}

func (s *FactorySuite) TestHandler_RootByAccept() {
	app := NewTestApp()
	h := app.Handler()

	rec := s.serve(h, http.MethodGet, "/", "application/json")
	s.Equal(http.StatusOK, rec.Code)
	var body map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("Tic-Tac-Toe API", body["message"])

	rec = s.serve(h, http.MethodGet, "/", "text/html,application/xhtml+xml")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "text/html")
	s.Contains(rec.Body.String(), "Enter your name to start playing")
}

func (s *FactorySuite) TestHandler_MetricsToggle() {
	app := NewTestApp()
	rec := s.serve(app.Handler(), http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "tictactoe_players_created_total")

	cfg := TestConfig()
	cfg.MetricsEnabled = false
	app = NewTestAppWith(cfg, memory.New(), testutil.NopLogger())
	s.Nil(app.Metrics)
	rec = s.serve(app.Handler(), http.MethodGet, "/metrics", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

// A whole game played through a session lands in the store and the leaderboard
func (s *FactorySuite) TestGameReportedToLeaderboard() {
	app := NewTestApp()
	app.MockIDs.Queue("alice-id", "bob-id")

	alice, err := app.StatsService.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)
	_, err = app.StatsService.CreatePlayer(s.ctx, "Bob")
	s.Require().NoError(err)

	reporter := session.ReporterFunc(app.StatsService.UpdatePlayerStats)
	sess := session.New(reporter, session.WithPlayer(alice))
	for _, pos := range []int{0, 3, 1, 4, 2} {
		s.Require().NoError(sess.Move(pos))
	}
	s.Equal(session.StateEnded, sess.State())

	state, err := sess.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(session.StateSynced, state)
	s.Equal(1, sess.Player().Wins)

	board, err := app.StatsService.GetLeaderboard(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(model.PlayerID("alice-id"), board[0].Player.ID)
	s.Equal("100.0", board[0].WinRate)
	s.Equal(model.PlayerID("bob-id"), board[1].Player.ID)

	bad, err := app.Scheduler.RunAuditNow(s.ctx)
	s.Require().NoError(err)
	s.Empty(bad)
}

func (s *FactorySuite) TestClose() {
	app := NewTestApp()
	s.NoError(app.Close())
}
