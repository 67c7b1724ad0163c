package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/factory"
	"github.com/oxgrid/tictactoe/internal/model"
)

type CLISuite struct {
	suite.Suite
	app         *factory.TestApp
	server      *httptest.Server
	profile     string
	failReports atomic.Int32 // number of upcoming stats posts to fail
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.failReports.Store(0)
	handler := s.app.Handler()
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/stats") && s.failReports.Load() > 0 {
			s.failReports.Add(-1)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	s.profile = filepath.Join(s.T().TempDir(), "ttt", "player.json")
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// run executes the CLI with stdin and returns stdout and stderr
func (s *CLISuite) run(stdin string, args ...string) (string, string, error) {
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--profile", s.profile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (s *CLISuite) mustRun(stdin string, args ...string) string {
	stdout, stderr, err := s.run(stdin, args...)
	s.Require().NoError(err, stderr)
	return stdout
}

func (s *CLISuite) storedPlayer(name string) *model.Player {
	p, err := s.app.StatsService.GetPlayerByName(context.Background(), name)
	s.Require().NoError(err)
	return p
}

func (s *CLISuite) TestHealth() {
	out := s.mustRun("", "health")
	s.Equal("Status: ok\n", out)
}

func (s *CLISuite) TestInvalidOutputFormat() {
	_, _, err := s.run("", "-o", "yaml", "health")
	s.ErrorContains(err, "unknown output format")
}

func (s *CLISuite) TestPlayerCreate() {
	out := s.mustRun("", "player", "create", "--name", "Alice")
	s.Contains(out, "Player: Alice (player-1)")
	s.Contains(out, "Wins: 0 | Losses: 0 | Ties: 0 | Total: 0")
	s.Contains(out, "Win rate: 0.0%")
	s.NoFileExists(s.profile)

	out = s.mustRun("", "-o", "json", "player", "create", "--name", "Bob", "--save")
	var p response.Player
	s.Require().NoError(json.Unmarshal([]byte(out), &p))
	s.Equal("Bob", p.Name)

	profile, err := (&Config{ProfilePath: s.profile}).LoadProfile()
	s.Require().NoError(err)
	s.Equal(&Profile{ID: p.ID, Name: "Bob"}, profile)
}

func (s *CLISuite) TestPlayerCreate_Duplicate() {
	s.mustRun("", "player", "create", "--name", "Alice")
	_, _, err := s.run("", "player", "create", "--name", "Alice")
	s.Require().Error(err)
	s.True(errors.Is(err, model.ErrPlayerNameTaken))
	s.Contains(err.Error(), "Player name already exists")
}

func (s *CLISuite) TestPlayerGetAndFind() {
	s.mustRun("", "player", "create", "--name", "Alice Smith")
	id := string(s.storedPlayer("Alice Smith").ID)

	s.Contains(s.mustRun("", "player", "get", id), "Player: Alice Smith")
	s.Contains(s.mustRun("", "player", "find", "Alice Smith"), "("+id+")")

	_, _, err := s.run("", "player", "get", "nonexistent")
	s.True(errors.Is(err, model.ErrPlayerNotFound))

	_, _, err = s.run("", "player", "get")
	s.ErrorContains(err, "no profile")
}

func (s *CLISuite) TestPlayerList() {
	s.Contains(s.mustRun("", "player", "list"), "No players yet.")

	s.mustRun("", "player", "create", "--name", "Alice")
	s.mustRun("", "player", "create", "--name", "Bob")
	out := s.mustRun("", "player", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	s.Require().Len(lines, 3)
	s.Contains(lines[0], "NAME")
}

func (s *CLISuite) TestPlayerStats() {
	s.mustRun("", "player", "create", "--name", "Alice", "--save")

	out := s.mustRun("", "player", "stats", "--result", "win")
	s.Contains(out, "Player stats updated: win")
	s.Contains(out, "Wins: 1 | Losses: 0 | Ties: 0 | Total: 1")

	_, _, err := s.run("", "player", "stats", "--result", "draw")
	s.ErrorContains(err, "--result must be win, loss or tie")

	_, _, err = s.run("", "player", "stats", "nonexistent", "--result", "tie")
	s.True(errors.Is(err, model.ErrPlayerNotFound))
}

func (s *CLISuite) TestLeaderboard() {
	s.Contains(s.mustRun("", "leaderboard"), "No players yet. Be the first to play!")

	s.mustRun("", "player", "create", "--name", "Alice")
	s.mustRun("", "player", "create", "--name", "Bob")
	s.mustRun("", "player", "stats", string(s.storedPlayer("Bob").ID), "--result", "win")

	out := s.mustRun("", "leaderboard", "--limit", "1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	s.Require().Len(lines, 2)
	s.Contains(lines[1], "Bob")
	s.Contains(lines[1], "100.0%")

	out = s.mustRun("", "-o", "json", "leaderboard")
	var entries []response.LeaderboardEntry
	s.Require().NoError(json.Unmarshal([]byte(out), &entries))
	s.Len(entries, 2)
	s.Equal(1, entries[0].Rank)
}

func (s *CLISuite) TestPlay_HotSeatWinIsReported() {
	// X takes the top row while O plays the middle
	out := s.mustRun("1\n4\n2\n5\n3\nn\n", "play", "--name", "Alice")

	s.Contains(out, "Welcome, Alice!")
	s.Contains(out, "Winner: X")
	s.Contains(out, "Result saved: win")
	s.Contains(out, "Wins: 1 | Losses: 0 | Ties: 0")
	s.Equal(1, s.storedPlayer("Alice").Wins)

	// The profile is reused next time
	out = s.mustRun("q\n", "play")
	s.Contains(out, "Welcome back, Alice!")
}

func (s *CLISuite) TestPlay_PromptsForName() {
	out := s.mustRun("Carol\nq\n", "play")
	s.Contains(out, "Enter your name: ")
	s.Contains(out, "Welcome, Carol!")
	s.FileExists(s.profile)
}

func (s *CLISuite) TestPlay_ExistingNameIsAdopted() {
	s.mustRun("", "player", "create", "--name", "Alice")
	out := s.mustRun("q\n", "play", "--name", "Alice")
	s.Contains(out, "Playing as existing player Alice.")
}

func (s *CLISuite) TestPlay_StaleProfile() {
	cfg := &Config{ProfilePath: s.profile}
	s.Require().NoError(cfg.SaveProfile(Profile{ID: "gone", Name: "Ghost"}))

	out := s.mustRun("q\n", "play", "--name", "Dave")
	s.Contains(out, "Saved player Ghost no longer exists.")
	s.Contains(out, "Welcome, Dave!")
}

func (s *CLISuite) TestPlay_RejectsBadInput() {
	out := s.mustRun("abc\n1\n1\n0\nq\n", "play", "--name", "Alice")
	s.Equal(2, strings.Count(out, "Enter a number from 1 to 9."))
	s.Contains(out, "That square is already taken.")
	s.Zero(s.storedPlayer("Alice").TotalGames)
}

func (s *CLISuite) TestPlay_DrawAndPlayAgain() {
	// X O X / X O O / O X X, then quit the second game
	moves := "1\n2\n3\n5\n4\n6\n8\n7\n9\ny\nq\n"
	out := s.mustRun(moves, "play", "--name", "Alice")
	s.Contains(out, "It's a draw!")
	s.Contains(out, "Result saved: tie")
	s.Equal(1, s.storedPlayer("Alice").Ties)
}

func (s *CLISuite) TestPlay_RetriesFailedReport() {
	s.failReports.Store(1)
	out := s.mustRun("1\n4\n2\n5\n3\n\nn\n", "play", "--name", "Alice")

	s.Contains(out, "Could not save result")
	s.Contains(out, "Result saved: win")
	s.Equal(1, s.storedPlayer("Alice").Wins)
}

func (s *CLISuite) TestPlay_GivesUpOnFailedReport() {
	s.failReports.Store(5)
	out := s.mustRun("1\n4\n2\n5\n3\nn\nn\n", "play", "--name", "Alice")

	s.Contains(out, "Result not saved.")
	s.Zero(s.storedPlayer("Alice").TotalGames)
}

func (s *CLISuite) TestPlay_ComputerOpponent() {
	out := s.mustRun("1\nq\n", "play", "--name", "Alice", "--opponent", "smart")
	s.Contains(out, " 4 | O | 6 ")

	_, _, err := s.run("q\n", "play", "--name", "Alice", "--opponent", "grandmaster")
	s.ErrorContains(err, "unknown bot strategy")
}

func (s *CLISuite) TestConfigDefaultsFromEnv() {
	s.T().Setenv("TTT_SERVER", "http://example.test:9000")
	s.T().Setenv("TTT_PROFILE", "/tmp/p.json")
	c := DefaultConfig()
	s.Equal("http://example.test:9000", c.ServerURL)
	s.Equal("/tmp/p.json", c.ProfilePath)
	s.Equal("text", c.Output)
}

func (s *CLISuite) TestLoadProfile_Corrupt() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.profile), 0o700))
	s.Require().NoError(os.WriteFile(s.profile, []byte("{"), 0o600))
	_, err := (&Config{ProfilePath: s.profile}).LoadProfile()
	s.ErrorContains(err, "corrupt profile")
}
