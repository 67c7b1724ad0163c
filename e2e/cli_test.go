package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxgrid/tictactoe/internal/api"
	"github.com/oxgrid/tictactoe/internal/config"
	"github.com/oxgrid/tictactoe/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	profilePath string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "ttt-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ttt")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		profilePath: filepath.Join(t.TempDir(), "player.json"),
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--profile", r.profilePath,
		"--output", "json",
	}, args...)
	return exec.Command(r.binaryPath, fullArgs...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithInput(input string, args ...string) (string, error) {
	cmd := r.command(args...)
	cmd.Stdin = strings.NewReader(input)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the full application over a real listener
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg, err := config.LoadFrom(func(key string) string {
		switch key {
		case "STORAGE_TYPE":
			return config.StorageSQLite
		case "SQLITE_PATH":
			return filepath.Join(t.TempDir(), "e2e.db")
		case "APP_ENV":
			return "test"
		}
		return ""
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(context.Background(), cfg, logger)
	require.NoError(t, err)

	server := api.NewServer(app.Handler(), api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Ties       int    `json:"ties"`
	TotalGames int    `json:"totalGames"`
}

type statsResponse struct {
	Success bool           `json:"success"`
	Player  playerResponse `json:"player"`
	Message string         `json:"message"`
}

type leaderboardEntry struct {
	playerResponse
	Rank    int    `json:"rank"`
	WinRate string `json:"winRate"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerLifecycle(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "create", "--name", "Alice", "--save")
	require.NoError(t, err, "output: %s", output)

	var alice playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &alice))
	assert.Equal(t, "Alice", alice.Name)
	assert.NotEmpty(t, alice.ID)

	// Duplicate names are rejected
	output, err = cli.run("player", "create", "--name", "Alice")
	require.Error(t, err)
	assert.Contains(t, output, "already exists")

	// Stats default to the saved profile
	output, err = cli.run("player", "stats", "--result", "win")
	require.NoError(t, err, "output: %s", output)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.True(t, stats.Success)
	assert.Equal(t, 1, stats.Player.Wins)
	assert.Equal(t, 1, stats.Player.TotalGames)

	output, err = cli.run("player", "find", "Alice")
	require.NoError(t, err, "output: %s", output)

	var found playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &found))
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, 1, found.Wins)

	output, err = cli.run("player", "get", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, output, "not found")
}

func TestCLI_Leaderboard(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	for _, name := range []string{"Alice", "Bob"} {
		output, err := cli.run("player", "create", "--name", name)
		require.NoError(t, err, "output: %s", output)

		var p playerResponse
		require.NoError(t, json.Unmarshal([]byte(output), &p))

		result := "loss"
		if name == "Bob" {
			result = "win"
		}
		output, err = cli.run("player", "stats", p.ID, "--result", result)
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli.run("leaderboard", "--limit", "5")
	require.NoError(t, err, "output: %s", output)

	var entries []leaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "100.0", entries[0].WinRate)
	assert.Equal(t, "Alice", entries[1].Name)
}

func TestCLI_PlayReportsResult(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// X takes the top row while O answers in the middle row, then declines a rematch
	output, err := cli.runWithInput("1\n4\n2\n5\n3\nn\n", "play", "--name", "Carol")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Result saved: win")

	output, err = cli.run("player", "get")
	require.NoError(t, err, "output: %s", output)

	var carol playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &carol))
	assert.Equal(t, "Carol", carol.Name)
	assert.Equal(t, 1, carol.Wins)
}
