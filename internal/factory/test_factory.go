package factory

import (
	"log/slog"
	"time"

	"github.com/oxgrid/tictactoe/internal/config"
	"github.com/oxgrid/tictactoe/internal/dependencies/mocks"
	"github.com/oxgrid/tictactoe/internal/storage"
	"github.com/oxgrid/tictactoe/internal/storage/memory"
	"github.com/oxgrid/tictactoe/internal/testutil"
)

// TestEpoch is the mock clock's starting time
var TestEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockIDs    *mocks.MockIDs
	MockRandom *mocks.MockRandom
}

// TestConfig returns a development config using in-memory storage, metrics on
// and the audit job off
func TestConfig() *config.Config {
	return &config.Config{
		Port:                    3000,
		AppEnv:                  "test",
		StorageType:             config.StorageMemory,
		LogFormat:               "text",
		LogLevel:                slog.LevelInfo,
		MetricsEnabled:          true,
		LeaderboardDefaultLimit: 10,
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWith(TestConfig(), memory.New(), testutil.NopLogger())
}

// NewTestAppWith creates a test App over the given config, store and logger
func NewTestAppWith(cfg *config.Config, store storage.PlayerStore, logger *slog.Logger) *TestApp {
	mockClock := mocks.NewMockClock(TestEpoch)
	mockIDs := mocks.NewMockIDs()
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(cfg, store, mockClock, mockIDs, mockRandom, logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockIDs:    mockIDs,
		MockRandom: mockRandom,
	}
}
