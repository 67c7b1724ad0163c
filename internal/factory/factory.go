// Package factory wires the application's components together.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oxgrid/tictactoe/internal/api"
	"github.com/oxgrid/tictactoe/internal/config"
	"github.com/oxgrid/tictactoe/internal/dependencies/clock"
	"github.com/oxgrid/tictactoe/internal/dependencies/ids"
	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/metrics"
	"github.com/oxgrid/tictactoe/internal/scheduler"
	"github.com/oxgrid/tictactoe/internal/services/stats"
	"github.com/oxgrid/tictactoe/internal/storage"
	"github.com/oxgrid/tictactoe/internal/storage/memory"
	"github.com/oxgrid/tictactoe/internal/storage/postgres"
	redisstorage "github.com/oxgrid/tictactoe/internal/storage/redis"
	"github.com/oxgrid/tictactoe/internal/storage/sqlite"
	"github.com/oxgrid/tictactoe/internal/web"
)

// App contains all wired application components
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	Storage storage.PlayerStore

	// External dependencies
	Clock  clock.Clock
	IDs    ids.Generator
	Random random.Random

	// Services
	Metrics      *metrics.Recorder // nil when metrics are disabled
	StatsService *stats.Service
	Scheduler    *scheduler.Scheduler
}

// New opens the configured storage backend and wires every component
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(cfg, store, clock.New(), ids.New(), random.New(), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("storage ready", "type", cfg.StorageType)
	return app, nil
}

// OpenStorage creates the PlayerStore selected by cfg.StorageType
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.PlayerStore, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageSQLite:
		return sqlite.New(cfg.SQLitePath)
	case config.StoragePostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg *config.Config,
	store storage.PlayerStore,
	clk clock.Clock,
	idGen ids.Generator,
	rnd random.Random,
	logger *slog.Logger,
) (*App, error) {
	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	statsService := stats.New(store, clk, idGen, logger,
		stats.WithMetrics(recorder),
		stats.WithDefaultLimit(cfg.LeaderboardDefaultLimit),
	)

	sched, err := scheduler.New(statsService, cfg.AuditSchedule, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Storage:      store,
		Clock:        clk,
		IDs:          idGen,
		Random:       rnd,
		Metrics:      recorder,
		StatsService: statsService,
		Scheduler:    sched,
	}, nil
}

// Handler builds the HTTP handler serving the JSON API, the browser UI and /metrics
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:       a.Logger,
		StatsService: a.StatsService,
		Metrics:      a.Metrics,
		ServeMetrics: a.Config.MetricsEnabled,
		ExposeErrors: !a.Config.IsProduction(),
		Mount: func(r *mux.Router) {
			web.Register(r, web.RouterConfig{
				Logger:        a.Logger,
				StatsService:  a.StatsService,
				Random:        a.Random,
				SecureCookies: a.Config.IsProduction(),
			})
		},
	})
}

// Close stops background jobs and releases the storage backend
func (a *App) Close() error {
	a.Scheduler.Stop()
	if err := a.Storage.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}
