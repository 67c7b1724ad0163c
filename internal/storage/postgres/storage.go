package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"runtime"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage"
)

//go:embed schema.sql
var schema string

const playerColumns = `id, name, wins, losses, ties, total_games, created_at`

// uniqueViolation is the SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to the database at dsn and applies the schema
func New(ctx context.Context, dsn string) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cpus := int32(runtime.NumCPU())
	poolConfig.MaxConns = cpus * 2
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) CreatePlayer(ctx context.Context, p *model.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, string(p.ID), p.Name, p.Wins, p.Losses, p.Ties, p.TotalGames, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "players_name_key" {
			return model.ErrPlayerNameTaken
		}
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, string(id))
	return scanOne(row)
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE name = $1`, name)
	return scanOne(row)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return scanAll(rows)
}

// IncrementStats updates and reads back the row in a single statement
func (s *Storage) IncrementStats(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	if !result.Valid() {
		return nil, model.ErrInvalidResult
	}
	query := fmt.Sprintf(`
		UPDATE players
		SET %[1]s = %[1]s + 1, total_games = total_games + 1
		WHERE id = $1
		RETURNING `+playerColumns, result.Column())
	return scanOne(s.pool.QueryRow(ctx, query, string(id)))
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY wins DESC, total_games ASC, created_at ASC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	return scanAll(rows)
}

func scan(row pgx.Row) (*model.Player, error) {
	var p model.Player
	var id string
	if err := row.Scan(&id, &p.Name, &p.Wins, &p.Losses, &p.Ties, &p.TotalGames, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)
	return &p, nil
}

func scanOne(row pgx.Row) (*model.Player, error) {
	p, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("reading player: %w", err)
	}
	return p, nil
}

func scanAll(rows pgx.Rows) ([]*model.Player, error) {
	defer rows.Close()
	players := []*model.Player{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("reading player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
