package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage"
)

//go:embed schema.sql
var schema string

const playerColumns = `id, name, wins, losses, ties, total_games, created_at`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and applies the schema
func New(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) CreatePlayer(ctx context.Context, p *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(p.ID), p.Name, p.Wins, p.Losses, p.Ties, p.TotalGames, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPlayerNameTaken
		}
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, string(id))
	return scanOne(row)
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE name = ?`, name)
	return scanOne(row)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
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
	// Column comes from a validated result, never from user input
	query := fmt.Sprintf(`
		UPDATE players
		SET %[1]s = %[1]s + 1, total_games = total_games + 1
		WHERE id = ?
		RETURNING `+playerColumns, result.Column())
	return scanOne(s.db.QueryRowContext(ctx, query, string(id)))
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY wins DESC, total_games ASC, created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	return scanAll(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*model.Player, error) {
	var p model.Player
	var id string
	if err := row.Scan(&id, &p.Name, &p.Wins, &p.Losses, &p.Ties, &p.TotalGames, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)
	return &p, nil
}

func scanOne(row *sql.Row) (*model.Player, error) {
	p, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("reading player: %w", err)
	}
	return p, nil
}

func scanAll(rows *sql.Rows) ([]*model.Player, error) {
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

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
