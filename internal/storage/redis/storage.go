package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage"
)

// ErrTxContention is returned when IncrementStats exhausts its retries
var ErrTxContention = errors.New("redis: too much contention on player record")

// Storage is a Redis-backed implementation of the storage interface.
// Each player is a HASH; a name index and two sorted sets support lookups,
// listing and ranking.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) CreatePlayer(ctx context.Context, p *model.Player) error {
	// Claim the name first; SETNX makes the uniqueness check atomic
	claimed, err := s.client.SetNX(ctx, nameIndexKey(p.Name), string(p.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("claiming player name: %w", err)
	}
	if !claimed {
		return model.ErrPlayerNameTaken
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, playerKey(p.ID), toHash(p))
		pipe.ZAdd(ctx, createdIndexKey(), redis.Z{Score: float64(p.CreatedAt), Member: string(p.ID)})
		pipe.ZAdd(ctx, rankingIndexKey(), redis.Z{Score: rankScore(p.Wins, p.TotalGames), Member: string(p.ID)})
		return nil
	})
	if err != nil {
		// Release the name so a retry can succeed
		_ = s.client.Del(ctx, nameIndexKey(p.Name)).Err()
		return fmt.Errorf("saving player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	fields, err := s.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return fromHash(fields)
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	// Look up player ID from name index
	id, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.ZRevRange(ctx, createdIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	players, err := s.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		return model.NewerThan(players[i], players[j])
	})
	return players, nil
}

// IncrementStats reads the counters under WATCH and applies the increments,
// the new ranking score and the read-back in one MULTI/EXEC.
func (s *Storage) IncrementStats(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	if !result.Valid() {
		return nil, model.ErrInvalidResult
	}

	key := playerKey(id)
	var updated *model.Player

	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return model.ErrPlayerNotFound
		}
		current, err := fromHash(fields)
		if err != nil {
			return err
		}
		next := current.Clone()
		next.Apply(result)

		var readBack *redis.MapStringStringCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HIncrBy(ctx, key, result.Column(), 1)
			pipe.HIncrBy(ctx, key, fieldTotalGames, 1)
			pipe.ZAdd(ctx, rankingIndexKey(), redis.Z{Score: rankScore(next.Wins, next.TotalGames), Member: string(id)})
			readBack = pipe.HGetAll(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		updated, err = fromHash(readBack.Val())
		return err
	}

	for i := 0; i < s.maxRetries(); i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("incrementing stats: %w", err)
	}
	return nil, ErrTxContention
}

// TopPlayers reads the top of the ranking set, widened to every member sharing
// the lowest fetched score, then applies the full tie-break in Go.
func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}

	head, err := s.client.ZRevRangeWithScores(ctx, rankingIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(head) == 0 {
		return []*model.Player{}, nil
	}

	cutoff := head[len(head)-1].Score
	ids, err := s.client.ZRevRangeByScore(ctx, rankingIndexKey(), &redis.ZRangeBy{
		Max: "+inf",
		Min: strconv.FormatFloat(cutoff, 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, err
	}

	players, err := s.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool {
		return model.RanksBefore(players[i], players[j])
	})
	if len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

// getMany fetches players by id in one pipeline, skipping ids whose hash is gone
func (s *Storage) getMany(ctx context.Context, ids []string) ([]*model.Player, error) {
	players := make([]*model.Player, 0, len(ids))
	if len(ids) == 0 {
		return players, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	pipe := s.client.Pipeline()
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, playerKey(model.PlayerID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		p, err := fromHash(fields)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *Storage) maxRetries() int {
	if s.cfg.MaxTxRetries <= 0 {
		return 1
	}
	return s.cfg.MaxTxRetries
}

func toHash(p *model.Player) map[string]any {
	return map[string]any{
		fieldID:         string(p.ID),
		fieldName:       p.Name,
		fieldWins:       p.Wins,
		fieldLosses:     p.Losses,
		fieldTies:       p.Ties,
		fieldTotalGames: p.TotalGames,
		fieldCreatedAt:  p.CreatedAt,
	}
}

func fromHash(fields map[string]string) (*model.Player, error) {
	p := &model.Player{
		ID:   model.PlayerID(fields[fieldID]),
		Name: fields[fieldName],
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{fieldWins, &p.Wins},
		{fieldLosses, &p.Losses},
		{fieldTies, &p.Ties},
		{fieldTotalGames, &p.TotalGames},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(fields[f.field])
		if err != nil {
			return nil, fmt.Errorf("decoding %s of player %s: %w", f.field, p.ID, err)
		}
		*f.dst = v
	}
	createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decoding created_at of player %s: %w", p.ID, err)
	}
	p.CreatedAt = createdAt
	return p, nil
}
