// Package cache keeps a short-lived snapshot of the open teams list in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"teamup-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Snapshots are keyed by a generation that Invalidate bumps. A fill that
// raced with a write lands under an old generation that no reader asks for.
const (
	generationKey      = "teamup:teams:gen"
	openTeamsKeyPrefix = "teamup:teams:open:"
)

// DefaultTTL bounds how stale a browse page can be if an invalidation is
// lost.
const DefaultTTL = 30 * time.Second

// redisClient is the subset of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type RedisTeamCache struct {
	rdb redisClient
	ttl time.Duration
}

func NewRedisTeamCache(rdb redisClient, ttl time.Duration) *RedisTeamCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTeamCache{rdb: rdb, ttl: ttl}
}

func openTeamsKey(gen int64) string {
	return openTeamsKeyPrefix + strconv.FormatInt(gen, 10)
}

func (c *RedisTeamCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read open teams generation: %w", err)
	}
	return gen, nil
}

// OpenTeams returns the snapshot of the current generation. On a miss ok is
// false and gen is the generation a fill must be stored under.
func (c *RedisTeamCache) OpenTeams(ctx context.Context) (teams []models.Team, gen int64, ok bool, err error) {
	gen, err = c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	raw, err := c.rdb.Get(ctx, openTeamsKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("read open teams from cache: %w", err)
	}
	if err := json.Unmarshal(raw, &teams); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached open teams: %w", err)
	}
	return teams, gen, true, nil
}

// StoreOpenTeams saves teams as the snapshot of generation gen, which must
// have been read before the teams were loaded.
func (c *RedisTeamCache) StoreOpenTeams(ctx context.Context, gen int64, teams []models.Team) error {
	raw, err := json.Marshal(teams)
	if err != nil {
		return fmt.Errorf("encode open teams: %w", err)
	}
	if err := c.rdb.Set(ctx, openTeamsKey(gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write open teams to cache: %w", err)
	}
	return nil
}

// Invalidate starts a new generation so the next read goes to the store.
// Older snapshots expire on their TTL.
func (c *RedisTeamCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("invalidate open teams cache: %w", err)
	}
	return nil
}
