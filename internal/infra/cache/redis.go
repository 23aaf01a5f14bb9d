// Package cache provides Redis-backed standings for quick state reads.
// The event log in SQLite is the source of truth; the cache only serves
// spectators a cheap "where does everyone stand" view.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cafegames/elimination-arena/internal/engine"
)

// StandingsCache keeps the latest per-participant snapshots and round number
// of each running game in Redis.
type StandingsCache struct {
	client     *redis.Client
	expiration time.Duration
}

// NewStandingsCache connects to Redis at the given URL
// (e.g. redis://localhost:6379/0).
func NewStandingsCache(url string) (*StandingsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return newStandingsCache(client), nil
}

// NewStandingsCacheWithClient wraps an existing client (used in tests).
func NewStandingsCacheWithClient(client *redis.Client) *StandingsCache {
	return newStandingsCache(client)
}

func newStandingsCache(client *redis.Client) *StandingsCache {
	return &StandingsCache{
		client:     client,
		expiration: 24 * time.Hour, // Stale seasons expire on their own
	}
}

// Record updates the cache from an emitted round record. Implements the
// engine's round sink.
func (c *StandingsCache) Record(ctx context.Context, gameID string, record *engine.RoundRecord) error {
	values := make([]interface{}, 0, len(record.Snapshots)*2)
	for _, snap := range record.Snapshots {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot for %s: %w", snap.ID, err)
		}
		values = append(values, snap.ID, string(data))
	}

	key := c.standingsKey(gameID)
	if err := c.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to cache standings: %w", err)
	}
	if err := c.client.Expire(ctx, key, c.expiration).Err(); err != nil {
		return err
	}
	return c.client.Set(ctx, c.roundKey(gameID), record.Round, c.expiration).Err()
}

// Standings returns the latest cached snapshot per participant.
func (c *StandingsCache) Standings(ctx context.Context, gameID string) (map[string]engine.Snapshot, error) {
	data, err := c.client.HGetAll(ctx, c.standingsKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	snaps := make(map[string]engine.Snapshot)
	for id, jsonStr := range data {
		var snap engine.Snapshot
		if err := json.Unmarshal([]byte(jsonStr), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot for %s: %w", id, err)
		}
		snaps[id] = snap
	}
	return snaps, nil
}

// CurrentRound returns the last cached round number, 0 if none.
func (c *StandingsCache) CurrentRound(ctx context.Context, gameID string) (int, error) {
	val, err := c.client.Get(ctx, c.roundKey(gameID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

// InvalidateGame removes all cached state for a game.
func (c *StandingsCache) InvalidateGame(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, c.standingsKey(gameID), c.roundKey(gameID)).Err()
}

func (c *StandingsCache) standingsKey(gameID string) string {
	return fmt.Sprintf("game:%s:standings", gameID)
}

func (c *StandingsCache) roundKey(gameID string) string {
	return fmt.Sprintf("game:%s:round", gameID)
}
