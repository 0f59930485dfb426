package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/redis/go-redis/v9"
)

const (
	leaderboardCacheKey = "leaderboard:global:all"
	leaderboardCacheTTL = 5 * time.Minute
)

// LeaderboardCache хранит полностью посчитанный глобальный рейтинг одним
// JSON-значением. Единственные писатели — путь пересчёта и Invalidate.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []models.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
	Status(ctx context.Context) (models.LeaderboardCacheStatus, error)
}

type redisLeaderboardCache struct {
	client *redis.Client
}

func NewRedisLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &redisLeaderboardCache{client: client}
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Повреждённое значение равносильно промаху: следующий Set перезапишет его.
		return nil, false, fmt.Errorf("failed to decode leaderboard cache: %w", err)
	}
	return entries, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, entries []models.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, leaderboardCacheKey, raw, leaderboardCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}

func (c *redisLeaderboardCache) Status(ctx context.Context) (models.LeaderboardCacheStatus, error) {
	status := models.LeaderboardCacheStatus{CacheKey: leaderboardCacheKey}

	raw, err := c.client.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return status, nil
		}
		return status, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	status.Exists = true
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		status.Entries = len(entries)
	}

	if ttl, err := c.client.TTL(ctx, leaderboardCacheKey).Result(); err == nil && ttl > 0 {
		status.TTLSeconds = int(ttl / time.Second)
	}
	return status, nil
}
