package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EVCatalog/internal/domain"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

const keyPrefix = "evcatalog:score:"

// ScoreCache implements repository.ScoreCache using Redis.
type ScoreCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewScoreCache creates a new Redis-backed average score cache.
func NewScoreCache(client redis.Cmdable, ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		client: client,
		ttl:    ttl,
	}
}

func key(evID string) string {
	return keyPrefix + evID
}

// Get retrieves the cached average score of an EV. A miss is reported as
// apperrors.ErrNotFound.
func (c *ScoreCache) Get(ctx context.Context, evID string) (domain.AverageScore, error) {
	data, err := c.client.Get(ctx, key(evID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AverageScore{}, apperrors.NotFound("average score", evID)
		}
		return domain.AverageScore{}, fmt.Errorf("redis get score: %w", err)
	}

	var score domain.AverageScore
	if err := json.Unmarshal(data, &score); err != nil {
		return domain.AverageScore{}, fmt.Errorf("unmarshal score: %w", err)
	}
	return score, nil
}

// Set stores an EV's average score with the configured TTL. The no-reviews
// score is cached too.
func (c *ScoreCache) Set(ctx context.Context, evID string, score domain.AverageScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	if err := c.client.Set(ctx, key(evID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set score: %w", err)
	}
	return nil
}

// Invalidate drops the cached score of an EV.
func (c *ScoreCache) Invalidate(ctx context.Context, evID string) error {
	if err := c.client.Del(ctx, key(evID)).Err(); err != nil {
		return fmt.Errorf("redis del score: %w", err)
	}
	return nil
}

// Ping checks the Redis connection; used by the readiness probe.
func (c *ScoreCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
