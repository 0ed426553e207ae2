// Package livecache keeps cheap live attendance counters in Redis. The
// worker writes them as marks flow through the queue; the API reads them on
// the admin dashboard without touching Postgres. The cache is advisory;
// Postgres stays the source of truth.
package livecache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "classtrack:live:session:"
	dayKeyPrefix     = "classtrack:live:day:"
	sessionTTL       = 24 * time.Hour
	dayTTL           = 48 * time.Hour
)

// Cache wraps the redis client for live counters.
type Cache struct {
	client *redis.Client
}

// New creates a cache.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// RecordMark bumps the per-session and per-day counters for one mark.
func (c *Cache) RecordMark(ctx context.Context, sessionID string, markedAt time.Time) error {
	pipe := c.client.TxPipeline()
	sk := sessionKeyPrefix + sessionID
	dk := dayKeyPrefix + markedAt.Format("2006-01-02")
	pipe.Incr(ctx, sk)
	pipe.Expire(ctx, sk, sessionTTL)
	pipe.Incr(ctx, dk)
	pipe.Expire(ctx, dk, dayTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SessionCount returns the cached present count for a session (0 when absent).
func (c *Cache) SessionCount(ctx context.Context, sessionID string) (int, error) {
	return c.getInt(ctx, sessionKeyPrefix+sessionID)
}

// DayCount returns the cached number of marks on a calendar day.
func (c *Cache) DayCount(ctx context.Context, day time.Time) (int, error) {
	return c.getInt(ctx, dayKeyPrefix+day.Format("2006-01-02"))
}

func (c *Cache) getInt(ctx context.Context, key string) (int, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}
